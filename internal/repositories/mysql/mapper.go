package mysql

import (
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
)

func toMemberRecord(m *models.Member) *MemberRecord {
	return &MemberRecord{
		ID:        m.ID,
		Name:      m.Name,
		Phone:     m.Phone,
		Email:     m.Email,
		Address:   m.Address,
		Tier:      string(m.Tier),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *MemberRecord) toDomain() *models.Member {
	return &models.Member{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
		Tier:      models.MemberTier(r.Tier),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toRuleRecord(r *models.Rule) *RuleRecord {
	return &RuleRecord{
		ID:               r.ID,
		Name:             r.Name,
		Kind:             string(r.Kind),
		MinimumValue:     r.MinimumValue,
		VouchersPerMatch: r.VouchersPerMatch,
		Divisor:          r.Divisor,
		ValidityDays:     r.ValidityDays,
		Priority:         r.Priority,
		Accumulate:       r.Accumulate,
		EventID:          r.EventID,
		Active:           r.Active,
		StartsAt:         r.StartsAt,
		EndsAt:           r.EndsAt,
		VoucherValue:     r.VoucherValue,
		Brand:            r.Brand,
		CollectionName:   r.CollectionName,
		CollectionYear:   r.CollectionYear,
		MemberTier:       r.MemberTier,
		DayOfWeek:        r.DayOfWeek,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		RequiredItems:    r.RequiredItems,
		MinItems:         r.MinItems,
		Condition:        r.Condition,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (r *RuleRecord) toDomain() *models.Rule {
	return &models.Rule{
		ID:               r.ID,
		Name:             r.Name,
		Kind:             models.RuleKind(r.Kind),
		MinimumValue:     r.MinimumValue,
		VouchersPerMatch: r.VouchersPerMatch,
		Divisor:          r.Divisor,
		ValidityDays:     r.ValidityDays,
		Priority:         r.Priority,
		Accumulate:       r.Accumulate,
		EventID:          r.EventID,
		Active:           r.Active,
		StartsAt:         r.StartsAt,
		EndsAt:           r.EndsAt,
		VoucherValue:     r.VoucherValue,
		Brand:            r.Brand,
		CollectionName:   r.CollectionName,
		CollectionYear:   r.CollectionYear,
		MemberTier:       r.MemberTier,
		DayOfWeek:        r.DayOfWeek,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		RequiredItems:    r.RequiredItems,
		MinItems:         r.MinItems,
		Condition:        r.Condition,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toEventRecord(e *models.Event) *EventRecord {
	return &EventRecord{
		ID:                e.ID,
		Name:              e.Name,
		Description:       e.Description,
		StartsAt:          e.StartsAt,
		EndsAt:            e.EndsAt,
		BonusVoucherCount: e.BonusVoucherCount,
		Active:            e.Active,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func (r *EventRecord) toDomain() *models.Event {
	return &models.Event{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		StartsAt:          r.StartsAt,
		EndsAt:            r.EndsAt,
		BonusVoucherCount: r.BonusVoucherCount,
		Active:            r.Active,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toTransactionRecord(t *models.Transaction) *TransactionRecord {
	return &TransactionRecord{
		ID:             t.ID,
		ReceiptCode:    t.ReceiptCode,
		MemberID:       t.MemberID,
		Amount:         t.Amount,
		PurchasedAt:    t.PurchasedAt,
		Brand:          t.Purchase.Brand,
		CollectionName: t.Purchase.CollectionName,
		CollectionYear: t.Purchase.CollectionYear,
		Items:          t.Purchase.Items,
		Note:           t.Note,
		AdminID:        t.AdminID,
		CreatedAt:      t.CreatedAt,
	}
}

func (r *TransactionRecord) toDomain() *models.Transaction {
	return &models.Transaction{
		ID:          r.ID,
		ReceiptCode: r.ReceiptCode,
		MemberID:    r.MemberID,
		Amount:      r.Amount,
		PurchasedAt: r.PurchasedAt,
		Purchase: models.PurchaseContext{
			Brand:          r.Brand,
			CollectionName: r.CollectionName,
			CollectionYear: r.CollectionYear,
			Items:          r.Items,
		},
		Note:      r.Note,
		AdminID:   r.AdminID,
		CreatedAt: r.CreatedAt,
	}
}

func toVoucherRecord(v *models.Voucher) *VoucherRecord {
	return &VoucherRecord{
		ID:                v.ID,
		Code:              v.Code,
		LotteryNumber:     v.LotteryNumber,
		MemberID:          v.MemberID,
		TransactionID:     v.TransactionID,
		RuleID:            v.RuleID,
		Value:             v.Value,
		Status:            string(v.Status),
		ExpiresAt:         v.ExpiresAt,
		UsedAt:            v.UsedAt,
		UsedTransactionID: v.UsedTransactionID,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

func (r *VoucherRecord) toDomain() *models.Voucher {
	return &models.Voucher{
		ID:                r.ID,
		Code:              r.Code,
		LotteryNumber:     r.LotteryNumber,
		MemberID:          r.MemberID,
		TransactionID:     r.TransactionID,
		RuleID:            r.RuleID,
		Value:             r.Value,
		Status:            models.VoucherStatus(r.Status),
		ExpiresAt:         r.ExpiresAt,
		UsedAt:            r.UsedAt,
		UsedTransactionID: r.UsedTransactionID,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toVoucherLogRecord(l *models.VoucherLog) *VoucherLogRecord {
	return &VoucherLogRecord{
		ID:        l.ID,
		VoucherID: l.VoucherID,
		Action:    string(l.Action),
		AdminID:   l.AdminID,
		Note:      l.Note,
		CreatedAt: l.CreatedAt,
	}
}

func (r *VoucherLogRecord) toDomain() *models.VoucherLog {
	return &models.VoucherLog{
		ID:        r.ID,
		VoucherID: r.VoucherID,
		Action:    models.VoucherAction(r.Action),
		AdminID:   r.AdminID,
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
	}
}

func toDrawRecord(d *models.LotteryDraw) *DrawRecord {
	return &DrawRecord{
		ID:                d.ID,
		Name:              d.Name,
		Description:       d.Description,
		StartsAt:          d.StartsAt,
		EndsAt:            d.EndsAt,
		PrizesDistributed: d.PrizesDistributed,
		Status:            string(d.Status),
		CreatedBy:         d.CreatedBy,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (r *DrawRecord) toDomain() *models.LotteryDraw {
	return &models.LotteryDraw{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		StartsAt:          r.StartsAt,
		EndsAt:            r.EndsAt,
		PrizesDistributed: r.PrizesDistributed,
		Status:            models.DrawStatus(r.Status),
		CreatedBy:         r.CreatedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toPrizeRecord(p *models.Prize) *PrizeRecord {
	return &PrizeRecord{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		Value:          p.Value,
		ImageURL:       p.ImageURL,
		Stock:          p.Stock,
		StockConsumed:  p.StockConsumed,
		Active:         p.Active,
		AvailableFrom:  p.AvailableFrom,
		AvailableUntil: p.AvailableUntil,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r *PrizeRecord) toDomain() *models.Prize {
	return &models.Prize{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Category:       r.Category,
		Value:          r.Value,
		ImageURL:       r.ImageURL,
		Stock:          r.Stock,
		StockConsumed:  r.StockConsumed,
		Active:         r.Active,
		AvailableFrom:  r.AvailableFrom,
		AvailableUntil: r.AvailableUntil,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toWinnerRecord(w *models.Winner) *WinnerRecord {
	return &WinnerRecord{
		ID:             w.ID,
		DrawID:         w.DrawID,
		MemberID:       w.MemberID,
		VoucherID:      w.VoucherID,
		LotteryNumber:  w.LotteryNumber,
		PrizeID:        w.PrizeID,
		Status:         string(w.Status),
		ChosenAt:       w.ChosenAt,
		CollectedAt:    w.CollectedAt,
		CollectedBy:    w.CollectedBy,
		CollectionNote: w.CollectionNote,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

func (r *WinnerRecord) toDomain() *models.Winner {
	return &models.Winner{
		ID:             r.ID,
		DrawID:         r.DrawID,
		MemberID:       r.MemberID,
		VoucherID:      r.VoucherID,
		LotteryNumber:  r.LotteryNumber,
		PrizeID:        r.PrizeID,
		Status:         models.WinnerStatus(r.Status),
		ChosenAt:       r.ChosenAt,
		CollectedAt:    r.CollectedAt,
		CollectedBy:    r.CollectedBy,
		CollectionNote: r.CollectionNote,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// toDomainList maps a slice of records, never returning nil
func toDomainList[R any, M any](records []R, fn func(*R) *M) []*M {
	out := make([]*M, 0, len(records))
	for i := range records {
		out = append(out, fn(&records[i]))
	}
	return out
}
