package testutil

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"github.com/samber/lo"
)

var (
	_ repositories.MemberRepository      = (*InMemoryMemberStore)(nil)
	_ repositories.RuleRepository        = (*InMemoryRuleStore)(nil)
	_ repositories.EventRepository       = (*InMemoryEventStore)(nil)
	_ repositories.TransactionRepository = (*InMemoryTransactionStore)(nil)
	_ repositories.VoucherLogRepository  = (*InMemoryVoucherLogStore)(nil)
	_ repositories.DrawRepository        = (*InMemoryDrawStore)(nil)
	_ repositories.PrizeRepository       = (*InMemoryPrizeStore)(nil)
	_ repositories.WinnerRepository      = (*InMemoryWinnerStore)(nil)
	_ repositories.Transactor            = (*InMemoryDB)(nil)
)

// InMemoryMemberStore implements repositories.MemberRepository
type InMemoryMemberStore struct{ db *InMemoryDB }

func (s *InMemoryMemberStore) Create(ctx context.Context, m *models.Member) error {
	defer s.db.lock(ctx)()
	if _, ok := s.db.members[m.ID]; ok {
		return conflict("Member already exists")
	}
	s.db.members[m.ID] = *m
	s.db.track(m.ID)
	return nil
}

func (s *InMemoryMemberStore) FindByID(ctx context.Context, id string) (*models.Member, error) {
	defer s.db.lock(ctx)()
	m, ok := s.db.members[id]
	if !ok {
		return nil, notFound("Member", id)
	}
	return &m, nil
}

// InMemoryRuleStore implements repositories.RuleRepository
type InMemoryRuleStore struct{ db *InMemoryDB }

func (s *InMemoryRuleStore) Create(ctx context.Context, r *models.Rule) error {
	defer s.db.lock(ctx)()
	if _, ok := s.db.rules[r.ID]; ok {
		return conflict("Rule already exists")
	}
	s.db.rules[r.ID] = *r
	s.db.track(r.ID)
	return nil
}

func (s *InMemoryRuleStore) FindByID(ctx context.Context, id string) (*models.Rule, error) {
	defer s.db.lock(ctx)()
	r, ok := s.db.rules[id]
	if !ok {
		return nil, notFound("Rule", id)
	}
	return &r, nil
}

func (s *InMemoryRuleStore) Update(ctx context.Context, r *models.Rule) error {
	defer s.db.lock(ctx)()
	if _, ok := s.db.rules[r.ID]; !ok {
		return notFound("Rule", r.ID)
	}
	s.db.rules[r.ID] = *r
	return nil
}

func (s *InMemoryRuleStore) FindAll(ctx context.Context, p, limit int) ([]*models.Rule, error) {
	defer s.db.lock(ctx)()
	out := lo.MapToSlice(s.db.rules, func(_ string, r models.Rule) *models.Rule { return &r })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return s.db.order[out[i].ID] > s.db.order[out[j].ID]
	})
	return page(out, p, limit), nil
}

func (s *InMemoryRuleStore) FindApplicable(ctx context.Context, at time.Time) (*models.Rule, error) {
	all, err := s.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	r, ok := lo.Find(all, func(r *models.Rule) bool { return r.ApplicableAt(at) })
	if !ok {
		return nil, notFound("Active rule", at.String())
	}
	return r, nil
}

func (s *InMemoryRuleStore) ActivateExclusive(ctx context.Context, id string) error {
	defer s.db.lock(ctx)()
	if _, ok := s.db.rules[id]; !ok {
		return notFound("Rule", id)
	}
	now := time.Now()
	for key, r := range s.db.rules {
		active := key == id
		if r.Active != active {
			r.Active = active
			r.UpdatedAt = now
			s.db.rules[key] = r
		}
	}
	return nil
}

func (s *InMemoryRuleStore) SetActive(ctx context.Context, id string, active bool) error {
	defer s.db.lock(ctx)()
	r, ok := s.db.rules[id]
	if !ok {
		return notFound("Rule", id)
	}
	r.Active = active
	r.UpdatedAt = time.Now()
	s.db.rules[id] = r
	return nil
}

// InMemoryEventStore implements repositories.EventRepository
type InMemoryEventStore struct{ db *InMemoryDB }

func (s *InMemoryEventStore) Create(ctx context.Context, e *models.Event) error {
	defer s.db.lock(ctx)()
	s.db.events[e.ID] = *e
	s.db.track(e.ID)
	return nil
}

func (s *InMemoryEventStore) FindByID(ctx context.Context, id string) (*models.Event, error) {
	defer s.db.lock(ctx)()
	e, ok := s.db.events[id]
	if !ok {
		return nil, notFound("Event", id)
	}
	return &e, nil
}

func (s *InMemoryEventStore) Update(ctx context.Context, e *models.Event) error {
	defer s.db.lock(ctx)()
	if _, ok := s.db.events[e.ID]; !ok {
		return notFound("Event", e.ID)
	}
	s.db.events[e.ID] = *e
	return nil
}

func (s *InMemoryEventStore) FindAll(ctx context.Context, p, limit int) ([]*models.Event, error) {
	defer s.db.lock(ctx)()
	out := lo.MapToSlice(s.db.events, func(_ string, e models.Event) *models.Event { return &e })
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return page(out, p, limit), nil
}

func (s *InMemoryEventStore) FindActiveAt(ctx context.Context, at time.Time) ([]*models.Event, error) {
	all, err := s.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(e *models.Event, _ int) bool { return e.ActiveAt(at) }), nil
}

// InMemoryTransactionStore implements repositories.TransactionRepository
type InMemoryTransactionStore struct{ db *InMemoryDB }

func (s *InMemoryTransactionStore) Create(ctx context.Context, t *models.Transaction) error {
	defer s.db.lock(ctx)()
	for _, existing := range s.db.transactions {
		if strings.EqualFold(existing.ReceiptCode, t.ReceiptCode) {
			return conflict("Receipt code already recorded")
		}
	}
	s.db.transactions[t.ID] = *t
	s.db.track(t.ID)
	return nil
}

func (s *InMemoryTransactionStore) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	defer s.db.lock(ctx)()
	t, ok := s.db.transactions[id]
	if !ok {
		return nil, notFound("Transaction", id)
	}
	return &t, nil
}

func (s *InMemoryTransactionStore) FindByReceiptCode(ctx context.Context, code string) (*models.Transaction, error) {
	defer s.db.lock(ctx)()
	for _, t := range s.db.transactions {
		if strings.EqualFold(t.ReceiptCode, code) {
			return &t, nil
		}
	}
	return nil, notFound("Transaction", code)
}

func (s *InMemoryTransactionStore) FindByMemberID(ctx context.Context, memberID string, p, limit int) ([]*models.Transaction, error) {
	defer s.db.lock(ctx)()
	var out []*models.Transaction
	for _, t := range s.db.transactions {
		if t.MemberID == memberID {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchasedAt.After(out[j].PurchasedAt) })
	return page(out, p, limit), nil
}

// InMemoryVoucherLogStore implements repositories.VoucherLogRepository
type InMemoryVoucherLogStore struct{ db *InMemoryDB }

func (s *InMemoryVoucherLogStore) Create(ctx context.Context, l *models.VoucherLog) error {
	defer s.db.lock(ctx)()
	s.db.voucherLogs[l.ID] = *l
	s.db.track(l.ID)
	return nil
}

func (s *InMemoryVoucherLogStore) FindByVoucherID(ctx context.Context, voucherID string) ([]*models.VoucherLog, error) {
	defer s.db.lock(ctx)()
	var ids []string
	for id, l := range s.db.voucherLogs {
		if l.VoucherID == voucherID {
			ids = append(ids, id)
		}
	}
	s.db.sortByInsertion(ids)
	return lo.Map(ids, func(id string, _ int) *models.VoucherLog {
		l := s.db.voucherLogs[id]
		return &l
	}), nil
}

// Count returns the number of stored log entries
func (s *InMemoryVoucherLogStore) Count() int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.voucherLogs)
}

// InMemoryDrawStore implements repositories.DrawRepository
type InMemoryDrawStore struct{ db *InMemoryDB }

func (s *InMemoryDrawStore) Create(ctx context.Context, d *models.LotteryDraw) error {
	defer s.db.lock(ctx)()
	s.db.draws[d.ID] = *d
	s.db.track(d.ID)
	return nil
}

func (s *InMemoryDrawStore) FindByID(ctx context.Context, id string) (*models.LotteryDraw, error) {
	defer s.db.lock(ctx)()
	d, ok := s.db.draws[id]
	if !ok {
		return nil, notFound("Lottery draw", id)
	}
	return &d, nil
}

// FindByIDForUpdate needs no extra locking here; WithTx already serializes
func (s *InMemoryDrawStore) FindByIDForUpdate(ctx context.Context, id string) (*models.LotteryDraw, error) {
	return s.FindByID(ctx, id)
}

func (s *InMemoryDrawStore) FindAll(ctx context.Context, p, limit int) ([]*models.LotteryDraw, error) {
	defer s.db.lock(ctx)()
	out := lo.MapToSlice(s.db.draws, func(_ string, d models.LotteryDraw) *models.LotteryDraw { return &d })
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return page(out, p, limit), nil
}

func (s *InMemoryDrawStore) IncrementDistributed(ctx context.Context, id string, n int) (bool, error) {
	defer s.db.lock(ctx)()
	d, ok := s.db.draws[id]
	if !ok || d.Status != models.DrawStatusActive {
		return false, nil
	}
	d.PrizesDistributed += n
	d.UpdatedAt = time.Now()
	s.db.draws[id] = d
	return true, nil
}

func (s *InMemoryDrawStore) TransitionStatus(ctx context.Context, id string, from, to models.DrawStatus) (bool, error) {
	defer s.db.lock(ctx)()
	d, ok := s.db.draws[id]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status = to
	d.UpdatedAt = time.Now()
	s.db.draws[id] = d
	return true, nil
}

// InMemoryPrizeStore implements repositories.PrizeRepository
type InMemoryPrizeStore struct{ db *InMemoryDB }

func (s *InMemoryPrizeStore) Create(ctx context.Context, p *models.Prize) error {
	defer s.db.lock(ctx)()
	s.db.prizes[p.ID] = *p
	s.db.track(p.ID)
	return nil
}

func (s *InMemoryPrizeStore) FindByID(ctx context.Context, id string) (*models.Prize, error) {
	defer s.db.lock(ctx)()
	p, ok := s.db.prizes[id]
	if !ok {
		return nil, notFound("Prize", id)
	}
	return &p, nil
}

func (s *InMemoryPrizeStore) Update(ctx context.Context, p *models.Prize) (bool, error) {
	defer s.db.lock(ctx)()
	current, ok := s.db.prizes[p.ID]
	if !ok {
		return false, notFound("Prize", p.ID)
	}
	if p.Stock < current.StockConsumed {
		return false, nil
	}
	consumed := current.StockConsumed
	current = *p
	current.StockConsumed = consumed
	s.db.prizes[p.ID] = current
	return true, nil
}

func (s *InMemoryPrizeStore) FindAll(ctx context.Context, p, limit int) ([]*models.Prize, error) {
	defer s.db.lock(ctx)()
	var ids []string
	for id := range s.db.prizes {
		ids = append(ids, id)
	}
	s.db.sortByInsertion(ids)
	out := lo.Map(ids, func(id string, _ int) *models.Prize {
		pr := s.db.prizes[id]
		return &pr
	})
	return page(out, p, limit), nil
}

func (s *InMemoryPrizeStore) FindAvailable(ctx context.Context, now time.Time) ([]*models.Prize, error) {
	all, err := s.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(p *models.Prize, _ int) bool { return p.AvailableAt(now) }), nil
}

func (s *InMemoryPrizeStore) ConsumeStock(ctx context.Context, id string) (bool, error) {
	defer s.db.lock(ctx)()
	p, ok := s.db.prizes[id]
	if !ok || p.StockConsumed >= p.Stock {
		return false, nil
	}
	p.StockConsumed++
	p.UpdatedAt = time.Now()
	s.db.prizes[id] = p
	return true, nil
}

// InMemoryWinnerStore implements repositories.WinnerRepository
type InMemoryWinnerStore struct{ db *InMemoryDB }

// CreateMany enforces the (draw, voucher) unique index and inserts nothing
// when any row violates it.
func (s *InMemoryWinnerStore) CreateMany(ctx context.Context, winners []*models.Winner) error {
	defer s.db.lock(ctx)()
	seen := make(map[string]bool, len(s.db.winners)+len(winners))
	for _, w := range s.db.winners {
		seen[w.DrawID+"/"+w.VoucherID] = true
	}
	for _, w := range winners {
		key := w.DrawID + "/" + w.VoucherID
		if seen[key] {
			return conflict("Voucher already won in this draw")
		}
		seen[key] = true
	}
	for _, w := range winners {
		s.db.winners[w.ID] = *w
		s.db.track(w.ID)
	}
	return nil
}

func (s *InMemoryWinnerStore) FindByID(ctx context.Context, id string) (*models.Winner, error) {
	defer s.db.lock(ctx)()
	w, ok := s.db.winners[id]
	if !ok {
		return nil, notFound("Winner", id)
	}
	return &w, nil
}

func (s *InMemoryWinnerStore) FindByDrawID(ctx context.Context, drawID string) ([]*models.Winner, error) {
	defer s.db.lock(ctx)()
	var ids []string
	for id, w := range s.db.winners {
		if w.DrawID == drawID {
			ids = append(ids, id)
		}
	}
	s.db.sortByInsertion(ids)
	return lo.Map(ids, func(id string, _ int) *models.Winner {
		w := s.db.winners[id]
		return &w
	}), nil
}

func (s *InMemoryWinnerStore) TransitionStatus(ctx context.Context, id string, change models.WinnerStatusChange) (bool, error) {
	defer s.db.lock(ctx)()
	w, ok := s.db.winners[id]
	if !ok || w.Status != change.From {
		return false, nil
	}
	w.Status = change.To
	w.UpdatedAt = change.At
	switch change.To {
	case models.WinnerStatusChosen:
		w.PrizeID = change.PrizeID
		w.ChosenAt = lo.ToPtr(change.At)
	case models.WinnerStatusCollected:
		w.CollectedAt = lo.ToPtr(change.At)
		w.CollectedBy = change.AdminID
		w.CollectionNote = change.Note
	}
	s.db.winners[id] = w
	return true, nil
}
