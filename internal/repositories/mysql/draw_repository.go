package mysql

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ repositories.DrawRepository = (*DrawRepository)(nil)

// DrawRepository is the gorm implementation of repositories.DrawRepository
type DrawRepository struct {
	db *gorm.DB
}

func (r *DrawRepository) Create(ctx context.Context, draw *models.LotteryDraw) error {
	return translate(conn(ctx, r.db).Create(toDrawRecord(draw)).Error, "Draw", draw.ID)
}

func (r *DrawRepository) FindByID(ctx context.Context, id string) (*models.LotteryDraw, error) {
	var rec DrawRecord
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, translate(err, "Draw", id)
	}
	return rec.toDomain(), nil
}

// FindByIDForUpdate takes a row lock that lasts until the transaction ends
func (r *DrawRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.LotteryDraw, error) {
	var rec DrawRecord
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&rec).Error
	if err != nil {
		return nil, translate(err, "Draw", id)
	}
	return rec.toDomain(), nil
}

func (r *DrawRepository) FindAll(ctx context.Context, page, limit int) ([]*models.LotteryDraw, error) {
	var recs []DrawRecord
	err := conn(ctx, r.db).Scopes(paginate(page, limit)).Order("starts_at DESC").Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Draw", "")
	}
	return toDomainList(recs, (*DrawRecord).toDomain), nil
}

func (r *DrawRepository) IncrementDistributed(ctx context.Context, id string, n int) (bool, error) {
	res := conn(ctx, r.db).Model(&DrawRecord{}).
		Where("id = ? AND status = ?", id, string(models.DrawStatusActive)).
		Updates(map[string]any{
			"prizes_distributed": gorm.Expr("prizes_distributed + ?", n),
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return false, translate(res.Error, "Draw", id)
	}
	return res.RowsAffected == 1, nil
}

func (r *DrawRepository) TransitionStatus(ctx context.Context, id string, from, to models.DrawStatus) (bool, error) {
	res := conn(ctx, r.db).Model(&DrawRecord{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, translate(res.Error, "Draw", id)
	}
	return res.RowsAffected == 1, nil
}

var _ repositories.WinnerRepository = (*WinnerRepository)(nil)

// WinnerRepository is the gorm implementation of repositories.WinnerRepository
type WinnerRepository struct {
	db *gorm.DB
}

func (r *WinnerRepository) CreateMany(ctx context.Context, winners []*models.Winner) error {
	if len(winners) == 0 {
		return nil
	}
	recs := make([]*WinnerRecord, 0, len(winners))
	for _, w := range winners {
		recs = append(recs, toWinnerRecord(w))
	}
	return translate(conn(ctx, r.db).Create(&recs).Error, "Winner", winners[0].DrawID)
}

func (r *WinnerRepository) FindByID(ctx context.Context, id string) (*models.Winner, error) {
	var rec WinnerRecord
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, translate(err, "Winner", id)
	}
	return rec.toDomain(), nil
}

func (r *WinnerRepository) FindByDrawID(ctx context.Context, drawID string) ([]*models.Winner, error) {
	var recs []WinnerRecord
	err := conn(ctx, r.db).Where("draw_id = ?", drawID).Order("created_at ASC, id ASC").Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Winner", drawID)
	}
	return toDomainList(recs, (*WinnerRecord).toDomain), nil
}

func (r *WinnerRepository) TransitionStatus(ctx context.Context, id string, change models.WinnerStatusChange) (bool, error) {
	updates := map[string]any{"status": string(change.To), "updated_at": change.At}
	switch change.To {
	case models.WinnerStatusChosen:
		updates["prize_id"] = change.PrizeID
		updates["chosen_at"] = change.At
	case models.WinnerStatusCollected:
		updates["collected_at"] = change.At
		updates["collected_by"] = change.AdminID
		updates["collection_note"] = change.Note
	}
	res := conn(ctx, r.db).Model(&WinnerRecord{}).
		Where("id = ? AND status = ?", id, string(change.From)).
		Updates(updates)
	if res.Error != nil {
		return false, translate(res.Error, "Winner", id)
	}
	return res.RowsAffected == 1, nil
}
