package mysql

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"gorm.io/gorm"
)

var _ repositories.PrizeRepository = (*PrizeRepository)(nil)

// PrizeRepository keeps stock_consumed <= stock with guarded updates
type PrizeRepository struct {
	db *gorm.DB
}

func (r *PrizeRepository) Create(ctx context.Context, prize *models.Prize) error {
	return translate(conn(ctx, r.db).Create(toPrizeRecord(prize)).Error, "Prize", prize.ID)
}

func (r *PrizeRepository) FindByID(ctx context.Context, id string) (*models.Prize, error) {
	var rec PrizeRecord
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, translate(err, "Prize", id)
	}
	return rec.toDomain(), nil
}

func (r *PrizeRepository) Update(ctx context.Context, prize *models.Prize) (bool, error) {
	db := conn(ctx, r.db)
	res := db.Model(&PrizeRecord{}).
		Where("id = ? AND stock_consumed <= ?", prize.ID, prize.Stock).
		Updates(map[string]any{
			"name":            prize.Name,
			"description":     prize.Description,
			"category":        prize.Category,
			"value":           prize.Value,
			"image_url":       prize.ImageURL,
			"stock":           prize.Stock,
			"active":          prize.Active,
			"available_from":  prize.AvailableFrom,
			"available_until": prize.AvailableUntil,
			"updated_at":      prize.UpdatedAt,
		})
	if res.Error != nil {
		return false, translate(res.Error, "Prize", prize.ID)
	}
	if res.RowsAffected == 0 {
		ok, err := exists(db, &PrizeRecord{}, prize.ID)
		if err != nil {
			return false, translate(err, "Prize", prize.ID)
		}
		if !ok {
			return false, notFound("Prize", prize.ID)
		}
		return false, nil
	}
	return true, nil
}

func (r *PrizeRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Prize, error) {
	var recs []PrizeRecord
	err := conn(ctx, r.db).Scopes(paginate(page, limit)).Order("created_at DESC, id DESC").Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Prize", "")
	}
	return toDomainList(recs, (*PrizeRecord).toDomain), nil
}

func (r *PrizeRepository) FindAvailable(ctx context.Context, now time.Time) ([]*models.Prize, error) {
	var recs []PrizeRecord
	err := conn(ctx, r.db).
		Where("active = ? AND stock_consumed < stock", true).
		Where("available_from IS NULL OR available_from <= ?", now).
		Where("available_until IS NULL OR available_until >= ?", now).
		Order("name ASC").
		Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Prize", "")
	}
	return toDomainList(recs, (*PrizeRecord).toDomain), nil
}

// ConsumeStock is a single guarded UPDATE, so the last unit can only be
// taken once.
func (r *PrizeRepository) ConsumeStock(ctx context.Context, id string) (bool, error) {
	res := conn(ctx, r.db).Model(&PrizeRecord{}).
		Where("id = ? AND stock_consumed < stock", id).
		Updates(map[string]any{
			"stock_consumed": gorm.Expr("stock_consumed + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, translate(res.Error, "Prize", id)
	}
	return res.RowsAffected == 1, nil
}
