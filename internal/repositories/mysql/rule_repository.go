package mysql

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const activeRuleLockID = "active-rule"

var _ repositories.RuleRepository = (*RuleRepository)(nil)

// RuleRepository is the gorm implementation of repositories.RuleRepository
type RuleRepository struct {
	db *gorm.DB
}

func (r *RuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	return translate(conn(ctx, r.db).Create(toRuleRecord(rule)).Error, "Rule", rule.ID)
}

func (r *RuleRepository) FindByID(ctx context.Context, id string) (*models.Rule, error) {
	var rec RuleRecord
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, translate(err, "Rule", id)
	}
	return rec.toDomain(), nil
}

func (r *RuleRepository) Update(ctx context.Context, rule *models.Rule) error {
	db := conn(ctx, r.db)
	res := db.Model(&RuleRecord{}).Where("id = ?", rule.ID).Select("*").Omit("id", "created_at").Updates(toRuleRecord(rule))
	if res.Error != nil {
		return translate(res.Error, "Rule", rule.ID)
	}
	if res.RowsAffected == 0 {
		ok, err := exists(db, &RuleRecord{}, rule.ID)
		if err != nil {
			return translate(err, "Rule", rule.ID)
		}
		if !ok {
			return notFound("Rule", rule.ID)
		}
	}
	return nil
}

func (r *RuleRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Rule, error) {
	var recs []RuleRecord
	err := conn(ctx, r.db).Scopes(paginate(page, limit)).Order("priority ASC, created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Rule", "")
	}
	return toDomainList(recs, (*RuleRecord).toDomain), nil
}

func (r *RuleRepository) FindApplicable(ctx context.Context, at time.Time) (*models.Rule, error) {
	var rec RuleRecord
	err := conn(ctx, r.db).
		Where("active = ? AND starts_at <= ? AND (ends_at IS NULL OR ends_at >= ?)", true, at, at).
		Order("priority ASC, created_at DESC").
		Take(&rec).Error
	if err != nil {
		return nil, translate(err, "Active rule", "")
	}
	return rec.toDomain(), nil
}

// ActivateExclusive upserts the activation lock row before touching the
// flags. The row lock is held until commit, so concurrent activations run
// one after the other.
func (r *RuleRepository) ActivateExclusive(ctx context.Context, id string) error {
	db := conn(ctx, r.db)
	now := time.Now().UTC()

	lock := RuleActivationRecord{ID: activeRuleLockID, RuleID: id, UpdatedAt: now}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rule_id", "updated_at"}),
	}).Create(&lock).Error
	if err != nil {
		return translate(err, "Rule", id)
	}

	ok, err := exists(db.Clauses(clause.Locking{Strength: "UPDATE"}), &RuleRecord{}, id)
	if err != nil {
		return translate(err, "Rule", id)
	}
	if !ok {
		return notFound("Rule", id)
	}

	err = db.Model(&RuleRecord{}).Where("id = ?", id).
		Updates(map[string]any{"active": true, "updated_at": now}).Error
	if err != nil {
		return translate(err, "Rule", id)
	}
	err = db.Model(&RuleRecord{}).Where("id <> ? AND active = ?", id, true).
		Updates(map[string]any{"active": false, "updated_at": now}).Error
	return translate(err, "Rule", id)
}

func (r *RuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	db := conn(ctx, r.db)
	res := db.Model(&RuleRecord{}).Where("id = ?", id).
		Updates(map[string]any{"active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return translate(res.Error, "Rule", id)
	}
	if res.RowsAffected == 0 {
		return notFound("Rule", id)
	}
	return nil
}
