package mysql

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"gorm.io/gorm"
)

var _ repositories.EventRepository = (*EventRepository)(nil)

// EventRepository is the gorm implementation of repositories.EventRepository
type EventRepository struct {
	db *gorm.DB
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return translate(conn(ctx, r.db).Create(toEventRecord(event)).Error, "Event", event.ID)
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var rec EventRecord
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, translate(err, "Event", id)
	}
	return rec.toDomain(), nil
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	db := conn(ctx, r.db)
	res := db.Model(&EventRecord{}).Where("id = ?", event.ID).Select("*").Omit("id", "created_at").Updates(toEventRecord(event))
	if res.Error != nil {
		return translate(res.Error, "Event", event.ID)
	}
	if res.RowsAffected == 0 {
		ok, err := exists(db, &EventRecord{}, event.ID)
		if err != nil {
			return translate(err, "Event", event.ID)
		}
		if !ok {
			return notFound("Event", event.ID)
		}
	}
	return nil
}

func (r *EventRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Event, error) {
	var recs []EventRecord
	err := conn(ctx, r.db).Scopes(paginate(page, limit)).Order("starts_at ASC").Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Event", "")
	}
	return toDomainList(recs, (*EventRecord).toDomain), nil
}

func (r *EventRepository) FindActiveAt(ctx context.Context, at time.Time) ([]*models.Event, error) {
	var recs []EventRecord
	err := conn(ctx, r.db).
		Where("active = ? AND starts_at <= ? AND ends_at >= ?", true, at, at).
		Order("starts_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Event", "")
	}
	return toDomainList(recs, (*EventRecord).toDomain), nil
}
