package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository implements the repositories.EventRepository interface
type EventRepository struct {
	collection *mongo.Collection
}

var _ repositories.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{
		collection: db.Collection(collectionEvents),
	}
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	_, err := r.collection.InsertOne(ctx, event)
	return translate(err, "Event", event.ID)
}

// FindByID finds an event by ID
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	return findByID[models.Event](ctx, r.collection, "Event", id)
}

// Update updates an event
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": event.ID}, event)
	if err != nil {
		return translate(err, "Event", event.ID)
	}
	if res.MatchedCount == 0 {
		return notFound("Event", event.ID)
	}
	return nil
}

// FindAll finds all events with pagination, by start
func (r *EventRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Event, error) {
	opts := findOptions(page, limit, bson.D{{Key: "startsAt", Value: 1}})
	return findAll[models.Event](ctx, r.collection, "Event", bson.M{}, opts)
}

// FindActiveAt finds events switched on whose window contains at
func (r *EventRepository) FindActiveAt(ctx context.Context, at time.Time) ([]*models.Event, error) {
	filter := bson.M{
		"active":   true,
		"startsAt": bson.M{"$lte": at},
		"endsAt":   bson.M{"$gte": at},
	}
	opts := options.Find().SetSort(bson.D{{Key: "startsAt", Value: 1}})
	return findAll[models.Event](ctx, r.collection, "Event", filter, opts)
}
