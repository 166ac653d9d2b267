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

var _ repositories.PrizeRepository = (*PrizeRepository)(nil)

// PrizeRepository handles the prize inventory
type PrizeRepository struct {
	collection *mongo.Collection
}

// NewPrizeRepository creates a new PrizeRepository
func NewPrizeRepository(db *mongo.Database) *PrizeRepository {
	return &PrizeRepository{
		collection: db.Collection(collectionPrizes),
	}
}

func (r *PrizeRepository) Create(ctx context.Context, prize *models.Prize) error {
	_, err := r.collection.InsertOne(ctx, prize)
	return translate(err, "Prize", prize.ID)
}

func (r *PrizeRepository) FindByID(ctx context.Context, id string) (*models.Prize, error) {
	return findByID[models.Prize](ctx, r.collection, "Prize", id)
}

// Update only matches while the new stock still covers stockConsumed, which
// it never writes.
func (r *PrizeRepository) Update(ctx context.Context, prize *models.Prize) (bool, error) {
	set := bson.M{
		"name":           prize.Name,
		"description":    prize.Description,
		"category":       prize.Category,
		"value":          prize.Value,
		"imageUrl":       prize.ImageURL,
		"stock":          prize.Stock,
		"active":         prize.Active,
		"availableFrom":  prize.AvailableFrom,
		"availableUntil": prize.AvailableUntil,
		"updatedAt":      prize.UpdatedAt,
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": prize.ID, "stockConsumed": bson.M{"$lte": prize.Stock}},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, translate(err, "Prize", prize.ID)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, prize.ID); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (r *PrizeRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Prize, error) {
	opts := findOptions(page, limit, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return findAll[models.Prize](ctx, r.collection, "Prize", bson.M{}, opts)
}

// FindAvailable returns active prizes with stock left whose window contains now
func (r *PrizeRepository) FindAvailable(ctx context.Context, now time.Time) ([]*models.Prize, error) {
	filter := bson.M{
		"active": true,
		"$expr":  bson.M{"$lt": bson.A{"$stockConsumed", "$stock"}},
		"$and": bson.A{
			bson.M{"$or": bson.A{bson.M{"availableFrom": nil}, bson.M{"availableFrom": bson.M{"$lte": now}}}},
			bson.M{"$or": bson.A{bson.M{"availableUntil": nil}, bson.M{"availableUntil": bson.M{"$gte": now}}}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll[models.Prize](ctx, r.collection, "Prize", filter, opts)
}

// ConsumeStock increments stockConsumed only while it is below stock
func (r *PrizeRepository) ConsumeStock(ctx context.Context, id string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":   id,
			"$expr": bson.M{"$lt": bson.A{"$stockConsumed", "$stock"}},
		},
		bson.M{
			"$inc": bson.M{"stockConsumed": 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, translate(err, "Prize", id)
	}
	return res.ModifiedCount == 1, nil
}
