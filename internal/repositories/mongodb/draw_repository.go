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

// DrawRepository implements the repositories.DrawRepository interface
type DrawRepository struct {
	collection *mongo.Collection
}

var _ repositories.DrawRepository = (*DrawRepository)(nil)

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *mongo.Database) *DrawRepository {
	return &DrawRepository{
		collection: db.Collection(collectionDraws),
	}
}

// Create creates a new draw
func (r *DrawRepository) Create(ctx context.Context, draw *models.LotteryDraw) error {
	_, err := r.collection.InsertOne(ctx, draw)
	return translate(err, "Draw", draw.ID)
}

// FindByID finds a draw by ID
func (r *DrawRepository) FindByID(ctx context.Context, id string) (*models.LotteryDraw, error) {
	return findByID[models.LotteryDraw](ctx, r.collection, "Draw", id)
}

// FindByIDForUpdate writes to the draw document as it reads it. Inside a
// session transaction that write makes a concurrent run of the same draw
// fail with a write conflict instead of reading a stale winner list.
func (r *DrawRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.LotteryDraw, error) {
	var draw models.LotteryDraw
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&draw)
	if err != nil {
		return nil, translate(err, "Draw", id)
	}
	return &draw, nil
}

// FindAll finds all draws with pagination, latest period first
func (r *DrawRepository) FindAll(ctx context.Context, page, limit int) ([]*models.LotteryDraw, error) {
	opts := findOptions(page, limit, bson.D{{Key: "startsAt", Value: -1}})
	return findAll[models.LotteryDraw](ctx, r.collection, "Draw", bson.M{}, opts)
}

func (r *DrawRepository) IncrementDistributed(ctx context.Context, id string, n int) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.DrawStatusActive},
		bson.M{
			"$inc": bson.M{"prizesDistributed": n},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, translate(err, "Draw", id)
	}
	return res.ModifiedCount == 1, nil
}

func (r *DrawRepository) TransitionStatus(ctx context.Context, id string, from, to models.DrawStatus) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, translate(err, "Draw", id)
	}
	return res.ModifiedCount == 1, nil
}
