package mongodb

import (
	"context"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WinnerRepository implements the repositories.WinnerRepository interface
type WinnerRepository struct {
	collection *mongo.Collection
}

var _ repositories.WinnerRepository = (*WinnerRepository)(nil)

// NewWinnerRepository creates a new WinnerRepository
func NewWinnerRepository(db *mongo.Database) *WinnerRepository {
	return &WinnerRepository{
		collection: db.Collection(collectionWinners),
	}
}

// CreateMany creates multiple winners
func (r *WinnerRepository) CreateMany(ctx context.Context, winners []*models.Winner) error {
	if len(winners) == 0 {
		return nil
	}
	docs := make([]interface{}, len(winners))
	for i, w := range winners {
		docs[i] = w
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return translate(err, "Winner", winners[0].DrawID)
}

// FindByID finds a winner by ID
func (r *WinnerRepository) FindByID(ctx context.Context, id string) (*models.Winner, error) {
	return findByID[models.Winner](ctx, r.collection, "Winner", id)
}

// FindByDrawID finds winners by draw ID in the order they were drawn
func (r *WinnerRepository) FindByDrawID(ctx context.Context, drawID string) ([]*models.Winner, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.Winner](ctx, r.collection, "Winner", bson.M{"drawId": drawID}, opts)
}

func (r *WinnerRepository) TransitionStatus(ctx context.Context, id string, change models.WinnerStatusChange) (bool, error) {
	set := bson.M{"status": change.To, "updatedAt": change.At}
	switch change.To {
	case models.WinnerStatusChosen:
		set["prizeId"] = change.PrizeID
		set["chosenAt"] = change.At
	case models.WinnerStatusCollected:
		set["collectedAt"] = change.At
		set["collectedBy"] = change.AdminID
		set["collectionNote"] = change.Note
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": change.From},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, translate(err, "Winner", id)
	}
	return res.ModifiedCount == 1, nil
}
