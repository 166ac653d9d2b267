package mongodb

import (
	"context"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure VoucherLogRepository implements the interface
var _ repositories.VoucherLogRepository = (*VoucherLogRepository)(nil)

// VoucherLogRepository handles the append-only voucher audit trail
type VoucherLogRepository struct {
	collection *mongo.Collection
}

// NewVoucherLogRepository creates a new VoucherLogRepository
func NewVoucherLogRepository(db *mongo.Database) *VoucherLogRepository {
	return &VoucherLogRepository{
		collection: db.Collection(collectionVoucherLogs),
	}
}

// Create inserts a new log record
func (r *VoucherLogRepository) Create(ctx context.Context, log *models.VoucherLog) error {
	_, err := r.collection.InsertOne(ctx, log)
	return translate(err, "Voucher log", log.ID)
}

// FindByVoucherID returns the history of a voucher, oldest first
func (r *VoucherLogRepository) FindByVoucherID(ctx context.Context, voucherID string) ([]*models.VoucherLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.VoucherLog](ctx, r.collection, "Voucher log", bson.M{"voucherId": voucherID}, opts)
}
