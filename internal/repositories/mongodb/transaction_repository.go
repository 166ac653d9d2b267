package mongodb

import (
	"context"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository stores purchases. Receipt codes are unique without
// regard to case.
type TransactionRepository struct {
	collection *mongo.Collection
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{
		collection: db.Collection(collectionTransactions),
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	_, err := r.collection.InsertOne(ctx, txn)
	return translate(err, "Transaction", txn.ReceiptCode)
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	return findByID[models.Transaction](ctx, r.collection, "Transaction", id)
}

func (r *TransactionRepository) FindByReceiptCode(ctx context.Context, code string) (*models.Transaction, error) {
	var txn models.Transaction
	opts := options.FindOne().SetCollation(caseInsensitive)
	if err := r.collection.FindOne(ctx, bson.M{"receiptCode": code}, opts).Decode(&txn); err != nil {
		return nil, translate(err, "Transaction", code)
	}
	return &txn, nil
}

// FindByMemberID finds purchases for a member, newest first, with pagination
func (r *TransactionRepository) FindByMemberID(ctx context.Context, memberID string, page, limit int) ([]*models.Transaction, error) {
	opts := findOptions(page, limit, bson.D{{Key: "purchasedAt", Value: -1}, {Key: "_id", Value: -1}})
	return findAll[models.Transaction](ctx, r.collection, "Transaction", bson.M{"memberId": memberID}, opts)
}
