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

var _ repositories.VoucherRepository = (*VoucherRepository)(nil)

// VoucherRepository handles MongoDB operations for vouchers. Status changes
// are conditional updates keyed on the current status.
type VoucherRepository struct {
	collection *mongo.Collection
}

// NewVoucherRepository creates a new VoucherRepository
func NewVoucherRepository(db *mongo.Database) *VoucherRepository {
	return &VoucherRepository{
		collection: db.Collection(collectionVouchers),
	}
}

func (r *VoucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	_, err := r.collection.InsertOne(ctx, voucher)
	return translate(err, "Voucher", voucher.Code)
}

func (r *VoucherRepository) FindByID(ctx context.Context, id string) (*models.Voucher, error) {
	return findByID[models.Voucher](ctx, r.collection, "Voucher", id)
}

func (r *VoucherRepository) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	opts := options.FindOne().SetCollation(caseInsensitive)
	if err := r.collection.FindOne(ctx, bson.M{"code": code}, opts).Decode(&voucher); err != nil {
		return nil, translate(err, "Voucher", code)
	}
	return &voucher, nil
}

func (r *VoucherRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"code": code},
		options.Count().SetCollation(caseInsensitive).SetLimit(1))
	if err != nil {
		return false, translate(err, "Voucher", code)
	}
	return n > 0, nil
}

// FindAll lists vouchers matching filter, newest first
func (r *VoucherRepository) FindAll(ctx context.Context, filter models.VoucherFilter) ([]*models.Voucher, error) {
	query := bson.M{}
	if filter.MemberID != "" {
		query["memberId"] = filter.MemberID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	opts := findOptions(filter.Page, filter.Limit, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return findAll[models.Voucher](ctx, r.collection, "Voucher", query, opts)
}

func (r *VoucherRepository) FindExpirable(ctx context.Context, now time.Time, limit int) ([]*models.Voucher, error) {
	filter := bson.M{
		"status":    models.VoucherStatusActive,
		"expiresAt": bson.M{"$lt": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[models.Voucher](ctx, r.collection, "Voucher", filter, opts)
}

func (r *VoucherRepository) FindLotteryEligible(ctx context.Context, start, end time.Time) ([]*models.Voucher, error) {
	filter := bson.M{
		"status":        models.VoucherStatusActive,
		"lotteryNumber": bson.M{"$exists": true, "$nin": bson.A{nil, ""}},
		"createdAt":     bson.M{"$gte": start, "$lte": end},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.Voucher](ctx, r.collection, "Voucher", filter, opts)
}

func (r *VoucherRepository) TransitionStatus(ctx context.Context, id string, change models.VoucherStatusChange) (bool, error) {
	set := bson.M{"status": change.To, "updatedAt": change.At}
	if change.To == models.VoucherStatusUsed {
		set["usedAt"] = change.At
		set["usedTransactionId"] = change.UsedTransactionID
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": change.From},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, translate(err, "Voucher", id)
	}
	return res.ModifiedCount == 1, nil
}
