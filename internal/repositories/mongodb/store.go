package mongodb

import (
	"context"
	"errors"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionMembers        = "members"
	collectionRules          = "rules"
	collectionRuleActivation = "rule_activation"
	collectionEvents         = "events"
	collectionTransactions   = "transactions"
	collectionVouchers       = "vouchers"
	collectionVoucherLogs    = "voucher_logs"
	collectionDraws          = "lottery_draws"
	collectionPrizes         = "prizes"
	collectionWinners        = "winners"

	transientTxnLabel = "TransientTransactionError"
)

// caseInsensitive matches codes regardless of letter case. Queries using it
// hit the collated unique indexes created by EnsureIndexes.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// NewStores builds every repository on db. Units of work run in sessions
// started from client, so the deployment must be a replica set.
func NewStores(client *mongo.Client, db *mongo.Database) repositories.Stores {
	return repositories.Stores{
		Tx:           NewTransactor(client),
		Members:      NewMemberRepository(db),
		Rules:        NewRuleRepository(db),
		Events:       NewEventRepository(db),
		Transactions: NewTransactionRepository(db),
		Vouchers:     NewVoucherRepository(db),
		VoucherLogs:  NewVoucherLogRepository(db),
		Draws:        NewDrawRepository(db),
		Prizes:       NewPrizeRepository(db),
		Winners:      NewWinnerRepository(db),
	}
}

// Transactor runs units of work as multi-document transactions
type Transactor struct {
	client *mongo.Client
}

var _ repositories.Transactor = (*Transactor)(nil)

func NewTransactor(client *mongo.Client) *Transactor {
	return &Transactor{client: client}
}

// WithTx runs fn inside a session transaction. The session travels in the
// context handed to fn; a nested call joins the running transaction. The
// driver re-runs fn on transient errors such as write conflicts.
func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return dbError(err, "start session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && !ierr.IsKnown(err) {
		return dbError(err, "commit transaction")
	}
	return err
}

func notFound(entity, id string) error {
	return ierr.NewError(entity+" not found").
		WithHintf("%s not found", entity).
		WithReportableDetails(map[string]any{"id": id}).
		Mark(ierr.ErrNotFound)
}

func dbError(err error, op string) error {
	return ierr.WithError(err).
		WithMessage(op).
		WithHint("The request could not be stored, please retry").
		Mark(ierr.ErrDatabase)
}

// translate maps driver errors onto the error kinds the services understand.
// Transient transaction errors pass through untouched so the driver can
// retry the unit of work.
func translate(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound(entity, id)
	}
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) && labeled.HasErrorLabel(transientTxnLabel) {
		return err
	}
	if mongo.IsDuplicateKeyError(err) {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrConflict)
	}
	return dbError(err, entity)
}

// findOptions pages like the rest of the API: page starts at 1, a limit of
// zero or less returns everything.
func findOptions(page, limit int, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}
	return opts
}

// findAll runs filter on coll and decodes every document. It never returns a
// nil slice.
func findAll[T any](ctx context.Context, coll *mongo.Collection, entity string, filter any, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(err, entity, "")
	}
	defer cursor.Close(ctx)

	out := []*T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, translate(err, entity, "")
	}
	return out, nil
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, entity, id string) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate(err, entity, id)
	}
	return &doc, nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely
// on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(keys bson.D, name string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetName(name).SetUnique(true).SetCollation(caseInsensitive),
		}
	}
	plain := func(keys bson.D, name string) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
	}

	indexes := map[string][]mongo.IndexModel{
		collectionTransactions: {
			unique(bson.D{{Key: "receiptCode", Value: 1}}, "uniq_receipt_code"),
			plain(bson.D{{Key: "memberId", Value: 1}, {Key: "purchasedAt", Value: -1}}, "member_purchased"),
		},
		collectionVouchers: {
			unique(bson.D{{Key: "code", Value: 1}}, "uniq_voucher_code"),
			plain(bson.D{{Key: "memberId", Value: 1}, {Key: "createdAt", Value: -1}}, "member_created"),
			plain(bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}, "status_expires"),
			plain(bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}, "status_created"),
		},
		collectionVoucherLogs: {
			plain(bson.D{{Key: "voucherId", Value: 1}, {Key: "createdAt", Value: 1}}, "voucher_created"),
		},
		collectionRules: {
			plain(bson.D{{Key: "active", Value: 1}, {Key: "priority", Value: 1}}, "active_priority"),
		},
		collectionWinners: {
			unique(bson.D{{Key: "drawId", Value: 1}, {Key: "voucherId", Value: 1}}, "uniq_draw_voucher"),
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return dbError(err, "create indexes on "+name)
		}
	}
	return nil
}
