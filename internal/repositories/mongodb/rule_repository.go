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

// activeRuleLockID names the single document every activation writes, so
// two concurrent activations conflict and one of them retries.
const activeRuleLockID = "active-rule"

var _ repositories.RuleRepository = (*RuleRepository)(nil)

// RuleRepository handles MongoDB operations for rules
type RuleRepository struct {
	collection *mongo.Collection
	activation *mongo.Collection
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *mongo.Database) *RuleRepository {
	return &RuleRepository{
		collection: db.Collection(collectionRules),
		activation: db.Collection(collectionRuleActivation),
	}
}

func (r *RuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	_, err := r.collection.InsertOne(ctx, rule)
	return translate(err, "Rule", rule.ID)
}

func (r *RuleRepository) FindByID(ctx context.Context, id string) (*models.Rule, error) {
	return findByID[models.Rule](ctx, r.collection, "Rule", id)
}

// Update replaces the stored rule
func (r *RuleRepository) Update(ctx context.Context, rule *models.Rule) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": rule.ID}, rule)
	if err != nil {
		return translate(err, "Rule", rule.ID)
	}
	if res.MatchedCount == 0 {
		return notFound("Rule", rule.ID)
	}
	return nil
}

// FindAll lists rules by priority, newest first within a priority
func (r *RuleRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Rule, error) {
	opts := findOptions(page, limit, bson.D{{Key: "priority", Value: 1}, {Key: "createdAt", Value: -1}})
	return findAll[models.Rule](ctx, r.collection, "Rule", bson.M{}, opts)
}

func (r *RuleRepository) FindApplicable(ctx context.Context, at time.Time) (*models.Rule, error) {
	filter := bson.M{
		"active":   true,
		"startsAt": bson.M{"$lte": at},
		"$or": bson.A{
			bson.M{"endsAt": nil},
			bson.M{"endsAt": bson.M{"$gte": at}},
		},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "priority", Value: 1}, {Key: "createdAt", Value: -1}})

	var rule models.Rule
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&rule); err != nil {
		return nil, translate(err, "Active rule", "")
	}
	return &rule, nil
}

// ActivateExclusive writes the activation lock document first, then flips
// the flags. Two transactions activating different rules both touch the lock
// document, so the second one aborts with a write conflict and is retried.
func (r *RuleRepository) ActivateExclusive(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := r.activation.UpdateOne(ctx,
		bson.M{"_id": activeRuleLockID},
		bson.M{"$set": bson.M{"ruleId": id, "updatedAt": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return translate(err, "Rule", id)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"active": true, "updatedAt": now}},
	)
	if err != nil {
		return translate(err, "Rule", id)
	}
	if res.MatchedCount == 0 {
		return notFound("Rule", id)
	}

	_, err = r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$ne": id}, "active": true},
		bson.M{"$set": bson.M{"active": false, "updatedAt": now}},
	)
	return translate(err, "Rule", id)
}

func (r *RuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"active": active, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return translate(err, "Rule", id)
	}
	if res.MatchedCount == 0 {
		return notFound("Rule", id)
	}
	return nil
}
