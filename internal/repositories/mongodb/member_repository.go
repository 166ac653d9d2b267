package mongodb

import (
	"context"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure MemberRepository implements the interface
var _ repositories.MemberRepository = (*MemberRepository)(nil)

// MemberRepository handles MongoDB operations for Member
type MemberRepository struct {
	collection *mongo.Collection
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *mongo.Database) *MemberRepository {
	return &MemberRepository{
		collection: db.Collection(collectionMembers),
	}
}

// Create inserts a new member
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	_, err := r.collection.InsertOne(ctx, member)
	return translate(err, "Member", member.ID)
}

// FindByID finds a member by ID
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*models.Member, error) {
	return findByID[models.Member](ctx, r.collection, "Member", id)
}
