package mysql

import (
	"context"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"gorm.io/gorm"
)

var _ repositories.MemberRepository = (*MemberRepository)(nil)

// MemberRepository is the gorm implementation of repositories.MemberRepository
type MemberRepository struct {
	db *gorm.DB
}

func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	return translate(conn(ctx, r.db).Create(toMemberRecord(member)).Error, "Member", member.ID)
}

func (r *MemberRepository) FindByID(ctx context.Context, id string) (*models.Member, error) {
	var rec MemberRecord
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, translate(err, "Member", id)
	}
	return rec.toDomain(), nil
}
