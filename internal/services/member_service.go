package services

import (
	"context"
	"strings"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
)

// MemberServiceImpl handles member-related business logic
type MemberServiceImpl struct {
	ServiceParams
}

var _ MemberService = (*MemberServiceImpl)(nil)

// NewMemberService creates a new member service
func NewMemberService(params ServiceParams) *MemberServiceImpl {
	return &MemberServiceImpl{ServiceParams: params.withDefaults()}
}

// CreateMember enrolls a shopper. Tier defaults to BRONZE.
func (s *MemberServiceImpl) CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" {
		return nil, ierr.NewError("name and phone are required").
			WithHint("Member name and phone are required").
			Mark(ierr.ErrValidation)
	}
	tier := req.Tier
	if tier == "" {
		tier = models.MemberTierBronze
	}

	now := s.now()
	member := &models.Member{
		ID:        models.GenerateID(models.IDPrefixMember),
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Address:   req.Address,
		Tier:      tier,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Members.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// GetMember retrieves a member by ID
func (s *MemberServiceImpl) GetMember(ctx context.Context, id string) (*models.Member, error) {
	return s.Members.FindByID(ctx, id)
}
