package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
)

// MembershipRepository 是 repository.MembershipRepository 的 mock 实现
type MembershipRepository struct {
	mock.Mock
}

func (m *MembershipRepository) Find(ctx context.Context, roomID, userID uint) (*domain.Membership, error) {
	args := m.Called(ctx, roomID, userID)
	var membership *domain.Membership
	if args.Get(0) != nil {
		membership = args.Get(0).(*domain.Membership)
	}
	return membership, args.Error(1)
}

func (m *MembershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MembershipRepository) ChangeRole(ctx context.Context, roomID, userID uint, from domain.Role, apply func(*domain.Membership)) (*domain.Membership, error) {
	args := m.Called(ctx, roomID, userID, from, apply)
	var membership *domain.Membership
	if args.Get(0) != nil {
		membership = args.Get(0).(*domain.Membership)
	}
	return membership, args.Error(1)
}

func (m *MembershipRepository) Remove(ctx context.Context, roomID, userID uint, expect domain.Role) error {
	args := m.Called(ctx, roomID, userID, expect)
	return args.Error(0)
}

func (m *MembershipRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.Membership, error) {
	args := m.Called(ctx, roomID)
	var memberships []domain.Membership
	if args.Get(0) != nil {
		memberships = args.Get(0).([]domain.Membership)
	}
	return memberships, args.Error(1)
}

func (m *MembershipRepository) CountJoinedBy(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
