package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
)

// ReactionRepository 是 repository.ReactionRepository 的 mock 实现
type ReactionRepository struct {
	mock.Mock
}

func (m *ReactionRepository) Toggle(ctx context.Context, announcementID, userID uint, requested domain.ReactionType) (domain.ToggleOp, error) {
	args := m.Called(ctx, announcementID, userID, requested)
	return args.Get(0).(domain.ToggleOp), args.Error(1)
}

func (m *ReactionRepository) FindByAnnouncementAndUser(ctx context.Context, announcementID, userID uint) (*domain.Reaction, error) {
	args := m.Called(ctx, announcementID, userID)
	var r *domain.Reaction
	if args.Get(0) != nil {
		r = args.Get(0).(*domain.Reaction)
	}
	return r, args.Error(1)
}

func (m *ReactionRepository) CountsByAnnouncement(ctx context.Context, announcementID uint) (map[domain.ReactionType]int64, error) {
	args := m.Called(ctx, announcementID)
	var counts map[domain.ReactionType]int64
	if args.Get(0) != nil {
		counts = args.Get(0).(map[domain.ReactionType]int64)
	}
	return counts, args.Error(1)
}

func (m *ReactionRepository) ListByAnnouncementsForUser(ctx context.Context, announcementIDs []uint, userID uint) ([]domain.Reaction, error) {
	args := m.Called(ctx, announcementIDs, userID)
	var list []domain.Reaction
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.Reaction)
	}
	return list, args.Error(1)
}

func (m *ReactionRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReactionRepository) RecentlyReactedAnnouncementIDs(ctx context.Context, since time.Time) ([]uint, error) {
	args := m.Called(ctx, since)
	var ids []uint
	if args.Get(0) != nil {
		ids = args.Get(0).([]uint)
	}
	return ids, args.Error(1)
}

// ReactionCacheRepository 是 repository.ReactionCacheRepository 的 mock 实现
type ReactionCacheRepository struct {
	mock.Mock
}

func (m *ReactionCacheRepository) GetCounts(ctx context.Context, announcementID uint) (map[domain.ReactionType]int64, error) {
	args := m.Called(ctx, announcementID)
	var counts map[domain.ReactionType]int64
	if args.Get(0) != nil {
		counts = args.Get(0).(map[domain.ReactionType]int64)
	}
	return counts, args.Error(1)
}

func (m *ReactionCacheRepository) SetCounts(ctx context.Context, announcementID uint, counts map[domain.ReactionType]int64) error {
	args := m.Called(ctx, announcementID, counts)
	return args.Error(0)
}

func (m *ReactionCacheRepository) Adjust(ctx context.Context, announcementID uint, t domain.ReactionType, delta int64) error {
	args := m.Called(ctx, announcementID, t, delta)
	return args.Error(0)
}

func (m *ReactionCacheRepository) Invalidate(ctx context.Context, announcementID uint) error {
	args := m.Called(ctx, announcementID)
	return args.Error(0)
}
