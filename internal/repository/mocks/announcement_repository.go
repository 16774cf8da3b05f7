package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
)

// AnnouncementRepository 是 repository.AnnouncementRepository 的 mock 实现
type AnnouncementRepository struct {
	mock.Mock
}

func (m *AnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *AnnouncementRepository) FindByID(ctx context.Context, id uint) (*domain.Announcement, error) {
	args := m.Called(ctx, id)
	var a *domain.Announcement
	if args.Get(0) != nil {
		a = args.Get(0).(*domain.Announcement)
	}
	return a, args.Error(1)
}

func (m *AnnouncementRepository) Update(ctx context.Context, a *domain.Announcement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *AnnouncementRepository) DeleteCascade(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *AnnouncementRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.Announcement, error) {
	args := m.Called(ctx, roomID)
	var list []domain.Announcement
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.Announcement)
	}
	return list, args.Error(1)
}

func (m *AnnouncementRepository) CountByAuthor(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
