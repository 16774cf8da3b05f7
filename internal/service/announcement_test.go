package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
	"github.com/Kent0710/classroom-announcement-app/internal/repository/mocks"
	"github.com/Kent0710/classroom-announcement-app/internal/service"
)

type announcementFixture struct {
	service          *service.AnnouncementService
	roomRepo         *mocks.RoomRepository
	membershipRepo   *mocks.MembershipRepository
	announcementRepo *mocks.AnnouncementRepository
	reactionRepo     *mocks.ReactionRepository
	reactionCache    *mocks.ReactionCacheRepository
}

func newAnnouncementFixture(t *testing.T) *announcementFixture {
	t.Helper()
	f := &announcementFixture{
		roomRepo:         new(mocks.RoomRepository),
		membershipRepo:   new(mocks.MembershipRepository),
		announcementRepo: new(mocks.AnnouncementRepository),
		reactionRepo:     new(mocks.ReactionRepository),
		reactionCache:    new(mocks.ReactionCacheRepository),
	}
	f.service = service.NewAnnouncementService(f.roomRepo, f.membershipRepo, f.announcementRepo, f.reactionRepo, f.reactionCache)
	return f
}

func TestAnnouncementService_Post_ByOwner(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}

	f.roomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	f.membershipRepo.On("Find", ctx, uint(1), uint(10)).Return(nil, repository.ErrMembershipNotFound).Once()
	f.announcementRepo.On("Create", ctx, mock.MatchedBy(func(a *domain.Announcement) bool {
		return a.RoomID == 1 && a.AuthorID == 10 && a.Title == "Exam" && a.Content == "Friday 9am"
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Announcement).ID = 5
		}).
		Return(nil).Once()

	a, err := f.service.PostAnnouncement(ctx, 1, 10, " Exam ", " Friday 9am ")

	require.NoError(t, err)
	assert.Equal(t, uint(5), a.ID)
	f.announcementRepo.AssertExpectations(t)
}

func TestAnnouncementService_Post_MemberRejected(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	member := &domain.Membership{RoomID: 1, UserID: 30, Role: domain.RoleMember}

	f.roomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	f.membershipRepo.On("Find", ctx, uint(1), uint(30)).Return(member, nil).Once()

	_, err := f.service.PostAnnouncement(ctx, 1, 30, "Exam", "Friday 9am")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotAnnouncementAdmin), "普通成员不能发布公告")
	f.announcementRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAnnouncementService_Post_NonMemberRejected(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}

	f.roomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	f.membershipRepo.On("Find", ctx, uint(1), uint(99)).Return(nil, repository.ErrMembershipNotFound).Once()

	_, err := f.service.PostAnnouncement(ctx, 1, 99, "Exam", "Friday 9am")

	require.Error(t, err)
	// 非成员先按无访问权限拒绝
	assert.True(t, errors.Is(err, service.ErrNoRoomAccess))
}

func TestAnnouncementService_Post_InvalidInput(t *testing.T) {
	f := newAnnouncementFixture(t)

	_, err := f.service.PostAnnouncement(context.Background(), 1, 10, "   ", "content")
	assert.True(t, errors.Is(err, service.ErrInvalidAnnouncement))

	_, err = f.service.PostAnnouncement(context.Background(), 1, 10, "title", "")
	assert.True(t, errors.Is(err, service.ErrInvalidAnnouncement))

	f.roomRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestAnnouncementService_Edit_ByAdmin(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	a := &domain.Announcement{ID: 5, RoomID: 1, AuthorID: 10, Title: "Old", Content: "Old content"}
	room := &domain.Room{ID: 1, CreatedBy: 10}
	admin := &domain.Membership{RoomID: 1, UserID: 20, Role: domain.RoleAdmin}

	f.announcementRepo.On("FindByID", ctx, uint(5)).Return(a, nil).Once()
	f.roomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	f.membershipRepo.On("Find", ctx, uint(1), uint(20)).Return(admin, nil).Once()
	f.announcementRepo.On("Update", ctx, mock.MatchedBy(func(updated *domain.Announcement) bool {
		return updated.ID == 5 && updated.Title == "New" && updated.Content == "New content"
	})).Return(nil).Once()

	// 管理员可以编辑他人发布的公告
	updated, err := f.service.EditAnnouncement(ctx, 5, 20, "New", "New content")

	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	f.announcementRepo.AssertExpectations(t)
}

func TestAnnouncementService_Delete_InvalidatesCache(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	a := &domain.Announcement{ID: 5, RoomID: 1, AuthorID: 10}
	room := &domain.Room{ID: 1, CreatedBy: 10}

	f.announcementRepo.On("FindByID", ctx, uint(5)).Return(a, nil).Once()
	f.roomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	f.membershipRepo.On("Find", ctx, uint(1), uint(10)).Return(nil, repository.ErrMembershipNotFound).Once()
	f.announcementRepo.On("DeleteCascade", ctx, uint(5)).Return(nil).Once()
	f.reactionCache.On("Invalidate", ctx, uint(5)).Return(nil).Once()

	err := f.service.DeleteAnnouncement(ctx, 5, 10)

	require.NoError(t, err)
	f.reactionCache.AssertExpectations(t)
}

func TestAnnouncementService_List_WithReactionSummaries(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}
	member := &domain.Membership{RoomID: 1, UserID: 30, Role: domain.RoleMember}
	announcements := []domain.Announcement{
		{ID: 5, RoomID: 1, AuthorID: 10, Title: "Exam"},
		{ID: 6, RoomID: 1, AuthorID: 10, Title: "Field trip"},
	}
	cached := map[domain.ReactionType]int64{domain.ReactionLike: 2}
	fresh := map[domain.ReactionType]int64{domain.ReactionLove: 1}

	f.roomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	f.membershipRepo.On("Find", ctx, uint(1), uint(30)).Return(member, nil).Once()
	f.announcementRepo.On("ListByRoom", ctx, uint(1)).Return(announcements, nil).Once()
	f.reactionRepo.On("ListByAnnouncementsForUser", ctx, []uint{5, 6}, uint(30)).
		Return([]domain.Reaction{{AnnouncementID: 5, UserID: 30, Type: domain.ReactionLike}}, nil).Once()
	// 第一条命中缓存，第二条回源并回填
	f.reactionCache.On("GetCounts", ctx, uint(5)).Return(cached, nil).Once()
	f.reactionCache.On("GetCounts", ctx, uint(6)).Return(nil, repository.ErrNotFound).Once()
	f.reactionRepo.On("CountsByAnnouncement", ctx, uint(6)).Return(fresh, nil).Once()
	f.reactionCache.On("SetCounts", ctx, uint(6), fresh).Return(nil).Once()

	views, err := f.service.ListAnnouncements(ctx, 1, 30)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(2), views[0].Reactions[domain.ReactionLike])
	assert.Equal(t, domain.ReactionLike, views[0].OwnReaction, "应标记用户自己的回应")
	assert.Equal(t, int64(1), views[1].Reactions[domain.ReactionLove])
	assert.Empty(t, views[1].OwnReaction)

	f.reactionCache.AssertExpectations(t)
}

func TestAnnouncementService_List_NonMemberRejected(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	room := &domain.Room{ID: 1, CreatedBy: 10}

	f.roomRepo.On("FindByID", ctx, uint(1)).Return(room, nil).Once()
	f.membershipRepo.On("Find", ctx, uint(1), uint(99)).Return(nil, repository.ErrMembershipNotFound).Once()

	_, err := f.service.ListAnnouncements(ctx, 1, 99)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNoRoomAccess))
	f.announcementRepo.AssertNotCalled(t, "ListByRoom", mock.Anything, mock.Anything)
}
