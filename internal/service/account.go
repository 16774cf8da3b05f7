package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
)

// AccountService 负责用户个人页的聚合统计。
type AccountService struct {
	userRepo         repository.UserRepository
	roomRepo         repository.RoomRepository
	membershipRepo   repository.MembershipRepository
	announcementRepo repository.AnnouncementRepository
	reactionRepo     repository.ReactionRepository
}

// NewAccountService 创建 AccountService 实例。
func NewAccountService(
	userRepo repository.UserRepository,
	roomRepo repository.RoomRepository,
	membershipRepo repository.MembershipRepository,
	announcementRepo repository.AnnouncementRepository,
	reactionRepo repository.ReactionRepository,
) *AccountService {
	if userRepo == nil || roomRepo == nil || membershipRepo == nil || announcementRepo == nil || reactionRepo == nil {
		panic("all repositories must be non-nil for AccountService")
	}
	return &AccountService{
		userRepo:         userRepo,
		roomRepo:         roomRepo,
		membershipRepo:   membershipRepo,
		announcementRepo: announcementRepo,
		reactionRepo:     reactionRepo,
	}
}

// AccountSummary 是个人页展示的活动统计。
type AccountSummary struct {
	User              *domain.User
	RoomsOwned        int64
	RoomsJoined       int64
	AnnouncementsMade int64
	ReactionsGiven    int64
}

// Summary 汇总用户的活动数据：创建的房间数、加入的房间数、
// 发布的公告数、做出的回应数。
func (s *AccountService) Summary(ctx context.Context, userID uint) (*AccountSummary, error) {
	logCtx := logrus.WithField("user_id", userID)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logCtx.WithError(err).Error("Database error finding user")
		return nil, ErrInternalServer
	}
	user.Password = ""

	owned, err := s.roomRepo.CountOwnedBy(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to count owned rooms")
		return nil, ErrInternalServer
	}
	joined, err := s.membershipRepo.CountJoinedBy(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to count joined rooms")
		return nil, ErrInternalServer
	}
	announcements, err := s.announcementRepo.CountByAuthor(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to count announcements")
		return nil, ErrInternalServer
	}
	reactions, err := s.reactionRepo.CountByUser(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to count reactions")
		return nil, ErrInternalServer
	}

	return &AccountSummary{
		User:              user,
		RoomsOwned:        owned,
		RoomsJoined:       joined,
		AnnouncementsMade: announcements,
		ReactionsGiven:    reactions,
	}, nil
}
