package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
)

// AnnouncementService 负责公告的发布、编辑、删除与列表。
// 写操作需要管理员及以上权限，读操作对房间全体成员开放。
type AnnouncementService struct {
	roomRepo         repository.RoomRepository
	membershipRepo   repository.MembershipRepository
	announcementRepo repository.AnnouncementRepository
	reactionRepo     repository.ReactionRepository
	reactionCache    repository.ReactionCacheRepository
}

// NewAnnouncementService 创建 AnnouncementService 实例。
func NewAnnouncementService(
	roomRepo repository.RoomRepository,
	membershipRepo repository.MembershipRepository,
	announcementRepo repository.AnnouncementRepository,
	reactionRepo repository.ReactionRepository,
	reactionCache repository.ReactionCacheRepository,
) *AnnouncementService {
	if roomRepo == nil || membershipRepo == nil || announcementRepo == nil || reactionRepo == nil {
		panic("all repositories must be non-nil for AnnouncementService")
	}
	return &AnnouncementService{
		roomRepo:         roomRepo,
		membershipRepo:   membershipRepo,
		announcementRepo: announcementRepo,
		reactionRepo:     reactionRepo,
		reactionCache:    reactionCache,
	}
}

// AnnouncementView 是公告列表中的一条：公告本体、按类型的回应
// 计数、当前用户自己选中的表情（未回应时为空）。
type AnnouncementView struct {
	Announcement domain.Announcement
	Reactions    map[domain.ReactionType]int64
	OwnReaction  domain.ReactionType
}

// PostAnnouncement 在房间内发布公告。需要管理员及以上权限；
// 非成员与普通成员被拒绝且不产生任何写入。
func (s *AnnouncementService) PostAnnouncement(ctx context.Context, roomID, authorID uint, title, content string) (*domain.Announcement, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "author_id": authorID})

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" || len(title) > 200 {
		return nil, ErrInvalidAnnouncement
	}

	room, err := s.findRoom(ctx, roomID, logCtx)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, room, authorID, logCtx); err != nil {
		return nil, err
	}

	a := &domain.Announcement{
		RoomID:   roomID,
		AuthorID: authorID,
		Title:    title,
		Content:  content,
	}
	if err := s.announcementRepo.Create(ctx, a); err != nil {
		logCtx.WithError(err).Error("Failed to create announcement")
		return nil, ErrInternalServer
	}

	logCtx.WithField("announcement_id", a.ID).Info("Announcement posted")
	return a, nil
}

// EditAnnouncement 修改公告的标题与内容。需要管理员及以上权限，
// 不要求操作者是原作者。
func (s *AnnouncementService) EditAnnouncement(ctx context.Context, announcementID, actorID uint, title, content string) (*domain.Announcement, error) {
	logCtx := logrus.WithFields(logrus.Fields{"announcement_id": announcementID, "actor_id": actorID})

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" || len(title) > 200 {
		return nil, ErrInvalidAnnouncement
	}

	a, room, err := s.findAnnouncementWithRoom(ctx, announcementID, logCtx)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, room, actorID, logCtx); err != nil {
		return nil, err
	}

	a.Title = title
	a.Content = content
	if err := s.announcementRepo.Update(ctx, a); err != nil {
		logCtx.WithError(err).Error("Failed to update announcement")
		return nil, ErrInternalServer
	}

	logCtx.Info("Announcement updated")
	return a, nil
}

// DeleteAnnouncement 删除公告及其全部表情回应。需要管理员及以上权限。
func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, announcementID, actorID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"announcement_id": announcementID, "actor_id": actorID})

	a, room, err := s.findAnnouncementWithRoom(ctx, announcementID, logCtx)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, room, actorID, logCtx); err != nil {
		return err
	}

	if err := s.announcementRepo.DeleteCascade(ctx, announcementID); err != nil {
		if errors.Is(err, repository.ErrAnnouncementNotFound) {
			return ErrAnnouncementNotFound
		}
		logCtx.WithError(err).Error("Failed to delete announcement")
		return ErrInternalServer
	}

	// 计数缓存一并失效，读路径会回源重建
	if s.reactionCache != nil {
		if err := s.reactionCache.Invalidate(ctx, a.ID); err != nil {
			logCtx.WithError(err).Warn("Failed to invalidate reaction cache after delete")
		}
	}

	logCtx.Info("Announcement deleted")
	return nil
}

// ListAnnouncements 返回房间的公告列表（按创建时间倒序），每条
// 附带按类型的回应计数与当前用户自己的回应。非成员被拒绝。
//
// 计数优先读 Redis 缓存，未命中时回源数据库并回填；缓存故障
// 降级为直接读库，不影响请求成功。
func (s *AnnouncementService) ListAnnouncements(ctx context.Context, roomID, userID uint) ([]AnnouncementView, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	room, err := s.findRoom(ctx, roomID, logCtx)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, room, userID, logCtx); err != nil {
		return nil, err
	}

	announcements, err := s.announcementRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list announcements")
		return nil, ErrInternalServer
	}
	if len(announcements) == 0 {
		return []AnnouncementView{}, nil
	}

	ids := make([]uint, len(announcements))
	for i := range announcements {
		ids[i] = announcements[i].ID
	}

	own, err := s.reactionRepo.ListByAnnouncementsForUser(ctx, ids, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load user's own reactions")
		return nil, ErrInternalServer
	}
	ownByAnnouncement := make(map[uint]domain.ReactionType, len(own))
	for _, r := range own {
		ownByAnnouncement[r.AnnouncementID] = r.Type
	}

	views := make([]AnnouncementView, 0, len(announcements))
	for i := range announcements {
		a := announcements[i]
		counts, err := s.reactionCounts(ctx, a.ID, logCtx)
		if err != nil {
			return nil, err
		}
		views = append(views, AnnouncementView{
			Announcement: a,
			Reactions:    counts,
			OwnReaction:  ownByAnnouncement[a.ID],
		})
	}
	return views, nil
}

// reactionCounts 读取某公告的回应计数，缓存优先、数据库权威
func (s *AnnouncementService) reactionCounts(ctx context.Context, announcementID uint, logCtx *logrus.Entry) (map[domain.ReactionType]int64, error) {
	if s.reactionCache != nil {
		counts, err := s.reactionCache.GetCounts(ctx, announcementID)
		if err == nil {
			return counts, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			// 缓存故障降级回源，不让 Redis 拖垮读请求
			logCtx.WithError(err).WithField("announcement_id", announcementID).Warn("Reaction cache read failed, falling back to database")
		}
	}

	counts, err := s.reactionRepo.CountsByAnnouncement(ctx, announcementID)
	if err != nil {
		logCtx.WithError(err).WithField("announcement_id", announcementID).Error("Failed to count reactions")
		return nil, ErrInternalServer
	}

	if s.reactionCache != nil {
		if err := s.reactionCache.SetCounts(ctx, announcementID, counts); err != nil {
			logCtx.WithError(err).WithField("announcement_id", announcementID).Warn("Failed to backfill reaction cache")
		}
	}
	return counts, nil
}

// --- 私有辅助函数 ---

func (s *AnnouncementService) findRoom(ctx context.Context, roomID uint, logCtx *logrus.Entry) (*domain.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Database error finding room")
		return nil, ErrInternalServer
	}
	return room, nil
}

// findAnnouncementWithRoom 加载公告及其所属房间
func (s *AnnouncementService) findAnnouncementWithRoom(ctx context.Context, announcementID uint, logCtx *logrus.Entry) (*domain.Announcement, *domain.Room, error) {
	a, err := s.announcementRepo.FindByID(ctx, announcementID)
	if err != nil {
		if errors.Is(err, repository.ErrAnnouncementNotFound) {
			return nil, nil, ErrAnnouncementNotFound
		}
		logCtx.WithError(err).Error("Database error finding announcement")
		return nil, nil, ErrInternalServer
	}
	room, err := s.findRoom(ctx, a.RoomID, logCtx)
	if err != nil {
		return nil, nil, err
	}
	return a, room, nil
}

// requireMember 要求用户是房间成员（含创建者），否则拒绝访问
func (s *AnnouncementService) requireMember(ctx context.Context, room *domain.Room, userID uint, logCtx *logrus.Entry) error {
	m, err := s.membershipOrNil(ctx, room.ID, userID)
	if err != nil {
		logCtx.WithError(err).Error("Database error finding membership")
		return ErrInternalServer
	}
	if !domain.CanAccess(room, userID, m) {
		return ErrNoRoomAccess
	}
	return nil
}

// requireAdmin 要求用户是管理员及以上，否则拒绝管理公告。
// 非成员先按无访问权限拒绝，不暴露房间内部状态。
func (s *AnnouncementService) requireAdmin(ctx context.Context, room *domain.Room, userID uint, logCtx *logrus.Entry) error {
	m, err := s.membershipOrNil(ctx, room.ID, userID)
	if err != nil {
		logCtx.WithError(err).Error("Database error finding membership")
		return ErrInternalServer
	}
	if !domain.CanAccess(room, userID, m) {
		return ErrNoRoomAccess
	}
	if !domain.IsAdminOrAbove(room, userID, m) {
		return ErrNotAnnouncementAdmin
	}
	return nil
}

func (s *AnnouncementService) membershipOrNil(ctx context.Context, roomID, userID uint) (*domain.Membership, error) {
	m, err := s.membershipRepo.Find(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}
