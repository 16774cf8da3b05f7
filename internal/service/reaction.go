package service

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
	"github.com/Kent0710/classroom-announcement-app/internal/tasks"
)

// ReactionService 负责表情回应的切换与计数读取。
// 每个用户对每条公告最多持有一个回应；重复点同一表情取消，
// 点不同表情原地替换。
type ReactionService struct {
	roomRepo         repository.RoomRepository
	membershipRepo   repository.MembershipRepository
	announcementRepo repository.AnnouncementRepository
	reactionRepo     repository.ReactionRepository
	reactionCache    repository.ReactionCacheRepository
	taskClient       *asynq.Client
}

// NewReactionService 创建 ReactionService 实例。
// taskClient 可以为 nil（测试环境），此时缓存修复退化为直接失效。
func NewReactionService(
	roomRepo repository.RoomRepository,
	membershipRepo repository.MembershipRepository,
	announcementRepo repository.AnnouncementRepository,
	reactionRepo repository.ReactionRepository,
	reactionCache repository.ReactionCacheRepository,
	taskClient *asynq.Client,
) *ReactionService {
	if roomRepo == nil || membershipRepo == nil || announcementRepo == nil || reactionRepo == nil {
		panic("all repositories must be non-nil for ReactionService")
	}
	return &ReactionService{
		roomRepo:         roomRepo,
		membershipRepo:   membershipRepo,
		announcementRepo: announcementRepo,
		reactionRepo:     reactionRepo,
		reactionCache:    reactionCache,
		taskClient:       taskClient,
	}
}

// ToggleResult 描述一次切换的结果。
type ToggleResult struct {
	// Op 是实际执行的转移：创建、取消或替换。
	Op domain.ToggleOp
	// Reaction 是切换后用户当前选中的表情类型，取消后为空。
	Reaction domain.ReactionType
	// Counts 是切换后该公告按类型的回应计数。
	Counts map[domain.ReactionType]int64
}

// ToggleReaction 切换用户对公告的表情回应。
//
// 同一用户对同一公告连续两次请求同一类型会回到原始状态；请求
// 不同类型则替换且保留首次回应的时间戳。状态转移在仓库层的
// 单个事务中完成，这里负责权限校验与缓存维护。
func (s *ReactionService) ToggleReaction(ctx context.Context, announcementID, userID uint, requested domain.ReactionType) (*ToggleResult, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"announcement_id": announcementID,
		"user_id":         userID,
		"reaction_type":   requested,
	})

	if !requested.Valid() {
		return nil, ErrInvalidReactionType
	}

	a, err := s.announcementRepo.FindByID(ctx, announcementID)
	if err != nil {
		if errors.Is(err, repository.ErrAnnouncementNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		logCtx.WithError(err).Error("Database error finding announcement")
		return nil, ErrInternalServer
	}

	room, err := s.roomRepo.FindByID(ctx, a.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Database error finding room")
		return nil, ErrInternalServer
	}

	m, err := s.membershipOrNil(ctx, room.ID, userID)
	if err != nil {
		logCtx.WithError(err).Error("Database error finding membership")
		return nil, ErrInternalServer
	}
	if !domain.CanAccess(room, userID, m) {
		return nil, ErrNoRoomAccess
	}

	op, err := s.reactionRepo.Toggle(ctx, announcementID, userID, requested)
	if err != nil {
		if errors.Is(err, repository.ErrStaleRecord) {
			return nil, ErrConcurrentConflict
		}
		logCtx.WithError(err).Error("Failed to toggle reaction")
		return nil, ErrInternalServer
	}

	s.adjustCache(ctx, announcementID, op, requested, logCtx)

	result := &ToggleResult{Op: op}
	if op != domain.ToggleRemove {
		result.Reaction = requested
	}

	counts, err := s.countsAfterToggle(ctx, announcementID, logCtx)
	if err != nil {
		return nil, err
	}
	result.Counts = counts

	logCtx.WithField("toggle_op", op).Info("Reaction toggled")
	return result, nil
}

// adjustCache 按转移类型维护 Redis 计数缓存。
// 创建/取消是单字段增量；替换涉及两个字段，直接失效让读路径
// 重建。任何缓存故障都只失效并排后台对账，绝不让请求失败。
func (s *ReactionService) adjustCache(ctx context.Context, announcementID uint, op domain.ToggleOp, requested domain.ReactionType, logCtx *logrus.Entry) {
	if s.reactionCache == nil {
		return
	}

	var err error
	switch op {
	case domain.ToggleCreate:
		err = s.reactionCache.Adjust(ctx, announcementID, requested, 1)
	case domain.ToggleRemove:
		err = s.reactionCache.Adjust(ctx, announcementID, requested, -1)
	case domain.ToggleReplace:
		err = s.reactionCache.Invalidate(ctx, announcementID)
	}
	if err == nil {
		return
	}

	logCtx.WithError(err).Warn("Failed to adjust reaction cache, scheduling recount")
	if invErr := s.reactionCache.Invalidate(ctx, announcementID); invErr != nil {
		logCtx.WithError(invErr).Warn("Failed to invalidate reaction cache")
	}
	s.enqueueRecount(announcementID, logCtx)
}

// enqueueRecount 排一个单公告对账任务兜底缓存漂移
func (s *ReactionService) enqueueRecount(announcementID uint, logCtx *logrus.Entry) {
	if s.taskClient == nil {
		return
	}
	task, err := tasks.NewReactionRecountTask(announcementID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to build reaction recount task")
		return
	}
	if _, err := s.taskClient.Enqueue(task, asynq.MaxRetry(3)); err != nil {
		logCtx.WithError(err).Error("Failed to enqueue reaction recount task")
	}
}

// countsAfterToggle 读取切换后的权威计数。直接读库保证返回值
// 反映本次切换，不受缓存新旧影响。
func (s *ReactionService) countsAfterToggle(ctx context.Context, announcementID uint, logCtx *logrus.Entry) (map[domain.ReactionType]int64, error) {
	counts, err := s.reactionRepo.CountsByAnnouncement(ctx, announcementID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to count reactions after toggle")
		return nil, ErrInternalServer
	}
	if s.reactionCache != nil {
		if err := s.reactionCache.SetCounts(ctx, announcementID, counts); err != nil {
			logCtx.WithError(err).Warn("Failed to refresh reaction cache after toggle")
		}
	}
	return counts, nil
}

func (s *ReactionService) membershipOrNil(ctx context.Context, roomID, userID uint) (*domain.Membership, error) {
	m, err := s.membershipRepo.Find(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}
