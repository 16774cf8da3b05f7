package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/repository"
	"github.com/Kent0710/classroom-announcement-app/internal/tasks"
)

// recountWindow 是周期对账回溯的时间窗口。缓存 TTL 为 30 分钟，
// 窗口取两倍保证漂移的缓存在过期前至少被对账一次。
const recountWindow = time.Hour

// ReactionRecountHandler 处理表情计数对账任务：从数据库重新统计
// 并覆盖 Redis 缓存，修复增量更新失败造成的漂移。
type ReactionRecountHandler struct {
	reactionRepo  repository.ReactionRepository
	reactionCache repository.ReactionCacheRepository
}

// NewReactionRecountHandler 创建 Handler 实例
func NewReactionRecountHandler(reactionRepo repository.ReactionRepository, reactionCache repository.ReactionCacheRepository) *ReactionRecountHandler {
	if reactionRepo == nil {
		panic("ReactionRepository cannot be nil for ReactionRecountHandler")
	}
	if reactionCache == nil {
		panic("ReactionCacheRepository cannot be nil for ReactionRecountHandler")
	}
	return &ReactionRecountHandler{reactionRepo: reactionRepo, reactionCache: reactionCache}
}

// ProcessTask 实现 asynq.Handler 接口。
// 负载中的公告 ID 为 0 时对账最近有回应活动的全部公告。
func (h *ReactionRecountHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	var payload tasks.ReactionRecountPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// 负载损坏没有重试的意义
		logCtx.WithError(err).Error("Invalid reaction recount payload")
		return fmt.Errorf("unmarshal recount payload: %v: %w", err, asynq.SkipRetry)
	}

	if payload.AnnouncementID != 0 {
		return h.recount(ctx, payload.AnnouncementID, logCtx)
	}

	ids, err := h.reactionRepo.RecentlyReactedAnnouncementIDs(ctx, time.Now().Add(-recountWindow))
	if err != nil {
		logCtx.WithError(err).Error("Failed to list recently reacted announcements")
		return fmt.Errorf("list recently reacted announcements: %w", err)
	}
	if len(ids) == 0 {
		logCtx.Debug("No recent reaction activity, nothing to recount")
		return nil
	}

	failed := 0
	for _, id := range ids {
		if err := h.recount(ctx, id, logCtx); err != nil {
			failed++
		}
	}
	if failed > 0 {
		// 部分失败只记录，避免单条公告的问题让整个周期任务重试
		logCtx.Errorf("Reaction recount completed with %d/%d failures", failed, len(ids))
		return nil
	}

	logCtx.Infof("Reaction recount completed for %d announcements", len(ids))
	return nil
}

// recount 从数据库重算单条公告的计数并覆盖缓存
func (h *ReactionRecountHandler) recount(ctx context.Context, announcementID uint, logCtx *logrus.Entry) error {
	counts, err := h.reactionRepo.CountsByAnnouncement(ctx, announcementID)
	if err != nil {
		logCtx.WithError(err).WithField("announcement_id", announcementID).Error("Failed to recount reactions")
		return err
	}
	if err := h.reactionCache.SetCounts(ctx, announcementID, counts); err != nil {
		logCtx.WithError(err).WithField("announcement_id", announcementID).Error("Failed to write recounted reactions to cache")
		return err
	}
	return nil
}
