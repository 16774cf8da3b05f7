package repository

import (
	"context"
	"time"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
)

// ReactionRepository 定义了表情回应的存储和检索操作。
type ReactionRepository interface {
	// Toggle 在单个事务中对 (announcement, user) 的回应执行一次
	// 切换：加锁读取当前状态，按 domain.ToggleTransition 计算转移
	// 并执行（创建 / 删除 / 原地更新类型）。返回实际执行的转移。
	//
	// 并发的首次创建竞争由复合唯一索引兜底：事务提交时的
	// ErrDuplicateReaction 表示另一请求已抢先创建，实现内部将其
	// 作为 present 状态重试一次，保证同一对上永远只有一条记录。
	Toggle(ctx context.Context, announcementID, userID uint, requested domain.ReactionType) (domain.ToggleOp, error)

	// FindByAnnouncementAndUser 查找某用户对某公告的回应。
	// 不存在时返回 ErrReactionNotFound。
	FindByAnnouncementAndUser(ctx context.Context, announcementID, userID uint) (*domain.Reaction, error)

	// CountsByAnnouncement 按类型统计某公告收到的回应数量。
	CountsByAnnouncement(ctx context.Context, announcementID uint) (map[domain.ReactionType]int64, error)

	// ListByAnnouncementsForUser 返回某用户在一组公告上的全部回应，
	// 用于批量标记"当前用户已选中"的表情。
	ListByAnnouncementsForUser(ctx context.Context, announcementIDs []uint, userID uint) ([]domain.Reaction, error)

	// CountByUser 统计用户做出的回应总数。
	CountByUser(ctx context.Context, userID uint) (int64, error)

	// RecentlyReactedAnnouncementIDs 返回自 since 以来出现过回应的
	// 公告 ID 列表，供后台对账任务使用。
	RecentlyReactedAnnouncementIDs(ctx context.Context, since time.Time) ([]uint, error)
}

// ReactionCacheRepository 定义了表情计数缓存（Redis）的操作。
// 缓存只是读路径的加速，数据库始终是权威数据源。
type ReactionCacheRepository interface {
	// GetCounts 读取某公告缓存的回应计数。
	// 缓存未命中时返回 ErrNotFound。
	GetCounts(ctx context.Context, announcementID uint) (map[domain.ReactionType]int64, error)

	// SetCounts 整体写入某公告的回应计数。
	SetCounts(ctx context.Context, announcementID uint, counts map[domain.ReactionType]int64) error

	// Adjust 对某公告某类型的计数做增量调整（可为负）。
	Adjust(ctx context.Context, announcementID uint, t domain.ReactionType, delta int64) error

	// Invalidate 删除某公告的计数缓存，下次读取时回源重建。
	Invalidate(ctx context.Context, announcementID uint) error
}
