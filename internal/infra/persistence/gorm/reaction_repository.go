package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
)

// GormReactionRepository 是 ReactionRepository 接口的 GORM 实现
type GormReactionRepository struct {
	db *gorm.DB
}

// NewGormReactionRepository 创建 GormReactionRepository 实例
func NewGormReactionRepository(db *gorm.DB) *GormReactionRepository {
	if db == nil {
		panic("database connection cannot be nil for GormReactionRepository")
	}
	return &GormReactionRepository{db: db}
}

// Toggle 实现表情切换。
// 状态转移由 domain.ToggleTransition 决定，本方法只负责原子执行：
// 事务内 FOR UPDATE 锁定 (announcement, user) 行后按转移写库。
// 并发首次创建的竞争由 idx_announcement_user 唯一索引兜底，冲突
// 时以 present 状态重试一次，同一对上永远只有一条记录。
func (r *GormReactionRepository) Toggle(ctx context.Context, announcementID, userID uint, requested domain.ReactionType) (domain.ToggleOp, error) {
	op, err := r.toggleOnce(ctx, announcementID, userID, requested)
	if err != nil && errors.Is(err, repository.ErrDuplicateReaction) {
		// 另一请求抢先创建了记录，重读后按 present 状态再切换一次
		op, err = r.toggleOnce(ctx, announcementID, userID, requested)
	}
	if err != nil {
		return 0, err
	}
	return op, nil
}

func (r *GormReactionRepository) toggleOnce(ctx context.Context, announcementID, userID uint, requested domain.ReactionType) (domain.ToggleOp, error) {
	var op domain.ToggleOp
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current *domain.Reaction
		var existing domain.Reaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("announcement_id = ? AND user_id = ?", announcementID, userID).
			First(&existing).Error
		switch {
		case err == nil:
			current = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			current = nil
		default:
			return err
		}

		op = domain.ToggleTransition(current, requested)
		switch op {
		case domain.ToggleCreate:
			return tx.Create(&domain.Reaction{
				AnnouncementID: announcementID,
				UserID:         userID,
				Type:           requested,
			}).Error
		case domain.ToggleRemove:
			return tx.Delete(current).Error
		case domain.ToggleReplace:
			// 原地更新类型，保留行身份与 created_at
			return tx.Model(current).Update("reaction_type", requested).Error
		}
		return fmt.Errorf("unknown toggle op %d", op)
	})
	if err != nil {
		if mapped, ok := mapDuplicateError(err); ok {
			return 0, mapped
		}
		return 0, fmt.Errorf("gorm: toggle reaction (announcement: %d, user: %d): %w", announcementID, userID, err)
	}
	return op, nil
}

// FindByAnnouncementAndUser 实现查找某用户对某公告的回应
func (r *GormReactionRepository) FindByAnnouncementAndUser(ctx context.Context, announcementID, userID uint) (*domain.Reaction, error) {
	var reaction domain.Reaction
	err := r.db.WithContext(ctx).
		Where("announcement_id = ? AND user_id = ?", announcementID, userID).
		First(&reaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReactionNotFound
		}
		return nil, fmt.Errorf("gorm: find reaction (announcement: %d, user: %d): %w", announcementID, userID, err)
	}
	return &reaction, nil
}

// CountsByAnnouncement 实现按类型统计某公告的回应数量
func (r *GormReactionRepository) CountsByAnnouncement(ctx context.Context, announcementID uint) (map[domain.ReactionType]int64, error) {
	type row struct {
		ReactionType domain.ReactionType
		Total        int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Reaction{}).
		Select("reaction_type, COUNT(*) AS total").
		Where("announcement_id = ?", announcementID).
		Group("reaction_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: count reactions for announcement %d: %w", announcementID, err)
	}
	counts := make(map[domain.ReactionType]int64, len(rows))
	for _, r := range rows {
		counts[r.ReactionType] = r.Total
	}
	return counts, nil
}

// ListByAnnouncementsForUser 实现批量查询用户在一组公告上的回应
func (r *GormReactionRepository) ListByAnnouncementsForUser(ctx context.Context, announcementIDs []uint, userID uint) ([]domain.Reaction, error) {
	var reactions []domain.Reaction
	if len(announcementIDs) == 0 {
		return reactions, nil // 避免空的 IN 查询
	}
	err := r.db.WithContext(ctx).
		Where("announcement_id IN ? AND user_id = ?", announcementIDs, userID).
		Find(&reactions).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list reactions for user %d: %w", userID, err)
	}
	return reactions, nil
}

// CountByUser 实现统计用户做出的回应总数
func (r *GormReactionRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Reaction{}).
		Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count reactions by user %d: %w", userID, err)
	}
	return count, nil
}

// RecentlyReactedAnnouncementIDs 实现查询近期出现过回应的公告 ID
func (r *GormReactionRepository) RecentlyReactedAnnouncementIDs(ctx context.Context, since time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&domain.Reaction{}).
		Distinct("announcement_id").
		Where("created_at >= ?", since).
		Pluck("announcement_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list recently reacted announcements: %w", err)
	}
	return ids, nil
}
