package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
)

// GormAnnouncementRepository 是 AnnouncementRepository 接口的 GORM 实现
type GormAnnouncementRepository struct {
	db *gorm.DB
}

// NewGormAnnouncementRepository 创建 GormAnnouncementRepository 实例
func NewGormAnnouncementRepository(db *gorm.DB) *GormAnnouncementRepository {
	if db == nil {
		panic("database connection cannot be nil for GormAnnouncementRepository")
	}
	return &GormAnnouncementRepository{db: db}
}

// Create 实现插入新公告
func (r *GormAnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if err != nil {
		return fmt.Errorf("gorm: create announcement (room: %d, author: %d): %w", a.RoomID, a.AuthorID, err)
	}
	return nil
}

// FindByID 实现根据公告 ID 查找公告
func (r *GormAnnouncementRepository) FindByID(ctx context.Context, id uint) (*domain.Announcement, error) {
	var a domain.Announcement
	err := r.db.WithContext(ctx).First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("gorm: find announcement by id %d: %w", id, err)
	}
	return &a, nil
}

// Update 实现更新公告
func (r *GormAnnouncementRepository) Update(ctx context.Context, a *domain.Announcement) error {
	err := r.db.WithContext(ctx).Save(a).Error
	if err != nil {
		return fmt.Errorf("gorm: update announcement %d: %w", a.ID, err)
	}
	return nil
}

// DeleteCascade 实现级联删除公告及其表情回应（单个事务）
func (r *GormAnnouncementRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("announcement_id = ?", id).
			Delete(&domain.Reaction{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Announcement{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrAnnouncementNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrAnnouncementNotFound) {
			return err
		}
		return fmt.Errorf("gorm: delete announcement %d cascade: %w", id, err)
	}
	return nil
}

// ListByRoom 实现查询房间的全部公告（按创建时间倒序）
func (r *GormAnnouncementRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.Announcement, error) {
	var announcements []domain.Announcement
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Find(&announcements).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list announcements for room %d: %w", roomID, err)
	}
	return announcements, nil
}

// CountByAuthor 实现统计用户发布的公告数量
func (r *GormAnnouncementRepository) CountByAuthor(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Announcement{}).
		Where("author_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count announcements by author %d: %w", userID, err)
	}
	return count, nil
}
