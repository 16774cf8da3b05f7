package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
)

// GormRoomRepository 是 RoomRepository 接口的 GORM 实现
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository 创建 GormRoomRepository 实例
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

// Create 实现插入新房间。
// 房间名与房间码的唯一性由唯一索引保证，冲突通过 1062 错误信息
// 中的索引名区分后映射为对应的仓库错误。
func (r *GormRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	err := r.db.WithContext(ctx).Create(room).Error
	if err != nil {
		if mapped, ok := mapDuplicateError(err); ok {
			return mapped
		}
		return fmt.Errorf("gorm: create room (name: %s, code: %s): %w", room.Name, room.Code, err)
	}
	return nil
}

// FindByID 实现根据房间 ID 查找房间
func (r *GormRoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by id %d: %w", id, err)
	}
	return &room, nil
}

// FindByCode 实现根据房间码查找房间（调用方负责大写规范化）
func (r *GormRoomRepository) FindByCode(ctx context.Context, code string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).Where("room_code = ?", code).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by code '%s': %w", code, err)
	}
	return &room, nil
}

// Update 实现更新房间信息
func (r *GormRoomRepository) Update(ctx context.Context, room *domain.Room) error {
	err := r.db.WithContext(ctx).Save(room).Error
	if err != nil {
		if mapped, ok := mapDuplicateError(err); ok {
			return mapped
		}
		return fmt.Errorf("gorm: update room %d: %w", room.ID, err)
	}
	return nil
}

// DeleteCascade 实现级联删除房间。
// 成员关系、公告及公告下的表情回应在同一事务中删除，任何一步
// 失败整体回滚，不会留下部分删除的状态。
func (r *GormRoomRepository) DeleteCascade(ctx context.Context, roomID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var announcementIDs []uint
		if err := tx.Model(&domain.Announcement{}).
			Where("room_id = ?", roomID).
			Pluck("id", &announcementIDs).Error; err != nil {
			return err
		}
		if len(announcementIDs) > 0 {
			if err := tx.Where("announcement_id IN ?", announcementIDs).
				Delete(&domain.Reaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("room_id = ?", roomID).
				Delete(&domain.Announcement{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("room_id = ?", roomID).
			Delete(&domain.Membership{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Room{}, roomID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrRoomNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return err
		}
		return fmt.Errorf("gorm: delete room %d cascade: %w", roomID, err)
	}
	return nil
}

// FindOwnedBy 实现查询用户创建的房间列表
func (r *GormRoomRepository) FindOwnedBy(ctx context.Context, userID uint) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find rooms owned by user %d: %w", userID, err)
	}
	return rooms, nil
}

// FindJoinedBy 实现查询用户作为成员加入的房间列表
func (r *GormRoomRepository) FindJoinedBy(ctx context.Context, userID uint) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Joins("JOIN room_memberships ON room_memberships.room_id = rooms.id").
		Where("room_memberships.user_id = ? AND rooms.created_by <> ?", userID, userID).
		Order("rooms.created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find rooms joined by user %d: %w", userID, err)
	}
	return rooms, nil
}

// IsCodeExists 实现检查房间码是否存在
func (r *GormRoomRepository) IsCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("room_code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count rooms by code '%s': %w", code, err)
	}
	return count > 0, nil
}

// CountOwnedBy 实现统计用户创建的房间数量
func (r *GormRoomRepository) CountOwnedBy(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("created_by = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count rooms owned by user %d: %w", userID, err)
	}
	return count, nil
}
