package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
)

// GormMembershipRepository 是 MembershipRepository 接口的 GORM 实现
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository 创建 GormMembershipRepository 实例
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMembershipRepository")
	}
	return &GormMembershipRepository{db: db}
}

// Find 实现查找某用户在某房间的成员记录
func (r *GormMembershipRepository) Find(ctx context.Context, roomID, userID uint) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("gorm: find membership (room: %d, user: %d): %w", roomID, userID, err)
	}
	return &m, nil
}

// Create 实现插入新的成员记录。
// (room, user) 的唯一性由复合唯一索引 idx_room_user 保证，并发的
// 重复加入在这里收敛为 ErrDuplicateMembership。
func (r *GormMembershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if err != nil {
		if mapped, ok := mapDuplicateError(err); ok {
			return mapped
		}
		return fmt.Errorf("gorm: create membership (room: %d, user: %d): %w", m.RoomID, m.UserID, err)
	}
	return nil
}

// lockMembership 在事务内以 FOR UPDATE 锁定目标成员行并校验其
// 当前角色。记录不存在返回 ErrMembershipNotFound，角色与预期不符
// （并发修改）返回 ErrStaleRecord。
func lockMembership(tx *gorm.DB, roomID, userID uint, expect domain.Role) (*domain.Membership, error) {
	var m domain.Membership
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMembershipNotFound
		}
		return nil, err
	}
	if m.Role != expect {
		return nil, repository.ErrStaleRecord
	}
	return &m, nil
}

// ChangeRole 实现事务内的角色变更（提升/降级）
func (r *GormMembershipRepository) ChangeRole(ctx context.Context, roomID, userID uint, from domain.Role, apply func(*domain.Membership)) (*domain.Membership, error) {
	var changed *domain.Membership
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := lockMembership(tx, roomID, userID, from)
		if err != nil {
			return err
		}
		apply(m)
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		changed = m
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrStaleRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("gorm: change membership role (room: %d, user: %d): %w", roomID, userID, err)
	}
	return changed, nil
}

// Remove 实现事务内的成员移除（踢出或主动退出）
func (r *GormMembershipRepository) Remove(ctx context.Context, roomID, userID uint, expect domain.Role) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := lockMembership(tx, roomID, userID, expect)
		if err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrStaleRecord) {
			return err
		}
		return fmt.Errorf("gorm: remove membership (room: %d, user: %d): %w", roomID, userID, err)
	}
	return nil
}

// ListByRoom 实现查询房间的全部成员记录
func (r *GormMembershipRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.Membership, error) {
	var members []domain.Membership
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list memberships for room %d: %w", roomID, err)
	}
	return members, nil
}

// CountJoinedBy 实现统计用户加入的房间数量（不含自己创建的）
func (r *GormMembershipRepository) CountJoinedBy(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Membership{}).
		Joins("JOIN rooms ON rooms.id = room_memberships.room_id").
		Where("room_memberships.user_id = ? AND rooms.created_by <> ?", userID, userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count rooms joined by user %d: %w", userID, err)
	}
	return count, nil
}
