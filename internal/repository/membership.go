package repository

import (
	"context"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
)

// MembershipRepository 定义了房间成员关系的存储和检索操作。
//
// 所有写操作都以单条语句或单个事务执行；(room, user) 的唯一性
// 由复合唯一索引保证，角色变更在事务内对目标行加锁后重校验，
// 防止并发下的丢失更新。
type MembershipRepository interface {
	// Find 查找某用户在某房间的成员记录。
	// 不存在时返回 ErrMembershipNotFound。
	Find(ctx context.Context, roomID, userID uint) (*domain.Membership, error)

	// Create 插入一条新的成员记录。
	// (room, user) 唯一索引冲突返回 ErrDuplicateMembership，
	// 并发重复加入依赖该约束收敛为一条记录。
	Create(ctx context.Context, m *domain.Membership) error

	// ChangeRole 在事务内对目标成员行加锁，校验其当前角色仍为 from
	// 后应用 apply 并保存。角色已被并发修改时返回 ErrStaleRecord，
	// 记录不存在返回 ErrMembershipNotFound。
	ChangeRole(ctx context.Context, roomID, userID uint, from domain.Role, apply func(*domain.Membership)) (*domain.Membership, error)

	// Remove 在事务内对目标成员行加锁，校验其当前角色仍为 expect
	// 后删除（踢出或主动退出）。角色已被并发修改时返回
	// ErrStaleRecord，记录不存在返回 ErrMembershipNotFound。
	Remove(ctx context.Context, roomID, userID uint, expect domain.Role) error

	// ListByRoom 返回房间的全部成员记录，按加入时间排序。
	ListByRoom(ctx context.Context, roomID uint) ([]domain.Membership, error)

	// CountJoinedBy 统计用户加入的房间数量（不含自己创建的房间）。
	CountJoinedBy(ctx context.Context, userID uint) (int64, error)
}
