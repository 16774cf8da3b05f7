package repository

import (
	"context"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
)

// RoomRepository 定义了房间数据的存储和检索操作。
type RoomRepository interface {
	// Create 插入一个新房间。
	// 唯一性完全由存储层的唯一索引保证：房间名冲突返回
	// ErrDuplicateRoomName，房间码冲突返回 ErrDuplicateRoomCode，
	// 调用方据此决定是报错还是重新生成房间码。
	Create(ctx context.Context, room *domain.Room) error

	// FindByID 根据房间 ID 查找房间。
	// 如果房间不存在，返回 ErrRoomNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Room, error)

	// FindByCode 根据房间码（必须已规范化为大写）查找房间。
	// 如果房间不存在，返回 ErrRoomNotFound。
	FindByCode(ctx context.Context, code string) (*domain.Room, error)

	// Update 更新房间信息。
	// 房间名唯一索引冲突返回 ErrDuplicateRoomName。
	Update(ctx context.Context, room *domain.Room) error

	// DeleteCascade 在单个事务中删除房间及其全部成员关系、
	// 公告和公告下的表情回应。
	DeleteCascade(ctx context.Context, roomID uint) error

	// FindOwnedBy 返回用户创建的所有房间。
	FindOwnedBy(ctx context.Context, userID uint) ([]domain.Room, error)

	// FindJoinedBy 返回用户作为成员（member/admin）加入的所有房间，
	// 不包含用户自己创建的房间。
	FindJoinedBy(ctx context.Context, userID uint) ([]domain.Room, error)

	// IsCodeExists 检查房间码是否已存在。
	// 仅作为生成时的快速预检，唯一性最终由 Create 的唯一索引保证。
	IsCodeExists(ctx context.Context, code string) (bool, error)

	// CountOwnedBy 统计用户创建的房间数量。
	CountOwnedBy(ctx context.Context, userID uint) (int64, error)
}
