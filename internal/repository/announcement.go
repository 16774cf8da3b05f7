package repository

import (
	"context"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
)

// AnnouncementRepository 定义了公告数据的存储和检索操作。
type AnnouncementRepository interface {
	// Create 插入一条新公告。
	Create(ctx context.Context, a *domain.Announcement) error

	// FindByID 根据公告 ID 查找公告。
	// 如果公告不存在，返回 ErrAnnouncementNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Announcement, error)

	// Update 更新公告的标题与内容。
	Update(ctx context.Context, a *domain.Announcement) error

	// DeleteCascade 在单个事务中删除公告及其全部表情回应。
	DeleteCascade(ctx context.Context, id uint) error

	// ListByRoom 返回房间的全部公告，按创建时间倒序。
	ListByRoom(ctx context.Context, roomID uint) ([]domain.Announcement, error)

	// CountByAuthor 统计用户发布的公告数量。
	CountByAuthor(ctx context.Context, userID uint) (int64, error)
}
