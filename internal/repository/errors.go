package repository

import (
	"errors"
	"fmt"
)

// 通用的存储库错误
var (
	// ErrNotFound 表示请求的记录未找到
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry 表示尝试插入或更新的数据违反了唯一约束
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
	// ErrStaleRecord 表示加锁重读后记录状态与调用方的预期不一致
	// （并发修改导致的丢失更新被拒绝）
	ErrStaleRecord = errors.New("repository: record changed concurrently")
)

// 特定资源的错误 (包装通用错误，errors.Is 对通用错误同样成立)
var (
	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)
	ErrRoomNotFound         = fmt.Errorf("%w: room", ErrNotFound)
	ErrMembershipNotFound   = fmt.Errorf("%w: membership", ErrNotFound)
	ErrAnnouncementNotFound = fmt.Errorf("%w: announcement", ErrNotFound)
	ErrReactionNotFound     = fmt.Errorf("%w: reaction", ErrNotFound)

	// ErrDuplicateRoomName 房间名唯一索引冲突
	ErrDuplicateRoomName = fmt.Errorf("%w: room name", ErrDuplicateEntry)
	// ErrDuplicateRoomCode 房间码唯一索引冲突（并发创建时触发重试）
	ErrDuplicateRoomCode = fmt.Errorf("%w: room code", ErrDuplicateEntry)
	// ErrDuplicateMembership (room, user) 复合唯一索引冲突
	ErrDuplicateMembership = fmt.Errorf("%w: membership", ErrDuplicateEntry)
	// ErrDuplicateReaction (announcement, user) 复合唯一索引冲突
	ErrDuplicateReaction = fmt.Errorf("%w: reaction", ErrDuplicateEntry)
)
