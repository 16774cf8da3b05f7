package service

import "errors"

// 业务错误分为四类：未找到、权限不足、冲突、输入非法。
// 每个被拒绝的操作都返回具体且可向用户展示的原因，处理器层
// 据此映射 HTTP 状态码；只有意外的存储故障才落入 ErrInternalServer。

// 未找到
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrMembershipNotFound   = errors.New("this user is not a member of the room")
	ErrAnnouncementNotFound = errors.New("announcement not found")
)

// 权限不足（每条规则一个错误，信息面向用户）
var (
	ErrNoRoomAccess          = errors.New("you don't have permission to access this room")
	ErrNotAnnouncementAdmin  = errors.New("you don't have permission to manage announcements in this room")
	ErrOnlyOwnerCanPromote   = errors.New("only the room owner can promote users to admin")
	ErrOnlyOwnerCanDemote    = errors.New("only the room owner can demote administrators")
	ErrOnlyOwnerCanDelete    = errors.New("only the room owner can delete this room")
	ErrOnlyOwnerCanKickAdmin = errors.New("only the room owner can remove administrators")
	ErrCannotKickMembers     = errors.New("you don't have permission to remove members")
	ErrCannotKickOwner       = errors.New("the room owner cannot be removed")
	ErrCannotKickSelf        = errors.New("you cannot remove yourself from the room")
	ErrOwnerCannotLeave      = errors.New("the room owner cannot leave the room")
	ErrCannotEditRoom        = errors.New("you don't have permission to edit this room")
)

// 冲突
var (
	ErrRoomNameTaken      = errors.New("a room with this name already exists")
	ErrAlreadyAdmin       = errors.New("this user is already an admin or the owner")
	ErrNotAnAdmin         = errors.New("this user is not an admin")
	ErrConcurrentConflict = errors.New("the member was modified by another request, please retry")
)

// 输入非法
var (
	ErrInvalidRoomCode     = errors.New("room code must be exactly 6 letters or digits")
	ErrInvalidRoomName     = errors.New("room name is required and must be at most 100 characters")
	ErrInvalidAnnouncement = errors.New("announcement title and content are required")
	ErrInvalidReactionType = errors.New("unknown reaction type")
)

// 认证
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")
)

// 资源耗尽与内部错误
var (
	// ErrRoomCodeExhausted 连续多次生成的房间码都已被占用。
	// 36^6 的码空间很大但不是无限的，超过重试上限视为资源耗尽。
	ErrRoomCodeExhausted = errors.New("could not allocate a unique room code, please try again")
	ErrInternalServer    = errors.New("internal server error")
)
