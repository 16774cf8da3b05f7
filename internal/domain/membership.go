package domain

import "time"

// Role 表示用户在某个房间中的角色。
type Role string

const (
	// RoleMember 普通成员：可以浏览公告并做出表情回应。
	RoleMember Role = "member"
	// RoleAdmin 管理员：在成员权限之上可以管理公告和普通成员。
	RoleAdmin Role = "admin"
	// RoleOwner 房主：房间创建者，拥有最高权限。
	RoleOwner Role = "owner"
)

// Valid 检查角色取值是否合法。
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// AdminOrAbove 判断角色是否具有管理员及以上权限。
func (r Role) AdminOrAbove() bool {
	return r == RoleAdmin || r == RoleOwner
}

// Membership 表示一个用户在一个房间中的成员关系。
// 每个 (room, user) 对至多存在一条记录，由复合唯一索引保证。
// PromotedAt/PromotedBy 仅在 member→admin 提升时写入，admin→member
// 降级时清空。
type Membership struct {
	ID         uint       `gorm:"primaryKey"`
	RoomID     uint       `gorm:"uniqueIndex:idx_room_user;not null"`
	UserID     uint       `gorm:"uniqueIndex:idx_room_user;not null"`
	Role       Role       `gorm:"type:varchar(10);not null;default:member"`
	JoinedAt   time.Time  `gorm:"autoCreateTime"`
	PromotedAt *time.Time `gorm:""`
	PromotedBy *uint      `gorm:""`
}

// TableName 指定 GORM 使用的表名。
func (Membership) TableName() string {
	return "room_memberships"
}

// IsOwner 判断该成员关系是否代表房主。
func (m *Membership) IsOwner() bool {
	return m.Role == RoleOwner
}

// IsAdmin 判断该成员关系是否具有管理员及以上权限。
func (m *Membership) IsAdmin() bool {
	return m.Role.AdminOrAbove()
}

// RoleOf 返回用户在房间中的有效角色。
//
// 角色推导的唯一入口：先判断 room.CreatedBy（创建者恒为 owner，
// 与是否存在成员记录无关），再查看成员记录的角色字段。membership
// 为该用户在该房间的成员记录，不存在时传 nil。第二个返回值为
// false 表示用户不是房间成员。
func RoleOf(room *Room, userID uint, membership *Membership) (Role, bool) {
	if room.IsCreator(userID) {
		return RoleOwner, true
	}
	if membership != nil {
		return membership.Role, true
	}
	return "", false
}

// CanAccess 判断用户是否可以访问房间（任意角色均可）。
func CanAccess(room *Room, userID uint, membership *Membership) bool {
	_, ok := RoleOf(room, userID, membership)
	return ok
}

// IsAdminOrAbove 判断用户在房间中是否具有管理员及以上权限。
func IsAdminOrAbove(room *Room, userID uint, membership *Membership) bool {
	role, ok := RoleOf(room, userID, membership)
	return ok && role.AdminOrAbove()
}

// MembershipFor 返回用于权限判定的成员关系视图。
//
// 房主可能没有持久化的成员记录（创建房间时不会写入 owner 行），
// 此时合成一条 owner 角色的临时记录，使依赖"存储角色"的检查
// （如 CanPromoteDemote）对房主同样适用。合成的记录不会被保存。
func MembershipFor(room *Room, userID uint, membership *Membership) *Membership {
	if membership != nil {
		return membership
	}
	if room.IsCreator(userID) {
		return &Membership{RoomID: room.ID, UserID: userID, Role: RoleOwner, JoinedAt: room.CreatedAt}
	}
	return nil
}

// CanPromoteDemote 判断 actor 是否可以提升或降级 target。
//
// 规则：房主可以操作除自己以外的任何人；管理员只能操作普通成员；
// 普通成员不能操作任何人。判定使用 actor 的存储角色，而非重新
// 从 Room.CreatedBy 推导——两者按不变式应当一致，服务层会在
// 使用前断言这一点。
func CanPromoteDemote(actor, target *Membership) bool {
	if actor == nil || target == nil {
		return false
	}
	switch actor.Role {
	case RoleOwner:
		return target.UserID != actor.UserID
	case RoleAdmin:
		return target.Role == RoleMember
	}
	return false
}

// Promote 将成员提升为管理员，并记录提升时间与操作者。
// 仅对 member 角色有效，调用方需先行检查。
func (m *Membership) Promote(by uint, at time.Time) {
	m.Role = RoleAdmin
	m.PromotedAt = &at
	m.PromotedBy = &by
}

// Demote 将管理员降级为普通成员，并清空提升记录。
func (m *Membership) Demote() {
	m.Role = RoleMember
	m.PromotedAt = nil
	m.PromotedBy = nil
}
