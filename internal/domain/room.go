package domain

import (
	"regexp"
	"strings"
	"time"
)

// RoomCodeLength 是房间码的固定长度。
const RoomCodeLength = 6

// RoomCodeAlphabet 是生成房间码时使用的字符集（大写字母 + 数字）。
const RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// Room 表示一个教室公告房间。
// CreatedBy 是创建者（房主），创建后不可变更；即使没有对应的
// 成员记录，创建者也始终被视为 owner（见 RoleOf）。
type Room struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"column:room_name;type:varchar(100);uniqueIndex:idx_room_name;not null"`
	Code      string    `gorm:"column:room_code;type:varchar(6);uniqueIndex:idx_room_code;not null"` // 用于加入房间的 6 位房间码，必须唯一
	CreatedBy uint      `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定 GORM 使用的表名。
func (Room) TableName() string {
	return "rooms"
}

// IsCreator 判断给定用户是否是房间的创建者（房主）。
func (r *Room) IsCreator(userID uint) bool {
	return r.CreatedBy == userID
}

// NormalizeRoomCode 将用户输入的房间码规范化为大写形式。
// 房间码在存储和查询时一律使用大写。
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidRoomCode 检查规范化后的房间码格式是否合法（6 位大写字母或数字）。
func ValidRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}
