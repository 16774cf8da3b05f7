package domain

import "time"

// Announcement 表示房间内发布的一条公告。
// 公告只属于一个房间，由一位作者发布；随房间级联删除，
// 并独占其下的所有表情回应（级联删除）。
type Announcement struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index;not null"`
	AuthorID  uint      `gorm:"index;not null"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定 GORM 使用的表名。
func (Announcement) TableName() string {
	return "announcements"
}
