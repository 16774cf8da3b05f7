package domain

import "time"

// ReactionType 表示表情回应的类型，取值为固定的封闭集合。
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionLaugh ReactionType = "laugh"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

// ReactionTypes 按展示顺序列出所有合法的表情类型。
var ReactionTypes = []ReactionType{
	ReactionLike, ReactionLove, ReactionLaugh,
	ReactionWow, ReactionSad, ReactionAngry,
}

var reactionGlyphs = map[ReactionType]string{
	ReactionLike:  "👍",
	ReactionLove:  "❤️",
	ReactionLaugh: "😂",
	ReactionWow:   "😮",
	ReactionSad:   "😢",
	ReactionAngry: "😠",
}

// Valid 检查表情类型是否属于合法集合。
func (t ReactionType) Valid() bool {
	_, ok := reactionGlyphs[t]
	return ok
}

// Glyph 返回表情类型对应的展示符号。
func (t ReactionType) Glyph() string {
	return reactionGlyphs[t]
}

// Reaction 表示一个用户对一条公告的表情回应。
// 每个 (announcement, user) 对至多一条记录，由复合唯一索引保证；
// 同一用户的第二次回应要么替换类型、要么取消（见 ToggleTransition）。
// CreatedAt 仅在首次创建时写入，类型原地更新时不刷新。
type Reaction struct {
	ID             uint         `gorm:"primaryKey"`
	AnnouncementID uint         `gorm:"uniqueIndex:idx_announcement_user;not null"`
	UserID         uint         `gorm:"uniqueIndex:idx_announcement_user;not null"`
	Type           ReactionType `gorm:"column:reaction_type;type:varchar(10);not null"`
	CreatedAt      time.Time    `gorm:"autoCreateTime"`
}

// TableName 指定 GORM 使用的表名。
func (Reaction) TableName() string {
	return "announcement_reactions"
}

// ToggleOp 表示表情切换状态机计算出的一次状态转移。
type ToggleOp int

const (
	// ToggleCreate 当前无回应：创建新记录。
	ToggleCreate ToggleOp = iota + 1
	// ToggleRemove 当前回应与请求类型相同：删除记录（取消回应）。
	ToggleRemove
	// ToggleReplace 当前回应与请求类型不同：原地更新类型，保留记录
	// 身份与创建时间。
	ToggleReplace
)

// ToggleTransition 计算 (announcement, user) 对上的表情切换转移。
//
// 状态机只有两个状态：absent（current 为 nil）与 present(type)。
// 同一请求重复两次必然回到初始状态（对合性），且任何转移序列都
// 不会产生第二条记录。
func ToggleTransition(current *Reaction, requested ReactionType) ToggleOp {
	if current == nil {
		return ToggleCreate
	}
	if current.Type == requested {
		return ToggleRemove
	}
	return ToggleReplace
}
