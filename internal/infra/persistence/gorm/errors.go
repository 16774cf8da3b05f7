// Package gormpersistence 提供 repository 接口的 GORM/MySQL 实现。
package gormpersistence

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/Kent0710/classroom-announcement-app/internal/repository"
)

// mapDuplicateError 将 MySQL 1062 (唯一约束冲突) 错误映射为仓库层错误。
// 通过错误信息中的索引名区分是哪一个唯一约束被违反，调用方据此
// 决定是向用户报冲突还是触发重试。非 1062 错误返回 (nil, false)。
func mapDuplicateError(err error) (error, bool) {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != 1062 {
		return nil, false
	}
	msg := mysqlErr.Message
	switch {
	case strings.Contains(msg, "idx_room_name"):
		return repository.ErrDuplicateRoomName, true
	case strings.Contains(msg, "idx_room_code"):
		return repository.ErrDuplicateRoomCode, true
	case strings.Contains(msg, "idx_room_user"):
		return repository.ErrDuplicateMembership, true
	case strings.Contains(msg, "idx_announcement_user"):
		return repository.ErrDuplicateReaction, true
	}
	return repository.ErrDuplicateEntry, true
}
