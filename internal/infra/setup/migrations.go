package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
)

// MigrateDB 执行数据库迁移。
//
// 核心表使用自定义 SQL 创建：并发模型依赖的唯一索引
// （idx_room_name、idx_room_code、idx_room_user、
// idx_announcement_user）必须在建表时就位，不能指望运行期的
// 应用层检查。表已存在时退回 AutoMigrate 补齐新列与索引。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	tables := []struct {
		name   string
		create string
		model  interface{}
	}{
		{"users", createUsersSQL, &domain.User{}},
		{"rooms", createRoomsSQL, &domain.Room{}},
		{"room_memberships", createMembershipsSQL, &domain.Membership{}},
		{"announcements", createAnnouncementsSQL, &domain.Announcement{}},
		{"announcement_reactions", createReactionsSQL, &domain.Reaction{}},
	}

	for _, t := range tables {
		if err := migrateTable(db, t.name, t.create, t.model); err != nil {
			return fmt.Errorf("failed to migrate %s table: %w", t.name, err)
		}
	}

	logrus.Info("Database migration completed successfully")
	return nil
}

// migrateTable 不存在则按自定义 SQL 创建，已存在则 AutoMigrate 更新
func migrateTable(db *gorm.DB, name, createSQL string, model interface{}) error {
	var count int64
	db.Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?", name).Count(&count)

	if count == 0 {
		if err := db.Exec(createSQL).Error; err != nil {
			logrus.Errorf("Failed to create %s table: %v", name, err)
			return err
		}
		logrus.Infof("%s table created successfully", name)
		return nil
	}
	if err := db.AutoMigrate(model); err != nil {
		logrus.Errorf("Failed to auto-migrate %s table: %v", name, err)
		return err
	}
	return nil
}

const createUsersSQL = `
CREATE TABLE users (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(191) NOT NULL,
	password TEXT NOT NULL,
	email VARCHAR(191),
	created_at DATETIME(3),
	updated_at DATETIME(3),
	UNIQUE INDEX idx_username (username),
	UNIQUE INDEX idx_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci;
`

const createRoomsSQL = `
CREATE TABLE rooms (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	room_name VARCHAR(100) NOT NULL,
	room_code VARCHAR(6) NOT NULL,
	created_by BIGINT UNSIGNED NOT NULL,
	created_at DATETIME(3),
	updated_at DATETIME(3),
	INDEX idx_created_by (created_by),
	UNIQUE INDEX idx_room_name (room_name),
	UNIQUE INDEX idx_room_code (room_code)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci;
`

const createMembershipsSQL = `
CREATE TABLE room_memberships (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	room_id BIGINT UNSIGNED NOT NULL,
	user_id BIGINT UNSIGNED NOT NULL,
	role VARCHAR(10) NOT NULL DEFAULT 'member',
	joined_at DATETIME(3),
	promoted_at DATETIME(3) NULL,
	promoted_by BIGINT UNSIGNED NULL,
	UNIQUE INDEX idx_room_user (room_id, user_id),
	INDEX idx_membership_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci;
`

const createAnnouncementsSQL = `
CREATE TABLE announcements (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	room_id BIGINT UNSIGNED NOT NULL,
	author_id BIGINT UNSIGNED NOT NULL,
	title VARCHAR(200) NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME(3),
	updated_at DATETIME(3),
	INDEX idx_announcement_room (room_id),
	INDEX idx_announcement_author (author_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci;
`

const createReactionsSQL = `
CREATE TABLE announcement_reactions (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	announcement_id BIGINT UNSIGNED NOT NULL,
	user_id BIGINT UNSIGNED NOT NULL,
	reaction_type VARCHAR(10) NOT NULL,
	created_at DATETIME(3),
	UNIQUE INDEX idx_announcement_user (announcement_id, user_id),
	INDEX idx_reaction_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci;
`
