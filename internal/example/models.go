package example

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ddl creates the tables served through sqlbackend.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS currency (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title VARCHAR(255) NOT NULL,
		num_code SMALLINT NOT NULL UNIQUE,
		char_code VARCHAR(10) NOT NULL UNIQUE,
		depth SMALLINT NOT NULL DEFAULT 2
	)`,
	`CREATE TABLE IF NOT EXISTS merchant (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id BIGINT NOT NULL,
		title VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS terminal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title VARCHAR(255) NOT NULL,
		description VARCHAR(255) NOT NULL,
		secret_key VARCHAR(255) NOT NULL,
		return_url VARCHAR(500),
		callback_url VARCHAR(500),
		merchant_id INTEGER NOT NULL REFERENCES merchant(id),
		currency_id INTEGER REFERENCES currency(id),
		is_h2h BOOLEAN NOT NULL DEFAULT 1,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		public_id VARCHAR(255) NOT NULL,
		imitation_api VARCHAR(50),
		test_mode BOOLEAN NOT NULL DEFAULT 0,
		registered_delay INTEGER,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_terminal_merchant_id ON terminal (merchant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_terminal_currency_id ON terminal (currency_id)`,
	`CREATE INDEX IF NOT EXISTS idx_terminal_public_id ON terminal (public_id)`,
}

// User is the gorm model served through ormbackend.
type User struct {
	ID        uint           `gorm:"primaryKey"`
	Username  string         `gorm:"size:150;uniqueIndex;not null"`
	Email     string         `gorm:"size:255"`
	IsActive  bool           `gorm:"not null;default:true"`
	Profile   datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
	LastLogin *time.Time
}

// String is how users show up as related choices.
func (u User) String() string {
	return u.Username
}

// Migrate creates the demo tables on db and the users table through gdb.
func Migrate(ctx context.Context, db *sql.DB, gdb *gorm.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			customLog.Warnf("Example: Failed to run migration: %v", err)
			return fmt.Errorf("failed to migrate demo tables: %w", err)
		}
	}
	if err := gdb.WithContext(ctx).AutoMigrate(&User{}); err != nil {
		customLog.Warnf("Example: Failed to migrate users: %v", err)
		return fmt.Errorf("failed to migrate users: %w", err)
	}
	customLog.Println("Example: Demo tables checked/created.")
	return nil
}
