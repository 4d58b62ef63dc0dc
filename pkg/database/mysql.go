package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/okanyedibela/waba-relay/environments"
	"github.com/okanyedibela/waba-relay/pkg/logger"
)

func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Connected to MySQL database")
	return db, nil
}

func RunMigrations(db *sqlx.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			phone VARCHAR(20) PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			unread INT NOT NULL DEFAULT 0,
			last_message TEXT,
			last_ts BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS messages (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			id VARCHAR(64) NOT NULL UNIQUE,
			chat_phone VARCHAR(20) NOT NULL,
			provider_id VARCHAR(128),
			text TEXT NOT NULL,
			sender VARCHAR(20) NOT NULL,
			ts BIGINT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'received',
			INDEX idx_messages_chat_phone (chat_phone),
			INDEX idx_messages_provider_id (provider_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
	}

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	logger.Infof("Database migrations completed")

	return nil
}
