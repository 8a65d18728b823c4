package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wisefido-radar-sim/internal/common/config"

	_ "github.com/lib/pq"
)

const defaultPingTimeout = 5 * time.Second

// NewPostgresDB 打开 PostgreSQL 连接并在超时内确认可用
// 模拟器只做少量只读查询，连接池按配置收紧
func NewPostgresDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
	}

	return db, nil
}

// Close 关闭数据库连接，nil 安全
func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
