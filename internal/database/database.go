// Package database はデータベース接続とスキーマ管理を提供します。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"todo-api/internal/config"
)

// sqlitePragmas は SQLite の各接続に適用されます。
// WAL とビジータイムアウトにより、同時書き込みはエンジンのロック待ちになります。
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
}

// Open は設定に従ってデータベース接続を開き、Ping で疎通を確認します。
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	dsn, err := cfg.DataSourceName()
	if err != nil {
		return nil, "", err
	}
	if dialect == SQLite {
		dsn = withSQLitePragmas(dsn)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("could not open %s database: %w", dialect, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("could not ping %s database: %w", dialect, err)
	}

	slog.Info("connected to database", "driver", string(dialect))
	return db, dialect, nil
}

// OpenAndMigrate は Open の後にマイグレーションを適用します。
// 初回起動時に todos テーブルが作成されます。
func OpenAndMigrate(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, Dialect, error) {
	db, dialect, err := Open(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	if _, err := Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, "", err
	}
	return db, dialect, nil
}

func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	params := make([]string, 0, len(sqlitePragmas))
	for _, p := range sqlitePragmas {
		params = append(params, "_pragma="+p)
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
