package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	"todo-api/internal/config"
)

// Dialect は接続先のSQL方言です。
type Dialect string

const (
	SQLite   Dialect = config.DriverSQLite
	MySQL    Dialect = config.DriverMySQL
	Postgres Dialect = config.DriverPostgres
)

// ParseDialect はドライバー名を Dialect に変換します。
func ParseDialect(driver string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(driver)); d {
	case SQLite, MySQL, Postgres:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// DriverName は database/sql に登録されたドライバー名です。
func (d Dialect) DriverName() string {
	switch d {
	case Postgres:
		return "pgx"
	default:
		return string(d)
	}
}

// UsesReturning は INSERT で採番IDを RETURNING で受け取るかどうかです。
// pgx は LastInsertId をサポートしません。
func (d Dialect) UsesReturning() bool {
	return d == Postgres
}

// Rebind は "?" プレースホルダーを方言に合わせて書き換えます。
// クエリ中の文字列リテラルに "?" を含めないこと。
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) gooseDialect() goose.Dialect {
	switch d {
	case MySQL:
		return goose.DialectMySQL
	case Postgres:
		return goose.DialectPostgres
	default:
		return goose.DialectSQLite3
	}
}
