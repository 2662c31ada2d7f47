// Package config はアプリケーション設定の読み込みと検証を行います。
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// サポートするデータベースドライバー
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DefaultSQLitePath は DSN 未指定時の SQLite ファイルです。
const DefaultSQLitePath = "todos.db"

// Config はアプリケーション全体の設定です。
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
}

// ServerConfig はHTTPサーバーの設定です。
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Mode            string        `mapstructure:"mode" validate:"required,oneof=debug release test"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	CORSOrigins     []string      `mapstructure:"cors_origins" validate:"required,min=1"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// Addr は net/http 用の listen アドレスを返します。
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig はデータベース接続の設定です。
// DSN が空の場合、mysql/postgres では Host などの個別項目から組み立てます。
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=sqlite mysql postgres"`
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// DataSourceName はドライバーに渡す接続文字列を返します。
func (d DatabaseConfig) DataSourceName() (string, error) {
	if d.DSN != "" {
		return d.DSN, nil
	}

	switch d.Driver {
	case DriverSQLite:
		return DefaultSQLitePath, nil
	case DriverMySQL:
		if d.Host == "" || d.Name == "" {
			return "", fmt.Errorf("database.host and database.name are required for mysql when database.dsn is empty")
		}
		mc := mysql.NewConfig()
		mc.User = d.User
		mc.Passwd = d.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(d.Host, portOrDefault(d.Port, "3306"))
		mc.DBName = d.Name
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	case DriverPostgres:
		if d.Host == "" || d.Name == "" {
			return "", fmt.Errorf("database.host and database.name are required for postgres when database.dsn is empty")
		}
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(d.Host, portOrDefault(d.Port, "5432")),
			Path:   "/" + d.Name,
		}
		if d.User != "" {
			u.User = url.UserPassword(d.User, d.Password)
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("database.dsn is required for driver %q", d.Driver)
	}
}

func portOrDefault(port, fallback string) string {
	if port == "" {
		return fallback
	}
	return port
}
