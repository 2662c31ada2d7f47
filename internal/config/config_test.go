package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)

	dsn, err := cfg.Database.DataSourceName()
	require.NoError(t, err)
	assert.Equal(t, DefaultSQLitePath, dsn)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TODO_SERVER_PORT", "8081")
	t.Setenv("TODO_SERVER_LOG_LEVEL", "debug")
	t.Setenv("TODO_SERVER_CORS_ORIGINS", "http://localhost:3000,http://example.com")
	t.Setenv("TODO_DATABASE_DSN", "/tmp/other.db")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000", "http://example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/tmp/other.db", cfg.Database.DSN)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TODO_SERVER_HOST=127.0.0.1\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("TODO_SERVER_HOST") })

	cfg, err := Load(LoadOptions{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestLoad_ConfigFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 7000\n  mode: debug\ndatabase:\n  driver: sqlite\n  dsn: from-file.db\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("host", "0.0.0.0", "")
	flags.Int("port", 5000, "")
	require.NoError(t, flags.Parse([]string{"--port", "9000"}))

	cfg, err := Load(LoadOptions{ConfigFile: path, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port, "flag wins over config file")
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "from-file.db", cfg.Database.DSN)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_MissingConfigFileFails(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Run("bad driver", func(t *testing.T) {
		t.Setenv("TODO_DATABASE_DRIVER", "oracle")
		_, err := Load(LoadOptions{})
		assert.ErrorContains(t, err, "invalid configuration")
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("TODO_SERVER_PORT", "70000")
		_, err := Load(LoadOptions{})
		assert.ErrorContains(t, err, "invalid configuration")
	})

	t.Run("mysql without connection details", func(t *testing.T) {
		t.Setenv("TODO_DATABASE_DRIVER", "mysql")
		_, err := Load(LoadOptions{})
		assert.ErrorContains(t, err, "database.host")
	})
}

func TestDataSourceName(t *testing.T) {
	t.Run("explicit dsn wins", func(t *testing.T) {
		dsn, err := DatabaseConfig{Driver: DriverMySQL, DSN: "u:p@tcp(db:3306)/todos", Host: "ignored"}.DataSourceName()
		require.NoError(t, err)
		assert.Equal(t, "u:p@tcp(db:3306)/todos", dsn)
	})

	t.Run("mysql from parts", func(t *testing.T) {
		dsn, err := DatabaseConfig{
			Driver: DriverMySQL, Host: "db", User: "todo", Password: "secret", Name: "todos",
		}.DataSourceName()
		require.NoError(t, err)
		assert.Contains(t, dsn, "todo:secret@tcp(db:3306)/todos")
		assert.Contains(t, dsn, "parseTime=true")
	})

	t.Run("postgres from parts", func(t *testing.T) {
		dsn, err := DatabaseConfig{
			Driver: DriverPostgres, Host: "pg", Port: "6543", User: "todo", Password: "secret", Name: "todos",
		}.DataSourceName()
		require.NoError(t, err)
		assert.Equal(t, "postgres://todo:secret@pg:6543/todos", dsn)
	})

	t.Run("postgres requires host", func(t *testing.T) {
		_, err := DatabaseConfig{Driver: DriverPostgres, Name: "todos"}.DataSourceName()
		assert.Error(t, err)
	})
}
