// Package testutil はテスト用のデータベースとルーターを用意します。
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"todo-api/internal/config"
	"todo-api/internal/database"
	"todo-api/internal/models"
	"todo-api/internal/repositories"
	"todo-api/internal/routes"
)

// TestServerConfig はテスト用のサーバー設定です。
func TestServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            5000,
		Mode:            gin.TestMode,
		LogLevel:        "error",
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: time.Second,
	}
}

// SetupTestDB は一時ディレクトリにマイグレーション済みのSQLiteデータベースを作成し、
// ルーターとリポジトリを返します。データベースはテスト終了時に閉じられます。
func SetupTestDB(t *testing.T) (*sql.DB, *gin.Engine, *repositories.TodoRepository) {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		DSN:             filepath.Join(t.TempDir(), "todos.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    4,
		ConnMaxLifetime: time.Minute,
	}

	db, dialect, err := database.OpenAndMigrate(context.Background(), cfg)
	require.NoError(t, err, "failed to set up test database")
	t.Cleanup(func() { _ = db.Close() })

	router := routes.SetupRouter(db, dialect, TestServerConfig())
	return db, router, repositories.NewTodoRepository(db, dialect)
}

// DoRequest はルーターにリクエストを送り、レスポンスを返します。
func DoRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestTodo はAPI経由でTODOを作成します。
func CreateTestTodo(t *testing.T, router http.Handler, text string, status bool) *models.Todo {
	t.Helper()

	body, err := json.Marshal(map[string]any{"text": text, "status": status})
	require.NoError(t, err)

	resp := DoRequest(t, router, http.MethodPost, "/api/todos", string(body))
	require.Equal(t, http.StatusCreated, resp.Code, "TODO作成に失敗しました: %s", resp.Body.String())

	var created models.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}

// DecodeTodos はレスポンスボディをTodoの配列として読み込みます。
func DecodeTodos(t *testing.T, resp *httptest.ResponseRecorder) []models.Todo {
	t.Helper()

	var todos []models.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &todos), "body: %s", resp.Body.String())
	return todos
}
