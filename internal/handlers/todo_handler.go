// Package handlers はHTTPハンドラーを提供します。
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"todo-api/internal/models"
	"todo-api/internal/repositories"
	"todo-api/internal/services"
)

// レスポンスメッセージ
const (
	MsgTodoNotFound   = "Todo not found"
	MsgInvalidPayload = "Invalid request payload"
	MsgTodoDeleted    = "Todo deleted successfully"
)

// TodoHandler はTodo関連のハンドラーを管理します。
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// GetTodosHandler は GET /api/todos?status=&sort_by= を処理します。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	todos, err := h.todoService.ListTodos(c.Request.Context(), c.Query("status"), c.Query("sort_by"))
	if err != nil {
		respondError(c, err, "fetch todos")
		return
	}
	c.JSON(http.StatusOK, todos)
}

// GetTodoByIDHandler は指定IDのTodoを返します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	todo, err := h.todoService.GetTodo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "fetch todo")
		return
	}
	c.JSON(http.StatusOK, todo)
}

// CreateTodoHandler は新しいTodoを作成します。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	var req models.CreateTodoRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	created, err := h.todoService.CreateTodo(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create todo")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateTodoHandler はTodoの本文を更新します。
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateTodoRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	updated, err := h.todoService.UpdateTodo(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "update todo")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTodoHandler はTodoを削除します。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.todoService.DeleteTodo(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete todo")
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: MsgTodoDeleted})
}

// CompleteTodoHandler はTodoを完了にします。
func (h *TodoHandler) CompleteTodoHandler(c *gin.Context) {
	h.setStatus(c, true)
}

// UncompleteTodoHandler はTodoを未完了に戻します。
func (h *TodoHandler) UncompleteTodoHandler(c *gin.Context) {
	h.setStatus(c, false)
}

func (h *TodoHandler) setStatus(c *gin.Context, status bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	updated, err := h.todoService.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err, "update todo status")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// BatchCreateTodosHandler はJSON配列のTodoをまとめて追加します。
func (h *TodoHandler) BatchCreateTodosHandler(c *gin.Context) {
	payload, ok := readPayload(c)
	if !ok {
		return
	}
	created, err := h.todoService.BatchCreate(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err, "create todos")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ReplaceTodosHandler は既存のTodoをすべてJSON配列の内容で置き換えます。
func (h *TodoHandler) ReplaceTodosHandler(c *gin.Context) {
	payload, ok := readPayload(c)
	if !ok {
		return
	}
	created, err := h.todoService.ReplaceAll(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err, "replace todos")
		return
	}
	c.JSON(http.StatusCreated, models.BulkReplaceResponse{
		Message: fmt.Sprintf("Successfully replaced todos. Added %d new items.", len(created)),
		Todos:   created,
	})
}

// pathID は :id を数値として取り出します。数値でないIDは存在しないTodoとして扱います。
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": MsgTodoNotFound})
		return 0, false
	}
	return id, true
}

// bindOptionalJSON はボディをデコードします。空のボディはゼロ値のままにします。
func bindOptionalJSON(c *gin.Context, obj any) bool {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidPayload})
		return false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	if err := binding.JSON.BindBody(raw, obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidPayload})
		return false
	}
	return true
}

// readPayload は生のJSONボディを返します。JSONとして壊れている場合は400を返します。
// 空のボディは配列ではないものとしてサービス側で扱います。
func readPayload(c *gin.Context) ([]byte, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidPayload})
		return nil, false
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !json.Valid(trimmed) {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidPayload})
		return nil, false
	}
	return raw, true
}

// respondError はエラーをHTTPステータスに変換します。
func respondError(c *gin.Context, err error, op string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, repositories.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": MsgTodoNotFound})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"operation", op,
			"path", c.Request.URL.Path,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op})
	}
}
