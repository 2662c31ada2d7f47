// Package services はハンドラーとリポジトリの間の入力検証を扱います。
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"todo-api/internal/models"
	"todo-api/internal/repositories"
)

// ErrValidation はリクエスト内容が不正な場合のエラーです。
var ErrValidation = errors.New("validation error")

// クライアントに返す検証エラーメッセージ
const (
	MsgTextRequired = "Text is required"
	MsgExpectedList = "Expected a list of todos"
)

// ValidationError はクライアント向けメッセージを持つ検証エラーです。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}

// TodoStore は TodoService が使う永続化操作です。
type TodoStore interface {
	FindAll(ctx context.Context, opts repositories.ListOptions) ([]*models.Todo, error)
	FindByID(ctx context.Context, id int) (*models.Todo, error)
	Create(ctx context.Context, t *models.Todo) (*models.Todo, error)
	CreateMany(ctx context.Context, todos []*models.Todo) ([]*models.Todo, error)
	ReplaceAll(ctx context.Context, todos []*models.Todo) ([]*models.Todo, error)
	UpdateText(ctx context.Context, id int, text string) (*models.Todo, error)
	SetStatus(ctx context.Context, id int, status bool) (*models.Todo, error)
	Delete(ctx context.Context, id int) error
}

// TodoService はTodo関連の操作を扱います。
type TodoService struct {
	store TodoStore
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(store TodoStore) *TodoService {
	return &TodoService{store: store}
}

// ParseStatusFilter は status クエリを解釈します。
// "true"/"false" (大文字小文字は区別しない) 以外は絞り込みなしです。
func ParseStatusFilter(raw string) *bool {
	switch strings.ToLower(raw) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

// ParseSortKey は sort_by クエリを解釈します。未知の値は id です。
func ParseSortKey(raw string) repositories.SortKey {
	switch k := repositories.SortKey(raw); k {
	case repositories.SortByText, repositories.SortByStatus:
		return k
	default:
		return repositories.SortByID
	}
}

// ListTodos は絞り込みと並び替えをしたTodo一覧を返します。
func (s *TodoService) ListTodos(ctx context.Context, statusRaw, sortRaw string) ([]*models.Todo, error) {
	return s.store.FindAll(ctx, repositories.ListOptions{
		Status: ParseStatusFilter(statusRaw),
		SortBy: ParseSortKey(sortRaw),
	})
}

// GetTodo は指定IDのTodoを返します。
func (s *TodoService) GetTodo(ctx context.Context, id int) (*models.Todo, error) {
	return s.store.FindByID(ctx, id)
}

// CreateTodo は新しいTodoを作成します。text が無い場合は保存しません。
func (s *TodoService) CreateTodo(ctx context.Context, req models.CreateTodoRequest) (*models.Todo, error) {
	todo, ok := todoFromRequest(req)
	if !ok {
		return nil, validationError(MsgTextRequired)
	}
	return s.store.Create(ctx, todo)
}

// UpdateTodo は text が指定された場合だけ本文を更新します。
func (s *TodoService) UpdateTodo(ctx context.Context, id int, req models.UpdateTodoRequest) (*models.Todo, error) {
	if req.Text == nil {
		return s.store.FindByID(ctx, id)
	}
	return s.store.UpdateText(ctx, id, *req.Text)
}

// SetStatus は完了状態を設定します。
func (s *TodoService) SetStatus(ctx context.Context, id int, status bool) (*models.Todo, error) {
	return s.store.SetStatus(ctx, id, status)
}

// DeleteTodo はTodoを削除します。
func (s *TodoService) DeleteTodo(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}

// BatchCreate はJSON配列の各要素からTodoを追加します。既存のTodoは残ります。
func (s *TodoService) BatchCreate(ctx context.Context, payload []byte) ([]*models.Todo, error) {
	todos, err := DecodeTodoList(payload)
	if err != nil {
		return nil, err
	}
	return s.store.CreateMany(ctx, todos)
}

// ReplaceAll は既存のTodoをすべて削除し、JSON配列の内容で置き換えます。
func (s *TodoService) ReplaceAll(ctx context.Context, payload []byte) ([]*models.Todo, error) {
	todos, err := DecodeTodoList(payload)
	if err != nil {
		return nil, err
	}
	return s.store.ReplaceAll(ctx, todos)
}

// DecodeTodoList はJSON配列を作成対象のTodoに変換します。
// 配列でなければ検証エラーです。text を持たない要素やオブジェクトでない要素は黙って読み飛ばします。
func DecodeTodoList(payload []byte) ([]*models.Todo, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil || items == nil {
		return nil, validationError(MsgExpectedList)
	}

	todos := make([]*models.Todo, 0, len(items))
	for _, item := range items {
		var req models.CreateTodoRequest
		if err := json.Unmarshal(item, &req); err != nil {
			continue
		}
		if todo, ok := todoFromRequest(req); ok {
			todos = append(todos, todo)
		}
	}
	return todos, nil
}

func todoFromRequest(req models.CreateTodoRequest) (*models.Todo, bool) {
	if req.Text == nil || *req.Text == "" {
		return nil, false
	}
	todo := &models.Todo{Text: *req.Text}
	if req.Status != nil {
		todo.Status = *req.Status
	}
	return todo, true
}
