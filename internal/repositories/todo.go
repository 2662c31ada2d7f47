// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"todo-api/internal/database"
	"todo-api/internal/models"
)

// ErrTodoNotFound はTODOが見つからない場合のエラーです。
var ErrTodoNotFound = errors.New("todo not found")

// SortKey は一覧の並び順です。
type SortKey string

const (
	SortByID     SortKey = "id"
	SortByText   SortKey = "text"
	SortByStatus SortKey = "status"
)

// orderClause は ORDER BY 句を返します。未知の値は id 昇順です。
// text と status の同順位は id 昇順で並べます。
func (k SortKey) orderClause() string {
	switch k {
	case SortByText:
		return "text ASC, id ASC"
	case SortByStatus:
		return "status DESC, id ASC"
	default:
		return "id ASC"
	}
}

// ListOptions は FindAll の絞り込みと並び順です。
type ListOptions struct {
	Status *bool // nil なら絞り込みなし
	SortBy SortKey
}

// queryer は *sql.DB と *sql.Tx の共通部分です。
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TodoRepository は todos テーブルへのアクセスを行います。
type TodoRepository struct {
	DB      *sql.DB
	dialect database.Dialect
}

// NewTodoRepository は新しいTodoRepositoryインスタンスを作成します。
func NewTodoRepository(db *sql.DB, dialect database.Dialect) *TodoRepository {
	return &TodoRepository{DB: db, dialect: dialect}
}

// FindAll は条件に合うTodoを並び順どおりに返します。該当なしは空スライスです。
func (r *TodoRepository) FindAll(ctx context.Context, opts ListOptions) ([]*models.Todo, error) {
	query := "SELECT id, text, status FROM todos"
	var args []any
	if opts.Status != nil {
		query += " WHERE status = ?"
		args = append(args, *opts.Status)
	}
	query += " ORDER BY " + opts.SortBy.orderClause()

	rows, err := r.DB.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query todos", "error", err)
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*models.Todo, 0)
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Status); err != nil {
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		todos = append(todos, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

// Count は保存されているTodoの件数を返します。
func (r *TodoRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM todos").Scan(&n); err != nil {
		return 0, fmt.Errorf("could not count todos: %w", err)
	}
	return n, nil
}

// FindByID は指定されたIDのTodoを返します。
func (r *TodoRepository) FindByID(ctx context.Context, id int) (*models.Todo, error) {
	return r.findByID(ctx, r.DB, id)
}

func (r *TodoRepository) findByID(ctx context.Context, q queryer, id int) (*models.Todo, error) {
	var t models.Todo
	err := q.QueryRowContext(ctx, r.dialect.Rebind("SELECT id, text, status FROM todos WHERE id = ?"), id).
		Scan(&t.ID, &t.Text, &t.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		slog.ErrorContext(ctx, "failed to query todo by id", "id", id, "error", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return &t, nil
}

// Create は新しいTodoを挿入し、採番されたIDをセットして返します。
func (r *TodoRepository) Create(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	if err := r.insert(ctx, r.DB, t); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateMany は入力順にTodoを1件ずつ挿入します。
// 複数件をまとめるトランザクションは張りません。途中で失敗した場合、それまでの挿入は残ります。
func (r *TodoRepository) CreateMany(ctx context.Context, todos []*models.Todo) ([]*models.Todo, error) {
	created := make([]*models.Todo, 0, len(todos))
	for _, t := range todos {
		if err := r.insert(ctx, r.DB, t); err != nil {
			return created, err
		}
		created = append(created, t)
	}
	return created, nil
}

// ReplaceAll は全件削除と新規挿入を1つのトランザクションで行います。
func (r *TodoRepository) ReplaceAll(ctx context.Context, todos []*models.Todo) ([]*models.Todo, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM todos")
	if err != nil {
		slog.ErrorContext(ctx, "failed to clear todos", "error", err)
		return nil, fmt.Errorf("could not delete todos: %w", err)
	}
	if deleted, err := res.RowsAffected(); err == nil {
		slog.DebugContext(ctx, "cleared todos", "deleted", deleted)
	}

	created := make([]*models.Todo, 0, len(todos))
	for _, t := range todos {
		if err := r.insert(ctx, tx, t); err != nil {
			return nil, err
		}
		created = append(created, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit replace: %w", err)
	}
	return created, nil
}

// UpdateText は本文だけを更新します。状態は変更しません。
func (r *TodoRepository) UpdateText(ctx context.Context, id int, text string) (*models.Todo, error) {
	return r.update(ctx, "UPDATE todos SET text = ? WHERE id = ?", text, id)
}

// SetStatus は完了状態だけを更新します。
func (r *TodoRepository) SetStatus(ctx context.Context, id int, status bool) (*models.Todo, error) {
	return r.update(ctx, "UPDATE todos SET status = ? WHERE id = ?", status, id)
}

// update は1行を更新し、更新後の行を返します。
// MySQL は値が変わらない場合 RowsAffected が0になるため、存在確認は再取得で行います。
func (r *TodoRepository) update(ctx context.Context, query string, value any, id int) (*models.Todo, error) {
	if _, err := r.DB.ExecContext(ctx, r.dialect.Rebind(query), value, id); err != nil {
		slog.ErrorContext(ctx, "failed to update todo", "id", id, "error", err)
		return nil, fmt.Errorf("could not update todo: %w", err)
	}
	return r.FindByID(ctx, id)
}

// Delete は指定されたIDのTodoを削除します。
func (r *TodoRepository) Delete(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, r.dialect.Rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete todo", "id", id, "error", err)
		return fmt.Errorf("could not delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepository) insert(ctx context.Context, q queryer, t *models.Todo) error {
	const query = "INSERT INTO todos (text, status) VALUES (?, ?)"

	if r.dialect.UsesReturning() {
		var id int
		err := q.QueryRowContext(ctx, r.dialect.Rebind(query+" RETURNING id"), t.Text, t.Status).Scan(&id)
		if err != nil {
			slog.ErrorContext(ctx, "failed to insert todo", "error", err)
			return fmt.Errorf("could not insert todo: %w", err)
		}
		t.ID = id
		return nil
	}

	result, err := q.ExecContext(ctx, query, t.Text, t.Status)
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert todo", "error", err)
		return fmt.Errorf("could not insert todo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get last insert ID: %w", err)
	}
	t.ID = int(id)
	return nil
}
