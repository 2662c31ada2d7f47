// Package models はTodo APIのデータ構造を定義します。
package models

import (
	"encoding/json"
	"fmt"
)

// Todo は todos テーブルの1行を表します。
type Todo struct {
	ID     int    `json:"id"`     // 主キー (自動採番)
	Text   string `json:"text"`   // タスク本文
	Status bool   `json:"status"` // 完了状態
}

// CreateTodoRequest は POST /api/todos と batch/bulk の各要素のボディです。
// 省略されたフィールドは nil になります。
type CreateTodoRequest struct {
	Text   *string `json:"text"`
	Status *bool   `json:"status"`
}

// UnmarshalJSON はキー名を完全一致で照合します。"Text" や "TEXT" は text として扱いません。
func (r *CreateTodoRequest) UnmarshalJSON(data []byte) error {
	fields, err := exactFields(data)
	if err != nil {
		return err
	}
	var req CreateTodoRequest
	if err := decodeField(fields, "text", &req.Text); err != nil {
		return err
	}
	if err := decodeField(fields, "status", &req.Status); err != nil {
		return err
	}
	*r = req
	return nil
}

// UpdateTodoRequest は PUT /api/todos/:id のボディです。
type UpdateTodoRequest struct {
	Text *string `json:"text"`
}

// UnmarshalJSON はキー名を完全一致で照合します。
func (r *UpdateTodoRequest) UnmarshalJSON(data []byte) error {
	fields, err := exactFields(data)
	if err != nil {
		return err
	}
	var req UpdateTodoRequest
	if err := decodeField(fields, "text", &req.Text); err != nil {
		return err
	}
	*r = req
	return nil
}

// BulkReplaceResponse は POST /api/todos/bulk のレスポンスです。
type BulkReplaceResponse struct {
	Message string  `json:"message"`
	Todos   []*Todo `json:"todos"`
}

// MessageResponse は削除などのメッセージのみのレスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// exactFields はJSONオブジェクトをキーごとに分解します。null は空のオブジェクトと同じです。
func exactFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}
