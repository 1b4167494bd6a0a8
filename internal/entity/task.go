package entity

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// порядок важен: используется в подсказках validation_rules
var statuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

// Statuses возвращает все статусы в фиксированном порядке
func Statuses() []TaskStatus {
	out := make([]TaskStatus, len(statuses))
	copy(out, statuses)
	return out
}

// StatusValues - строковые значения статусов
func StatusValues() []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func (s TaskStatus) IsValid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type TaskStatistics struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
}

// валидация
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status" validate:"omitempty,task_status"`
}

// Normalize обрезает пробелы, пустое описание превращает в null
func (r *CreateTaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = normalizeDescription(r.Description)
	r.Status = TaskStatus(strings.TrimSpace(string(r.Status)))
}

type UpdateTaskRequest struct {
	Title       *string     `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string     `json:"description"`
	Status      *TaskStatus `json:"status" validate:"omitnil,task_status"`

	// клиент явно передал "description": null
	ClearDescription bool `json:"-"`
}

func (r *UpdateTaskRequest) UnmarshalJSON(data []byte) error {
	type alias UpdateTaskRequest

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = UpdateTaskRequest(a)

	// "title": null не равен отсутствию поля - title обязателен, если передан
	if v, ok := raw["title"]; ok && isNull(v) {
		empty := ""
		r.Title = &empty
	}
	if v, ok := raw["description"]; ok && isNull(v) {
		r.ClearDescription = true
	}
	return nil
}

func (r *UpdateTaskRequest) Normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
	if r.Description != nil {
		r.Description = normalizeDescription(r.Description)
		if r.Description == nil {
			r.ClearDescription = true
		}
	}
	if r.Status != nil {
		status := TaskStatus(strings.TrimSpace(string(*r.Status)))
		if status == "" {
			r.Status = nil
		} else {
			r.Status = &status
		}
	}
}

func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
