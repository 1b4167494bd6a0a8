package repository

import (
	"context"

	"github.com/St1cky1/task-api/internal/entity"
)

// ITaskRepository - интерфейс для TaskRepository.
// GetByTaskId возвращает (nil, nil), если задачи нет.
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error)
	GetByTaskId(ctx context.Context, taskId int) (*entity.Task, error)
	Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, status entity.TaskStatus) ([]entity.Task, error)
	ListIds(ctx context.Context) ([]int, error)
}

// ITaskAuditRepository - интерфейс для TaskAuditRepository
type ITaskAuditRepository interface {
	Create(ctx context.Context, audit *entity.TaskAudit) error
}

// колонки, которые разрешено менять через Update
var updatableColumns = map[string]bool{
	"title":       true,
	"description": true,
	"status":      true,
}
