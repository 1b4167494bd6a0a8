package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/St1cky1/task-api/internal/repository"
	"github.com/google/uuid"
)

// AuditPublisher интерфейс для публикации аудита в брокер (RabbitMQ или Kafka)
type AuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

const publishTimeout = 3 * time.Second

type TaskService struct {
	taskRepo  repository.ITaskRepository
	publisher AuditPublisher
	logger    *slog.Logger
}

// NewTaskService - publisher может быть nil, тогда аудит не отправляется
func NewTaskService(
	taskRepo repository.ITaskRepository,
	publisher AuditPublisher,
	logger *slog.Logger,
) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		taskRepo:  taskRepo,
		publisher: publisher,
		logger:    logger.With("component", "task_service"),
	}
}

func (s *TaskService) ListTasks(ctx context.Context) ([]entity.Task, error) {
	return s.listTasks(ctx, "")
}

func (s *TaskService) GetTask(ctx context.Context, taskID int) (*entity.Task, error) {
	task, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	// 1. Повторно проверяем статус на границе сервиса
	if req.Status == "" {
		req.Status = entity.StatusPending
	}
	if !req.Status.IsValid() {
		return nil, entity.ErrInvalidStatus
	}

	// 2. Создаем задачу
	task, err := s.taskRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Отправляем аудит
	s.sendAuditMessage(ctx, entity.ActionCreate, task.ID, nil, task)

	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID int, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	// 1. Получаем текущую задачу
	oldTask, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// 2. Подготавливаем обновления
	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	} else if req.ClearDescription {
		updates["description"] = nil
	}

	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, entity.ErrInvalidStatus
		}
		updates["status"] = *req.Status
	}

	// нечего менять - возвращаем задачу как есть
	if len(updates) == 0 {
		return oldTask, nil
	}

	// 3. Обновляем задачу
	updatedTask, err := s.taskRepo.Update(ctx, taskID, updates)
	if err != nil {
		return nil, err
	}
	if updatedTask == nil {
		// удалили между чтением и записью
		return nil, entity.ErrTaskNotFound
	}

	// 4. Отправляем аудит
	s.sendAuditMessage(ctx, entity.ActionUpdate, taskID, oldTask, updatedTask)

	return updatedTask, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID int) error {
	// 1. Получаем задачу (для аудита и проверки существования)
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	// 2. Удаляем задачу
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}

	// 3. Отправляем аудит
	s.sendAuditMessage(ctx, entity.ActionDelete, taskID, task, nil)

	return nil
}

// ListTaskIds - все существующие id, нужны для подсказки в 404
func (s *TaskService) ListTaskIds(ctx context.Context) ([]int, error) {
	return s.taskRepo.ListIds(ctx)
}

func (s *TaskService) ListTasksByStatus(ctx context.Context, status entity.TaskStatus) ([]entity.Task, error) {
	if !status.IsValid() {
		return nil, entity.ErrInvalidStatus
	}
	return s.listTasks(ctx, status)
}

func (s *TaskService) PendingTasks(ctx context.Context) ([]entity.Task, error) {
	return s.listTasks(ctx, entity.StatusPending)
}

func (s *TaskService) InProgressTasks(ctx context.Context) ([]entity.Task, error) {
	return s.listTasks(ctx, entity.StatusInProgress)
}

func (s *TaskService) CompletedTasks(ctx context.Context) ([]entity.Task, error) {
	return s.listTasks(ctx, entity.StatusCompleted)
}

// ChangeStatus - обертка над UpdateTask только со статусом
func (s *TaskService) ChangeStatus(ctx context.Context, taskID int, status entity.TaskStatus) (*entity.Task, error) {
	return s.UpdateTask(ctx, taskID, &entity.UpdateTaskRequest{Status: &status})
}

func (s *TaskService) StartTask(ctx context.Context, taskID int) (*entity.Task, error) {
	return s.ChangeStatus(ctx, taskID, entity.StatusInProgress)
}

func (s *TaskService) PauseTask(ctx context.Context, taskID int) (*entity.Task, error) {
	return s.ChangeStatus(ctx, taskID, entity.StatusPending)
}

func (s *TaskService) CompleteTask(ctx context.Context, taskID int) (*entity.Task, error) {
	return s.ChangeStatus(ctx, taskID, entity.StatusCompleted)
}

// Statistics - количество задач по статусам
func (s *TaskService) Statistics(ctx context.Context) (*entity.TaskStatistics, error) {
	tasks, err := s.listTasks(ctx, "")
	if err != nil {
		return nil, err
	}

	stats := &entity.TaskStatistics{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case entity.StatusPending:
			stats.Pending++
		case entity.StatusInProgress:
			stats.InProgress++
		case entity.StatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

func (s *TaskService) listTasks(ctx context.Context, status entity.TaskStatus) ([]entity.Task, error) {
	tasks, err := s.taskRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []entity.Task{}
	}
	return tasks, nil
}

// Вспомогательный метод для отправки аудита. Ошибка брокера не ломает запрос.
func (s *TaskService) sendAuditMessage(
	ctx context.Context,
	action entity.ActionType,
	taskID int,
	oldTask *entity.Task,
	newTask *entity.Task,
) {
	if s.publisher == nil {
		return
	}

	auditMsg := buildAuditMessage(action, taskID, oldTask, newTask)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishAuditMessage(pubCtx, auditMsg); err != nil {
		s.logger.Error("ошибка отправки аудита", "action", action, "task_id", taskID, "error", err)
		return
	}
	s.logger.Debug("аудит отправлен", "action", action, "task_id", taskID)
}

func buildAuditMessage(action entity.ActionType, taskID int, oldTask, newTask *entity.Task) *entity.AuditMessage {
	auditMsg := &entity.AuditMessage{
		ID:        uuid.NewString(),
		Action:    action,
		EntityID:  taskID,
		Timestamp: time.Now().UTC(),
	}

	if oldTask != nil {
		auditMsg.OldValues = auditValues(oldTask)
	}
	if newTask != nil {
		auditMsg.NewValues = auditValues(newTask)
	}

	// Вычисляем изменения
	if oldTask != nil && newTask != nil {
		changes := make(map[string]any)
		if oldTask.Title != newTask.Title {
			changes["title"] = map[string]any{"old": oldTask.Title, "new": newTask.Title}
		}
		if !sameDescription(oldTask.Description, newTask.Description) {
			changes["description"] = map[string]any{"old": oldTask.Description, "new": newTask.Description}
		}
		if oldTask.Status != newTask.Status {
			changes["status"] = map[string]any{"old": oldTask.Status, "new": newTask.Status}
		}
		auditMsg.Changes = changes
	}

	return auditMsg
}

func auditValues(task *entity.Task) map[string]any {
	return map[string]any{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
	}
}

func sameDescription(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
