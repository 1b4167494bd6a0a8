package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/St1cky1/task-api/internal/entity"
	"gorm.io/gorm"
)

// TaskRecord - строка таблицы tasks для GORM (драйвер sqlite)
type TaskRecord struct {
	ID          int     `gorm:"primaryKey;autoIncrement"`
	Title       string  `gorm:"size:255;not null"`
	Description *string `gorm:"type:text"`
	Status      string  `gorm:"size:20;not null;default:pending;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TaskRecord) TableName() string {
	return "tasks"
}

func (r TaskRecord) toEntity() entity.Task {
	return entity.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      entity.TaskStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// GormTaskRepository - реализация ITaskRepository поверх GORM
type GormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error) {
	record := TaskRecord{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
	}
	if record.Status == "" {
		record.Status = string(entity.StatusPending)
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	created := record.toEntity()
	return &created, nil
}

func (r *GormTaskRepository) GetByTaskId(ctx context.Context, taskId int) (*entity.Task, error) {
	var record TaskRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", taskId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("select task %d: %w", taskId, err)
	}

	task := record.toEntity()
	return &task, nil
}

func (r *GormTaskRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error) {
	values := make(map[string]interface{}, len(updates)+1)
	for field, value := range updates {
		if !updatableColumns[field] {
			return nil, fmt.Errorf("update task: unknown column %q", field)
		}
		if status, ok := value.(entity.TaskStatus); ok {
			value = string(status)
		}
		values[field] = value
	}
	values["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&TaskRecord{}).Where("id = ?", id).Updates(values)
	if err := result.Error; err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return r.GetByTaskId(ctx, id)
}

func (r *GormTaskRepository) Delete(ctx context.Context, id int) error {
	if err := r.db.WithContext(ctx).Delete(&TaskRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (r *GormTaskRepository) List(ctx context.Context, status entity.TaskStatus) ([]entity.Task, error) {
	query := r.db.WithContext(ctx).Order("id")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var records []TaskRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]entity.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, rec.toEntity())
	}
	return tasks, nil
}

func (r *GormTaskRepository) ListIds(ctx context.Context) ([]int, error) {
	ids := []int{}
	if err := r.db.WithContext(ctx).Model(&TaskRecord{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list task ids: %w", err)
	}
	return ids, nil
}

// TaskAuditRecord - строка таблицы task_audit
type TaskAuditRecord struct {
	ID         int    `gorm:"primaryKey;autoIncrement"`
	Action     string `gorm:"size:20;not null"`
	EntityType string `gorm:"size:50;not null"`
	EntityID   int    `gorm:"not null;index"`
	OldValues  *string
	NewValues  *string
	Changes    *string
	ChangedAt  time.Time
}

func (TaskAuditRecord) TableName() string {
	return "task_audit"
}

type GormTaskAuditRepository struct {
	db *gorm.DB
}

func NewGormTaskAuditRepository(db *gorm.DB) *GormTaskAuditRepository {
	return &GormTaskAuditRepository{db: db}
}

func (r *GormTaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	record := TaskAuditRecord{
		Action:     string(audit.Action),
		EntityType: audit.EntityType,
		EntityID:   audit.EntityID,
		OldValues:  audit.OldValues,
		NewValues:  audit.NewValues,
		Changes:    audit.Changes,
		ChangedAt:  audit.ChangedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("insert task audit: %w", err)
	}

	audit.ID = record.ID
	return nil
}

var (
	_ ITaskRepository      = (*TaskRepository)(nil)
	_ ITaskRepository      = (*GormTaskRepository)(nil)
	_ ITaskAuditRepository = (*TaskAuditRepository)(nil)
	_ ITaskAuditRepository = (*GormTaskAuditRepository)(nil)
)

// AutoMigrate создает таблицы для драйвера sqlite.
// Для postgres схема ведется миграциями golang-migrate.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&TaskRecord{}, &TaskAuditRecord{})
}
