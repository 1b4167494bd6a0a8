package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, status, created_at, updated_at`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error) {
	status := task.Status
	if status == "" {
		status = entity.StatusPending
	}

	query := `
	INSERT INTO tasks (title, description, status)
	VALUES ($1, $2, $3)
	RETURNING ` + taskColumns

	createdTask, err := scanTask(r.db.QueryRow(ctx, query, task.Title, task.Description, status))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return createdTask, nil
}

func (r *TaskRepository) GetByTaskId(ctx context.Context, taskId int) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select task %d: %w", taskId, err)
	}

	return task, nil
}

// Update - обновление задачи
func (r *TaskRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error) {
	// порядок колонок фиксируем, чтобы запрос был детерминированным
	fields := make([]string, 0, len(updates))
	for field := range updates {
		if !updatableColumns[field] {
			return nil, fmt.Errorf("update task: unknown column %q", field)
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	setClause := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+1)
	for i, field := range fields {
		setClause = append(setClause, field+" = $"+strconv.Itoa(i+1))
		args = append(args, updates[field])
	}
	setClause = append(setClause, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := `
	UPDATE tasks
	SET ` + strings.Join(setClause, ", ") + `
	WHERE id = $` + strconv.Itoa(len(args)) + `
	RETURNING ` + taskColumns

	task, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}

	return task, nil
}

// Delete - удаление задачи
func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

// List - список задач, пустой status означает без фильтра
func (r *TaskRepository) List(ctx context.Context, status entity.TaskStatus) ([]entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	args := []interface{}{}

	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []entity.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) ListIds(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list task ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("collect task ids: %w", err)
	}
	return ids, nil
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var task entity.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
