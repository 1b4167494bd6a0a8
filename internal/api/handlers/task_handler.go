package handlers

import (
	"math"
	"net/http"
	"regexp"
	"strconv"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/St1cky1/task-api/internal/locale"
	"github.com/St1cky1/task-api/internal/usecase"
	"github.com/St1cky1/task-api/internal/validation"
	"github.com/go-chi/chi/v5"
)

const (
	apiName    = "Task Management API"
	apiVersion = "1.0.0"
)

var digitsPattern = regexp.MustCompile(`^\d+$`)

type TaskHandler struct {
	taskService *usecase.TaskService
	errors      *ErrorTranslator
}

func NewTaskHandler(taskService *usecase.TaskService, errors *ErrorTranslator) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		errors:      errors,
	}
}

// ListTasks - все задачи, с ?status= только задачи в этом статусе
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		tasks []entity.Task
		err   error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		tasks, err = h.taskService.ListTasksByStatus(ctx, entity.TaskStatus(status))
	} else {
		tasks, err = h.taskService.ListTasks(ctx)
	}
	if err != nil {
		h.errors.Render(w, r, err)
		return
	}

	count := len(tasks)
	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: locale.T(ctx, locale.MsgTaskListRetrieved),
		Data:    tasks,
		Count:   &count,
	})
}

// создаем новую задачу
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req entity.CreateTaskRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		h.errors.Render(w, r, err)
		return
	}
	req.Normalize()
	if err := validation.Struct(&req); err != nil {
		h.errors.Render(w, r, err)
		return
	}

	task, err := h.taskService.CreateTask(ctx, &req)
	if err != nil {
		h.errors.Render(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, successResponse{
		Success: true,
		Message: locale.T(ctx, locale.MsgTaskCreated),
		Data:    task,
	})
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskId, err := parseTaskID(r)
	if err != nil {
		h.errors.Render(w, r, err)
		return
	}

	task, err := h.taskService.GetTask(ctx, taskId)
	if err != nil {
		h.errors.Render(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: locale.T(ctx, locale.MsgTaskRetrieved),
		Data:    task,
	})
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskId, err := parseTaskID(r)
	if err != nil {
		h.errors.Render(w, r, err)
		return
	}

	var req entity.UpdateTaskRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		h.errors.Render(w, r, err)
		return
	}
	req.Normalize()
	if err := validation.Struct(&req); err != nil {
		h.errors.Render(w, r, err)
		return
	}

	task, err := h.taskService.UpdateTask(ctx, taskId, &req)
	if err != nil {
		h.errors.Render(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: locale.T(ctx, locale.MsgTaskUpdated),
		Data:    task,
	})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskId, err := parseTaskID(r)
	if err != nil {
		h.errors.Render(w, r, err)
		return
	}

	if err := h.taskService.DeleteTask(ctx, taskId); err != nil {
		h.errors.Render(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: locale.T(ctx, locale.MsgTaskDeleted),
		Hint:    locale.T(ctx, locale.MsgHintTaskDeleted, strconv.Itoa(taskId)),
	})
}

func (h *TaskHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.taskService.Statistics(ctx)
	if err != nil {
		h.errors.Render(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: locale.T(ctx, locale.MsgStatisticsRetrieved),
		Data:    stats,
	})
}

func (h *TaskHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, entity.StatusInProgress)
}

func (h *TaskHandler) PauseTask(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, entity.StatusPending)
}

func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, entity.StatusCompleted)
}

func (h *TaskHandler) changeStatus(w http.ResponseWriter, r *http.Request, status entity.TaskStatus) {
	ctx := r.Context()

	taskId, err := parseTaskID(r)
	if err != nil {
		h.errors.Render(w, r, err)
		return
	}

	task, err := h.taskService.ChangeStatus(ctx, taskId, status)
	if err != nil {
		h.errors.Render(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: locale.T(ctx, locale.MsgTaskUpdated),
		Data:    task,
	})
}

// APIInfo - описание API и допустимых статусов
func (h *TaskHandler) APIInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	writeJSON(w, http.StatusOK, apiInfoResponse{
		Name:        apiName,
		Version:     apiVersion,
		Description: locale.T(ctx, locale.MsgAPIDescription),
		Endpoints: map[string]string{
			"GET " + APIPrefix + "/tasks":                "Get all tasks",
			"POST " + APIPrefix + "/tasks":               "Create a new task",
			"GET " + APIPrefix + "/tasks/{id}":           "Get a single task",
			"PUT " + APIPrefix + "/tasks/{id}":           "Update a task",
			"DELETE " + APIPrefix + "/tasks/{id}":        "Delete a task",
			"GET " + APIPrefix + "/tasks/statistics":     "Get task statistics",
			"POST " + APIPrefix + "/tasks/{id}/start":    "Move a task to in_progress",
			"POST " + APIPrefix + "/tasks/{id}/pause":    "Move a task back to pending",
			"POST " + APIPrefix + "/tasks/{id}/complete": "Mark a task as completed",
		},
		StatusValues: locale.StatusDescriptions(ctx),
	})
}

// parseTaskID - числовой id, которого не может быть в базе, это "задача не найдена",
// нечисловой - "ресурс не найден"
func parseTaskID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	if !digitsPattern.MatchString(raw) {
		return 0, errResourceNotFound
	}
	taskId, err := strconv.Atoi(raw)
	// id в базе - int4, большие значения задачей быть не могут
	if err != nil || taskId < 1 || taskId > math.MaxInt32 {
		return 0, entity.ErrTaskNotFound
	}
	return taskId, nil
}
