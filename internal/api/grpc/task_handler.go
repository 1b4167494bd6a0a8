package grpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/St1cky1/task-api/internal/locale"
	"github.com/St1cky1/task-api/internal/usecase"
	"github.com/St1cky1/task-api/internal/validation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// TaskServiceServer реализует gRPC TaskService
type TaskServiceServer struct {
	taskService *usecase.TaskService
	logger      *slog.Logger
}

var _ taskService = (*TaskServiceServer)(nil)

// NewTaskServiceServer создает новый TaskServiceServer
func NewTaskServiceServer(taskService *usecase.TaskService, logger *slog.Logger) *TaskServiceServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceServer{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks - список задач, опционально с фильтром status
func (s *TaskServiceServer) ListTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		tasks []entity.Task
		err   error
	)
	if filter := req.GetFields()["status"].GetStringValue(); filter != "" {
		tasks, err = s.taskService.ListTasksByStatus(ctx, entity.TaskStatus(filter))
	} else {
		tasks, err = s.taskService.ListTasks(ctx)
	}
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.toStruct(ctx, map[string]any{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetTask - получение задачи
func (s *TaskServiceServer) GetTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	taskId, err := taskIDFrom(req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	task, err := s.taskService.GetTask(ctx, taskId)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.toStruct(ctx, task)
}

// CreateTask - создание задачи
func (s *TaskServiceServer) CreateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var createReq entity.CreateTaskRequest
	if err := decodeStruct(req, &createReq); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	createReq.Normalize()
	if err := validation.Struct(&createReq); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	task, err := s.taskService.CreateTask(ctx, &createReq)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.toStruct(ctx, task)
}

// UpdateTask - частичное обновление, id передается в том же сообщении
func (s *TaskServiceServer) UpdateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	taskId, err := taskIDFrom(req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	fields := make(map[string]*structpb.Value, len(req.GetFields()))
	for k, v := range req.GetFields() {
		if k != "id" {
			fields[k] = v
		}
	}

	var updateReq entity.UpdateTaskRequest
	if err := decodeStruct(&structpb.Struct{Fields: fields}, &updateReq); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	updateReq.Normalize()
	if err := validation.Struct(&updateReq); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	task, err := s.taskService.UpdateTask(ctx, taskId, &updateReq)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.toStruct(ctx, task)
}

// DeleteTask - удаление задачи
func (s *TaskServiceServer) DeleteTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	taskId, err := taskIDFrom(req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.taskService.DeleteTask(ctx, taskId); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.toStruct(ctx, map[string]any{
		"success": true,
		"message": locale.T(ctx, locale.MsgTaskDeleted),
		"hint":    locale.T(ctx, locale.MsgHintTaskDeleted, strconv.Itoa(taskId)),
	})
}

// GetStatistics - количество задач по статусам
func (s *TaskServiceServer) GetStatistics(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	stats, err := s.taskService.Statistics(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.toStruct(ctx, stats)
}

// Вспомогательный метод: ошибки домена в gRPC статусы с переведенным текстом
func (s *TaskServiceServer) toStatus(ctx context.Context, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, validationMessage(ctx, verr))
	case errors.Is(err, entity.ErrInvalidStatus):
		return status.Error(codes.InvalidArgument, validationMessage(ctx, validation.NewError(
			validation.Violation{Field: "status", Rule: validation.RuleStatus},
		)))
	case errors.Is(err, entity.ErrTaskNotFound):
		return status.Error(codes.NotFound, locale.T(ctx, locale.MsgTaskNotFound))
	default:
		s.logger.ErrorContext(ctx, "ошибка обработки gRPC запроса", "error", err)
		return status.Error(codes.Internal, locale.T(ctx, locale.MsgInternalError))
	}
}

func validationMessage(ctx context.Context, verr *validation.Error) string {
	parts := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		parts = append(parts, locale.Violation(ctx, v))
	}
	return locale.T(ctx, locale.MsgValidationFailed) + ": " + strings.Join(parts, "; ")
}

// toStruct сериализует значение через его json-теги
func (s *TaskServiceServer) toStruct(ctx context.Context, v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, s.toStatus(ctx, fmt.Errorf("marshal response: %w", err))
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, s.toStatus(ctx, fmt.Errorf("convert response: %w", err))
	}
	return out, nil
}

// decodeStruct раскладывает Struct в запрос теми же правилами, что и HTTP тело
func decodeStruct(in *structpb.Struct, dst any) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return validation.NewError(validation.Violation{Field: validation.FieldBody, Rule: validation.RuleJSON})
	}
	return validation.DecodeJSON(bytes.NewReader(raw), dst)
}

func taskIDFrom(req *structpb.Struct) (int, error) {
	invalid := validation.NewError(validation.Violation{Field: "id", Rule: validation.RuleInteger})

	v, ok := req.GetFields()["id"]
	if !ok {
		return 0, invalid
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, invalid
	}
	id := num.NumberValue
	if id < 1 || id != math.Trunc(id) || id > math.MaxInt32 {
		return 0, invalid
	}
	return int(id), nil
}
