package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/St1cky1/task-api/internal/locale"
	"github.com/St1cky1/task-api/internal/validation"
)

// errResourceNotFound - маршрут совпал, но ресурс адресован некорректно (например, /tasks/abc)
var errResourceNotFound = errors.New("resource not found")

// путь вида /api/tasks/{число}
var taskPathPattern = regexp.MustCompile(`^` + regexp.QuoteMeta(APIPrefix) + `/tasks/\d+/?$`)

// TaskIDLister отдает список существующих id для подсказки в 404
type TaskIDLister interface {
	ListTaskIds(ctx context.Context) ([]int, error)
}

// ErrorTranslator - единая точка превращения ошибок в JSON-ответы
type ErrorTranslator struct {
	ids    TaskIDLister
	logger *slog.Logger
}

func NewErrorTranslator(ids TaskIDLister, logger *slog.Logger) *ErrorTranslator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorTranslator{ids: ids, logger: logger}
}

// Render пишет ответ для ошибки обработчика
func (t *ErrorTranslator) Render(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		t.validationFailed(w, r, verr)
	case errors.Is(err, entity.ErrInvalidStatus):
		t.validationFailed(w, r, validation.NewError(validation.Violation{
			Field: "status",
			Rule:  validation.RuleStatus,
		}))
	case errors.Is(err, entity.ErrTaskNotFound):
		t.taskNotFound(w, r)
	case errors.Is(err, errResourceNotFound):
		t.resourceNotFound(w, r)
	default:
		t.logger.ErrorContext(r.Context(), "ошибка обработки запроса",
			"method", r.Method, "path", r.URL.Path, "error", err)
		t.Internal(w, r)
	}
}

// NotFound - обработчик для несуществующих маршрутов
func (t *ErrorTranslator) NotFound(w http.ResponseWriter, r *http.Request) {
	if taskPathPattern.MatchString(r.URL.Path) {
		t.taskNotFound(w, r)
		return
	}
	t.resourceNotFound(w, r)
}

func (t *ErrorTranslator) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Success: false,
		Message: locale.T(ctx, locale.MsgMethodNotAllowed),
		Hint:    locale.T(ctx, locale.MsgMethodNotAllowedHint),
	})
}

func (t *ErrorTranslator) Internal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Success: false,
		Message: locale.T(ctx, locale.MsgInternalError),
		Hint:    locale.T(ctx, locale.MsgInternalErrorHint),
	})
}

func (t *ErrorTranslator) validationFailed(w http.ResponseWriter, r *http.Request, verr *validation.Error) {
	ctx := r.Context()
	writeJSON(w, http.StatusUnprocessableEntity, validationErrorResponse{
		Success:         false,
		Message:         locale.T(ctx, locale.MsgValidationFailed),
		Hint:            locale.T(ctx, locale.MsgValidationHint),
		Errors:          locale.Violations(ctx, verr),
		ValidationRules: locale.ValidationRules(ctx),
	})
}

func (t *ErrorTranslator) taskNotFound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// ошибка получения id не должна ломать ответ 404
	ids, err := t.ids.ListTaskIds(ctx)
	if err != nil {
		t.logger.WarnContext(ctx, "не удалось получить список id задач", "error", err)
		ids = nil
	}
	if ids == nil {
		ids = []int{}
	}

	writeJSON(w, http.StatusNotFound, taskNotFoundResponse{
		Success:      false,
		Message:      locale.T(ctx, locale.MsgTaskNotFound),
		Hint:         locale.T(ctx, locale.MsgTaskNotFoundHint),
		AvailableIds: ids,
	})
}

func (t *ErrorTranslator) resourceNotFound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusNotFound, errorResponse{
		Success: false,
		Message: locale.T(ctx, locale.MsgResourceNotFound),
		Hint:    locale.T(ctx, locale.MsgResourceNotFoundHint),
	})
}
