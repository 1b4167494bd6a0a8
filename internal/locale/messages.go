package locale

import (
	"context"
	"strings"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/St1cky1/task-api/internal/validation"
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

const (
	MsgTaskListRetrieved   = "success.task_list_retrieved"
	MsgTaskCreated         = "success.task_created"
	MsgTaskRetrieved       = "success.task_retrieved"
	MsgTaskUpdated         = "success.task_updated"
	MsgTaskDeleted         = "success.task_deleted"
	MsgStatisticsRetrieved = "success.statistics_retrieved"

	MsgTaskNotFound         = "error.task_not_found"
	MsgTaskNotFoundHint     = "error.task_not_found_hint"
	MsgResourceNotFound     = "error.resource_not_found"
	MsgResourceNotFoundHint = "error.resource_not_found_hint"
	MsgValidationFailed     = "error.validation_failed"
	MsgValidationHint       = "error.validation_hint"
	MsgInternalError        = "error.internal_error"
	MsgInternalErrorHint    = "error.internal_error_hint"
	MsgMethodNotAllowed     = "error.method_not_allowed"
	MsgMethodNotAllowedHint = "error.method_not_allowed_hint"
	MsgHintTaskDeleted      = "hint.task_deleted"
	MsgAPIDescription       = "api.description"
	MsgRuleTitle            = "validation_rules.title"
	MsgRuleDescription      = "validation_rules.description"
	MsgRuleStatus           = "validation_rules.status"
	msgViolationRequired    = "validation.required"
	msgViolationString      = "validation.string"
	msgViolationMax         = "validation.max"
	msgViolationStatus      = "validation.status"
	msgViolationInteger     = "validation.integer"
	msgViolationJSON        = "validation.json"
	msgViolationType        = "validation.type"
	msgStatusPrefix         = "status."
)

type translation struct {
	en, ru string
}

var messages = map[string]translation{
	MsgTaskListRetrieved:   {"Task list retrieved successfully", "Список задач успешно получен"},
	MsgTaskCreated:         {"Task created successfully", "Задача успешно создана"},
	MsgTaskRetrieved:       {"Task retrieved successfully", "Задача успешно получена"},
	MsgTaskUpdated:         {"Task updated successfully", "Задача успешно обновлена"},
	MsgTaskDeleted:         {"Task deleted successfully", "Задача успешно удалена"},
	MsgStatisticsRetrieved: {"Task statistics retrieved successfully", "Статистика задач успешно получена"},

	MsgTaskNotFound:         {"Task not found", "Задача не найдена"},
	MsgTaskNotFoundHint:     {"Check the ID. The task may have been deleted.", "Проверьте ID. Возможно, задача была удалена."},
	MsgResourceNotFound:     {"Resource not found", "Ресурс не найден"},
	MsgResourceNotFoundHint: {"Check the ID", "Проверьте ID"},
	MsgValidationFailed:     {"Validation failed", "Ошибка валидации"},
	MsgValidationHint:       {"Check the input fields", "Проверьте поля запроса"},
	MsgInternalError:        {"Internal server error", "Внутренняя ошибка сервера"},
	MsgInternalErrorHint:    {"Please try again later", "Попробуйте повторить запрос позже"},
	MsgMethodNotAllowed:     {"Method not allowed", "Метод не поддерживается"},
	MsgMethodNotAllowedHint: {"Check the HTTP method for this URL", "Проверьте HTTP-метод для этого адреса"},

	MsgHintTaskDeleted: {"Task with ID %s no longer exists in the database", "Задача с ID %s больше не существует в базе данных"},
	MsgAPIDescription:  {"Simple REST API for managing tasks", "Простой REST API для управления задачами"},

	MsgRuleTitle:       {"Required field, string, maximum 255 characters", "Обязательное поле, строка, максимум 255 символов"},
	MsgRuleDescription: {"Optional field, string", "Необязательное поле, строка"},
	MsgRuleStatus:      {"Optional field, one of: %s", "Необязательное поле, одно из: %s"},

	msgViolationRequired: {`The "%s" field is required`, `Поле "%s" обязательно для заполнения`},
	msgViolationString:   {`The "%s" field must be a string`, `Поле "%s" должно быть строкой`},
	msgViolationMax:      {`The "%s" field must not exceed %s characters`, `Поле "%s" не должно превышать %s символов`},
	msgViolationStatus:   {`The "%s" field must be one of: %s`, `Поле "%s" должно быть одним из: %s`},
	msgViolationInteger:  {`The "%s" field must be a positive integer`, `Поле "%s" должно быть положительным целым числом`},
	msgViolationJSON:     {"The request body must be valid JSON", "Тело запроса должно быть корректным JSON"},
	msgViolationType:     {`The "%s" field has an invalid type`, `Поле "%s" имеет неверный тип`},

	msgStatusPrefix + string(entity.StatusPending):    {"Task is pending", "Задача в ожидании"},
	msgStatusPrefix + string(entity.StatusInProgress): {"Task is in progress", "Задача в работе"},
	msgStatusPrefix + string(entity.StatusCompleted):  {"Task is completed", "Задача завершена"},
}

var messageCatalog = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(Default))
	for key, tr := range messages {
		if err := b.SetString(language.English, key, tr.en); err != nil {
			panic(err)
		}
		if err := b.SetString(language.Russian, key, tr.ru); err != nil {
			panic(err)
		}
	}
	return b
}

// DescribeStatus - человекочитаемое описание статуса
func DescribeStatus(ctx context.Context, status entity.TaskStatus) string {
	return T(ctx, msgStatusPrefix+string(status))
}

// StatusDescriptions - все статусы с описаниями
func StatusDescriptions(ctx context.Context) map[string]string {
	out := make(map[string]string)
	for _, s := range entity.Statuses() {
		out[string(s)] = DescribeStatus(ctx, s)
	}
	return out
}

// ValidationRules - подсказка для клиента по правилам каждого поля
func ValidationRules(ctx context.Context) map[string]string {
	return map[string]string{
		"title":       T(ctx, MsgRuleTitle),
		"description": T(ctx, MsgRuleDescription),
		"status":      T(ctx, MsgRuleStatus, strings.Join(entity.StatusValues(), ", ")),
	}
}

// Violation переводит одно нарушение валидации
func Violation(ctx context.Context, v validation.Violation) string {
	switch v.Rule {
	case validation.RuleRequired:
		return T(ctx, msgViolationRequired, v.Field)
	case validation.RuleString:
		return T(ctx, msgViolationString, v.Field)
	case validation.RuleMax:
		return T(ctx, msgViolationMax, v.Field, v.Param)
	case validation.RuleStatus:
		return T(ctx, msgViolationStatus, v.Field, strings.Join(entity.StatusValues(), ", "))
	case validation.RuleInteger:
		return T(ctx, msgViolationInteger, v.Field)
	case validation.RuleJSON:
		return T(ctx, msgViolationJSON)
	default:
		return T(ctx, msgViolationType, v.Field)
	}
}

// Violations - нарушения, сгруппированные по полю, уже переведенные
func Violations(ctx context.Context, err *validation.Error) map[string][]string {
	out := make(map[string][]string)
	for field, violations := range err.Fields() {
		for _, v := range violations {
			out[field] = append(out[field], Violation(ctx, v))
		}
	}
	return out
}
