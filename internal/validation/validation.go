// Package validation проверяет входящие запросы декларативными правилами
// (теги validate) и собирает нарушения по полям.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/go-playground/validator/v10"
)

const (
	RuleRequired = "required"
	RuleString   = "string"
	RuleMax      = "max"
	RuleStatus   = "status"
	RuleInteger  = "integer"
	RuleJSON     = "json"
	RuleType     = "type"
)

// FieldBody - нарушение относится к телу запроса целиком
const FieldBody = "body"

type Violation struct {
	Field string
	Rule  string
	Param string
}

// Error - ошибка валидации, нарушения в порядке обнаружения
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Rule)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Fields группирует нарушения по полю
func (e *Error) Fields() map[string][]Violation {
	out := make(map[string][]Violation, len(e.Violations))
	for _, v := range e.Violations {
		out[v.Field] = append(out[v.Field], v)
	}
	return out
}

func NewError(violations ...Violation) *Error {
	return &Error{Violations: violations}
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// в ошибках используем имена полей из json-тегов
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = validate.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
			return entity.TaskStatus(fl.Field().String()).IsValid()
		})
	})
	return validate
}

// Struct прогоняет теги validate и возвращает *Error или nil
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &Error{}
	for _, fe := range verrs {
		out.Violations = append(out.Violations, Violation{
			Field: fe.Field(),
			Rule:  ruleFor(fe.Tag()),
			Param: fe.Param(),
		})
	}
	return out
}

func ruleFor(tag string) string {
	switch tag {
	case "required", "min":
		// min=1 на опциональном title означает "передан, но пуст"
		return RuleRequired
	case "max":
		return RuleMax
	case "task_status":
		return RuleStatus
	default:
		return tag
	}
}

// DecodeJSON разбирает тело запроса. Пустое тело допустимо,
// синтаксические и типовые ошибки, а также мусор после JSON превращаются в *Error.
func DecodeJSON(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		// тело должно состоять ровно из одного JSON значения
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return NewError(Violation{Field: FieldBody, Rule: RuleJSON})
		}
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		rule := RuleType
		if typeErr.Type != nil && typeErr.Type.Kind() == reflect.String {
			rule = RuleString
		}
		return NewError(Violation{Field: typeErr.Field, Rule: rule})
	}

	return NewError(Violation{Field: FieldBody, Rule: RuleJSON})
}
