package locale

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/St1cky1/task-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		header string
		want   language.Tag
	}{
		{"en", English},
		{"ru", Russian},
		{" EN ", English},
		{"", Russian},
		{"de", Russian},
		{"en-US,en;q=0.9", Russian},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(tt.header, Russian), "header %q", tt.header)
	}
	assert.Equal(t, English, Resolve("fr", English))
}

func TestMiddlewareStoresTagInContext(t *testing.T) {
	var got language.Tag
	h := Middleware(Russian)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderAcceptLanguage, "en")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, English, got)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
}

func TestFromContextDefault(t *testing.T) {
	assert.Equal(t, Default, FromContext(context.Background()))
}

func TestTranslate(t *testing.T) {
	en := WithTag(context.Background(), English)
	ru := WithTag(context.Background(), Russian)

	assert.Equal(t, "Task created successfully", T(en, MsgTaskCreated))
	assert.Equal(t, "Задача успешно создана", T(ru, MsgTaskCreated))
	assert.Equal(t, "Task with ID 1500 no longer exists in the database", T(en, MsgHintTaskDeleted, "1500"))
}

func TestEveryMessageHasBothLanguages(t *testing.T) {
	for key, tr := range messages {
		assert.NotEmpty(t, tr.en, key)
		assert.NotEmpty(t, tr.ru, key)
	}
}

func TestDescribeStatus(t *testing.T) {
	en := WithTag(context.Background(), English)
	assert.Equal(t, "Task is in progress", DescribeStatus(en, entity.StatusInProgress))

	descriptions := StatusDescriptions(WithTag(context.Background(), Russian))
	assert.Len(t, descriptions, 3)
	assert.Equal(t, "Задача завершена", descriptions["completed"])
}

func TestValidationRules(t *testing.T) {
	rules := ValidationRules(WithTag(context.Background(), English))
	assert.Equal(t, "Optional field, one of: pending, in_progress, completed", rules["status"])
	assert.Contains(t, rules, "title")
	assert.Contains(t, rules, "description")
}

func TestViolations(t *testing.T) {
	ctx := WithTag(context.Background(), Russian)
	err := validation.NewError(
		validation.Violation{Field: "title", Rule: validation.RuleRequired},
		validation.Violation{Field: "title", Rule: validation.RuleMax, Param: "255"},
	)

	got := Violations(ctx, err)
	require.Len(t, got["title"], 2)
	assert.Equal(t, `Поле "title" обязательно для заполнения`, got["title"][0])
	assert.Equal(t, `Поле "title" не должно превышать 255 символов`, got["title"][1])
}
