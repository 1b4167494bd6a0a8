package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/St1cky1/task-api/internal/locale"
	"github.com/St1cky1/task-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	ids []int
	err error
}

func (s stubLister) ListTaskIds(ctx context.Context) ([]int, error) {
	return s.ids, s.err
}

func newTranslator(lister TaskIDLister) *ErrorTranslator {
	return NewErrorTranslator(lister, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newRequest(method, path, lang string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	tag, _ := locale.Parse(lang)
	return req.WithContext(locale.WithTag(req.Context(), tag))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRender_TaskNotFoundWithIds(t *testing.T) {
	tr := newTranslator(stubLister{ids: []int{1, 3}})
	rec := httptest.NewRecorder()

	tr.Render(rec, newRequest(http.MethodGet, "/api/tasks/2", "en"), fmt.Errorf("get: %w", entity.ErrTaskNotFound))

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Task not found", body["message"])
	assert.Equal(t, []any{float64(1), float64(3)}, body["available_ids"])
}

func TestRender_TaskNotFoundListerFails(t *testing.T) {
	tr := newTranslator(stubLister{err: errors.New("db down")})
	rec := httptest.NewRecorder()

	tr.Render(rec, newRequest(http.MethodGet, "/api/tasks/2", "en"), entity.ErrTaskNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{
		"success": false,
		"message": "Task not found",
		"hint": "Check the ID. The task may have been deleted.",
		"available_ids": []
	}`, rec.Body.String())
}

func TestRender_Validation(t *testing.T) {
	tr := newTranslator(stubLister{})
	rec := httptest.NewRecorder()

	verr := validation.NewError(
		validation.Violation{Field: "title", Rule: validation.RuleRequired},
		validation.Violation{Field: "title", Rule: validation.RuleMax, Param: "255"},
	)
	tr.Render(rec, newRequest(http.MethodPost, "/api/tasks", "ru"), verr)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Ошибка валидации", body["message"])

	errs := body["errors"].(map[string]any)
	assert.Len(t, errs["title"], 2)

	rules := body["validation_rules"].(map[string]any)
	assert.Len(t, rules, 3)
}

func TestRender_InvalidStatus(t *testing.T) {
	tr := newTranslator(stubLister{})
	rec := httptest.NewRecorder()

	tr.Render(rec, newRequest(http.MethodPost, "/api/tasks", "en"), entity.ErrInvalidStatus)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "status")
}

func TestRender_UnknownErrorIsInternal(t *testing.T) {
	tr := newTranslator(stubLister{})
	rec := httptest.NewRecorder()

	tr.Render(rec, newRequest(http.MethodGet, "/api/tasks", "en"), errors.New("boom"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestNotFound_PathShapes(t *testing.T) {
	tr := newTranslator(stubLister{ids: []int{4}})

	tests := []struct {
		path     string
		wantIds  bool
		wantText string
	}{
		{"/api/tasks/12", true, "Task not found"},
		{"/api/tasks/12/", true, "Task not found"},
		{"/api/tasks/abc", false, "Resource not found"},
		{"/api/tasks/12/extra", false, "Resource not found"},
		{"/api/other", false, "Resource not found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tr.NotFound(rec, newRequest(http.MethodGet, tt.path, "en"))

			require.Equal(t, http.StatusNotFound, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantText, body["message"])
			_, hasIds := body["available_ids"]
			assert.Equal(t, tt.wantIds, hasIds)
		})
	}
}

func TestRecoverer(t *testing.T) {
	tr := newTranslator(stubLister{})
	h := Recoverer(tr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newRequest(http.MethodGet, "/api/tasks", "en"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}
