package validation

import (
	"strings"
	"testing"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func violations(t *testing.T, err error) map[string][]Violation {
	t.Helper()
	var verr *Error
	require.ErrorAs(t, err, &verr)
	return verr.Fields()
}

func TestCreateRequestRules(t *testing.T) {
	require.NoError(t, Struct(&entity.CreateTaskRequest{Title: "Buy milk"}))
	require.NoError(t, Struct(&entity.CreateTaskRequest{Title: "Buy milk", Status: entity.StatusCompleted}))

	fields := violations(t, Struct(&entity.CreateTaskRequest{}))
	require.Len(t, fields["title"], 1)
	assert.Equal(t, RuleRequired, fields["title"][0].Rule)

	fields = violations(t, Struct(&entity.CreateTaskRequest{Title: strings.Repeat("я", 256)}))
	assert.Equal(t, RuleMax, fields["title"][0].Rule)
	assert.Equal(t, "255", fields["title"][0].Param)

	fields = violations(t, Struct(&entity.CreateTaskRequest{Title: "x", Status: "bogus"}))
	assert.Equal(t, RuleStatus, fields["status"][0].Rule)
}

func TestTitleLengthCountsRunes(t *testing.T) {
	require.NoError(t, Struct(&entity.CreateTaskRequest{Title: strings.Repeat("я", 255)}))
}

func TestUpdateRequestRules(t *testing.T) {
	require.NoError(t, Struct(&entity.UpdateTaskRequest{}))

	empty := ""
	fields := violations(t, Struct(&entity.UpdateTaskRequest{Title: &empty}))
	assert.Equal(t, RuleRequired, fields["title"][0].Rule)

	bogus := entity.TaskStatus("bogus")
	fields = violations(t, Struct(&entity.UpdateTaskRequest{Status: &bogus}))
	assert.Equal(t, RuleStatus, fields["status"][0].Rule)
}

func TestDecodeJSON(t *testing.T) {
	var req entity.CreateTaskRequest
	require.NoError(t, DecodeJSON(strings.NewReader(""), &req))

	fields := violations(t, DecodeJSON(strings.NewReader("{broken"), &req))
	assert.Equal(t, RuleJSON, fields[FieldBody][0].Rule)

	fields = violations(t, DecodeJSON(strings.NewReader(`{"title": 12}`), &req))
	assert.Equal(t, RuleString, fields["title"][0].Rule)

	for _, body := range []string{`{"title":"a"} x`, `{"title":"a"}{"title":"b"}`, `{"title":"a"} 1`} {
		fields = violations(t, DecodeJSON(strings.NewReader(body), &req))
		assert.Equal(t, RuleJSON, fields[FieldBody][0].Rule, body)
	}
	require.NoError(t, DecodeJSON(strings.NewReader("{\"title\":\"a\"}\n  "), &req))

	var upd entity.UpdateTaskRequest
	fields = violations(t, DecodeJSON(strings.NewReader(`{"status": true}`), &upd))
	assert.Equal(t, RuleString, fields["status"][0].Rule)
}
