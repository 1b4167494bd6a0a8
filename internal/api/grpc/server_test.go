package grpc

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/St1cky1/task-api/internal/infrastructure/client"
	"github.com/St1cky1/task-api/internal/locale"
	"github.com/St1cky1/task-api/internal/repository"
	"github.com/St1cky1/task-api/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func setupClient(t *testing.T) *grpc.ClientConn {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := client.NewSQLiteClient(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.CloseSQLite(db) })
	service := usecase.NewTaskService(repository.NewGormTaskRepository(db), nil, logger)
	server := NewGRPCServer(service, locale.Russian, logger)

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	t.Helper()

	req, err := structpb.NewStruct(in)
	require.NoError(t, err)

	out := &structpb.Struct{}
	err = conn.Invoke(ctx, "/"+TaskServiceName+"/"+method, req, out)
	return out, err
}

func TestGRPC_CreateGetUpdateDelete(t *testing.T) {
	conn := setupClient(t)
	ctx := context.Background()

	created, err := invoke(t, conn, ctx, "CreateTask", map[string]any{"title": "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Fields["title"].GetStringValue())
	assert.Equal(t, "pending", created.Fields["status"].GetStringValue())
	id := created.Fields["id"].GetNumberValue()

	got, err := invoke(t, conn, ctx, "GetTask", map[string]any{"id": id})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Fields["title"].GetStringValue())

	updated, err := invoke(t, conn, ctx, "UpdateTask", map[string]any{"id": id, "status": "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Fields["status"].GetStringValue())
	assert.Equal(t, "Buy milk", updated.Fields["title"].GetStringValue())

	stats, err := invoke(t, conn, ctx, "GetStatistics", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, float64(1), stats.Fields["completed"].GetNumberValue())
	assert.Equal(t, float64(1), stats.Fields["total"].GetNumberValue())

	deleted, err := invoke(t, conn, ctx, "DeleteTask", map[string]any{"id": id})
	require.NoError(t, err)
	assert.True(t, deleted.Fields["success"].GetBoolValue())

	_, err = invoke(t, conn, ctx, "GetTask", map[string]any{"id": id})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPC_ListTasks(t *testing.T) {
	conn := setupClient(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b"} {
		_, err := invoke(t, conn, ctx, "CreateTask", map[string]any{"title": title})
		require.NoError(t, err)
	}

	list, err := invoke(t, conn, ctx, "ListTasks", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, float64(2), list.Fields["count"].GetNumberValue())
	assert.Len(t, list.Fields["tasks"].GetListValue().GetValues(), 2)

	list, err = invoke(t, conn, ctx, "ListTasks", map[string]any{"status": "completed"})
	require.NoError(t, err)
	assert.Equal(t, float64(0), list.Fields["count"].GetNumberValue())
}

func TestGRPC_InvalidArguments(t *testing.T) {
	conn := setupClient(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		method string
		in     map[string]any
	}{
		{"missing title", "CreateTask", map[string]any{}},
		{"bogus status", "CreateTask", map[string]any{"title": "x", "status": "bogus"}},
		{"missing id", "GetTask", map[string]any{}},
		{"fractional id", "GetTask", map[string]any{"id": 1.5}},
		{"string id", "DeleteTask", map[string]any{"id": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invoke(t, conn, ctx, tt.method, tt.in)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestGRPC_LocaleFromMetadata(t *testing.T) {
	conn := setupClient(t)

	_, err := invoke(t, conn, context.Background(), "GetTask", map[string]any{"id": 42})
	assert.Equal(t, "Задача не найдена", status.Convert(err).Message())

	ctx := metadata.AppendToOutgoingContext(context.Background(), "accept-language", "en")
	_, err = invoke(t, conn, ctx, "GetTask", map[string]any{"id": 42})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, "Task not found", status.Convert(err).Message())
}
