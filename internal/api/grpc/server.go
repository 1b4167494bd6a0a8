package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/St1cky1/task-api/internal/locale"
	"github.com/St1cky1/task-api/internal/usecase"
	"golang.org/x/text/language"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// metadataLanguage - ключ метаданных с языком (аналог Accept-Language)
const metadataLanguage = "accept-language"

type GRPCServer struct {
	server        *grpc.Server
	defaultLocale language.Tag
	logger        *slog.Logger
}

func NewGRPCServer(taskService *usecase.TaskService, defaultLocale language.Tag, logger *slog.Logger) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &GRPCServer{
		defaultLocale: defaultLocale,
		logger:        logger.With("component", "grpc"),
	}

	s.server = grpc.NewServer(
		grpc.UnaryInterceptor(s.unaryInterceptor),
	)
	s.server.RegisterService(&taskServiceDesc, NewTaskServiceServer(taskService, s.logger))

	return s
}

func (s *GRPCServer) Start(port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.logger.Info("gRPC server listening", "port", port)
	return s.Serve(lis)
}

// Serve обслуживает уже открытый listener
func (s *GRPCServer) Serve(lis net.Listener) error {
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *GRPCServer) Stop() {
	if s.server != nil {
		s.server.GracefulStop()
	}
}

func (s *GRPCServer) unaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	tag := s.defaultLocale
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(metadataLanguage); len(values) > 0 {
			tag = locale.Resolve(values[0], s.defaultLocale)
		}
	}
	ctx = locale.WithTag(ctx, tag)

	resp, err := handler(ctx, req)

	s.logger.InfoContext(ctx, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
