package api

import (
	"context"
	"log/slog"

	"github.com/St1cky1/task-api/internal/api/handlers"
	"github.com/St1cky1/task-api/internal/locale"
	"github.com/St1cky1/task-api/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"
)

type RouterOptions struct {
	DefaultLocale language.Tag
	Logger        *slog.Logger
	// HealthCheck проверяет хранилище для GET /up, может быть nil
	HealthCheck func(ctx context.Context) error
}

func NewRouter(taskService *usecase.TaskService, opts RouterOptions) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	translator := handlers.NewErrorTranslator(taskService, logger)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger(logger))
	r.Use(locale.Middleware(opts.DefaultLocale))
	r.Use(handlers.Recoverer(translator))

	r.NotFound(translator.NotFound)
	r.MethodNotAllowed(translator.MethodNotAllowed)

	taskHandler := handlers.NewTaskHandler(taskService, translator)

	r.Get("/up", handlers.Health(opts.HealthCheck))

	r.Route(handlers.APIPrefix, func(r chi.Router) {
		r.Get("/", taskHandler.APIInfo)
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Get("/statistics", taskHandler.Statistics)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Post("/start", taskHandler.StartTask)
				r.Post("/pause", taskHandler.PauseTask)
				r.Post("/complete", taskHandler.CompleteTask)
			})
		})
	})

	return r
}
