package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/St1cky1/task-api/internal/api"
	grpcapi "github.com/St1cky1/task-api/internal/api/grpc"
	"github.com/St1cky1/task-api/internal/config"
	"github.com/St1cky1/task-api/internal/infrastructure/client"
	"github.com/St1cky1/task-api/internal/repository"
	"github.com/St1cky1/task-api/internal/usecase"
	"github.com/St1cky1/task-api/internal/worker"
	gfshutdown "github.com/gelmium/graceful-shutdown"
)

type storage struct {
	taskRepo  repository.ITaskRepository
	auditRepo repository.ITaskAuditRepository
	health    func(ctx context.Context) error
	close     func()
}

func main() {
	configPath := flag.String("config", os.Getenv("TASKS_CONFIG"), "path to config file (yaml, json, toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Подключаемся к хранилищу
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("❌ Ошибка подключения к хранилищу", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}

	// Подключаемся к брокеру аудита
	publisher, rabbitMQ, closePublisher, err := openPublisher(cfg)
	if err != nil {
		logger.Error("❌ Ошибка подключения к брокеру", "driver", cfg.Events.Driver, "error", err)
		store.close()
		os.Exit(1)
	}

	// Инициализируем сервисы
	taskService := usecase.NewTaskService(store.taskRepo, publisher, logger)

	var wg sync.WaitGroup

	// Запускаем воркер для обработки аудит-сообщений
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	if rabbitMQ != nil && cfg.Audit.WorkerEnabled {
		auditWorker := worker.NewAuditWorker(rabbitMQ, store.auditRepo, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := auditWorker.Start(workerCtx); err != nil {
				logger.Error("❌ Audit worker error", "error", err)
			}
		}()
	}

	// HTTP сервер
	httpServer := &http.Server{
		Addr: ":" + cfg.HTTP.Port,
		Handler: api.NewRouter(taskService, api.RouterOptions{
			DefaultLocale: cfg.DefaultLocale(),
			Logger:        logger,
			HealthCheck:   store.health,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Запуск HTTP сервера", "port", cfg.HTTP.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("❌ HTTP server error", "error", err)
		}
	}()

	// gRPC сервер
	var grpcServer *grpcapi.GRPCServer
	if cfg.GRPC.Enabled {
		grpcServer = grpcapi.NewGRPCServer(taskService, cfg.DefaultLocale(), logger)
		go func() {
			if err := grpcServer.Start(cfg.GRPC.Port); err != nil {
				logger.Error("❌ gRPC server error", "error", err)
			}
		}()
	}

	logger.Info("✅ Сервис готов к работе",
		"http", "http://localhost:"+cfg.HTTP.Port+"/api",
		"grpc_enabled", cfg.GRPC.Enabled,
		"db_driver", cfg.DB.Driver,
		"events_driver", cfg.Events.Driver,
	)

	// Ждем сигнал завершения
	wait := gfshutdown.GracefulShutdown(ctx, cfg.Shutdown.Timeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
		"grpc-server": func(ctx context.Context) error {
			if grpcServer != nil {
				grpcServer.Stop()
			}
			return nil
		},
		"audit-worker": func(ctx context.Context) error {
			workerCancel()
			wg.Wait()
			return nil
		},
	})

	exitCode := <-wait

	// Соединения закрываем после остановки серверов
	closePublisher()
	store.close()

	logger.Info("Приложение завершено", "exit_code", exitCode)
	os.Exit(exitCode)
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.DB.Driver {
	case config.DBDriverSQLite:
		db, err := client.NewSQLiteClient(cfg.DB.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("✅ Подключение к SQLite установлено", "path", cfg.DB.SQLitePath)
		return &storage{
			taskRepo:  repository.NewGormTaskRepository(db),
			auditRepo: repository.NewGormTaskAuditRepository(db),
			health: func(ctx context.Context) error {
				return client.PingSQLite(ctx, db)
			},
			close: func() {
				if err := client.CloseSQLite(db); err != nil {
					logger.Error("ошибка закрытия SQLite", "error", err)
				}
			},
		}, nil

	default:
		pgCfg := client.PostgresConfig{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			DBName:   cfg.DB.Name,
			SSLMode:  cfg.DB.SSLMode,
		}

		// Запускаем миграции
		if err := client.RunMigrations(cfg.DB.MigrationsPath, pgCfg); err != nil {
			return nil, err
		}
		logger.Info("✅ Миграции выполнены успешно")

		pg, err := client.NewPostgresClient(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		logger.Info("✅ Подключение к БД установлено", "host", cfg.DB.Host, "db", cfg.DB.Name)

		return &storage{
			taskRepo:  repository.NewTaskRepository(pg.Pool),
			auditRepo: repository.NewTaskAuditRepository(pg.Pool),
			health:    pg.HealthCheck,
			close:     pg.Close,
		}, nil
	}
}

// openPublisher возвращает publisher аудита; rabbitMQ не nil, только если выбран RabbitMQ
func openPublisher(cfg *config.Config) (usecase.AuditPublisher, *client.RabbitMQClient, func(), error) {
	switch cfg.Events.Driver {
	case config.EventsDriverRabbitMQ:
		rabbitMQ, err := client.NewRabbitMQClient(cfg.Events.RabbitMQ.URL, cfg.Events.RabbitMQ.Queue)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("✅ Подключение к RabbitMQ установлено", "queue", rabbitMQ.QueueName())
		return rabbitMQ, rabbitMQ, func() { _ = rabbitMQ.Close() }, nil

	case config.EventsDriverKafka:
		producer := client.NewKafkaProducer(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic)
		slog.Info("✅ Kafka producer создан", "brokers", cfg.Events.Kafka.Brokers, "topic", cfg.Events.Kafka.Topic)
		return producer, nil, func() { _ = producer.Close() }, nil

	default:
		return nil, nil, func() {}, nil
	}
}
