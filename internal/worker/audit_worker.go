package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/St1cky1/task-api/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "audit_worker"

// AuditConsumer - источник сообщений аудита (RabbitMQ клиент)
type AuditConsumer interface {
	Consume(ctx context.Context, consumerTag string) (<-chan amqp.Delivery, error)
}

type AuditWorker struct {
	consumer  AuditConsumer
	auditRepo repository.ITaskAuditRepository
	logger    *slog.Logger
}

func NewAuditWorker(consumer AuditConsumer, auditRepo repository.ITaskAuditRepository, logger *slog.Logger) *AuditWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditWorker{
		consumer:  consumer,
		auditRepo: auditRepo,
		logger:    logger.With("component", "audit_worker"),
	}
}

// Start читает очередь до отмены ctx или закрытия канала
func (w *AuditWorker) Start(ctx context.Context) error {
	msgs, err := w.consumer.Consume(ctx, consumerTag)
	if err != nil {
		return fmt.Errorf("start audit consumer: %w", err)
	}

	w.logger.Info("audit worker запущен, ожидаем сообщения")

	// Обрабатываем сообщения
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("audit worker остановлен")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Info("канал сообщений закрыт")
				return nil
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	w.logger.Debug("получено сообщение", "message_id", msg.MessageId, "body", string(msg.Body))

	// 1. Парсим сообщение
	var auditMsg entity.AuditMessage
	if err := json.Unmarshal(msg.Body, &auditMsg); err != nil {
		w.logger.Error("ошибка парсинга сообщения", "error", err)
		_ = msg.Nack(false, false) // Не возвращаем в очередь
		return
	}

	// 2. Конвертируем в TaskAudit
	taskAudit, err := convertToTaskAudit(&auditMsg)
	if err != nil {
		w.logger.Error("ошибка конвертации", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	// 3. Сохраняем в БД
	if err := w.auditRepo.Create(ctx, taskAudit); err != nil {
		w.logger.Error("ошибка сохранения аудита", "error", err)
		_ = msg.Nack(false, true) // Возвращаем в очередь для повторной обработки
		return
	}

	// 4. Подтверждаем обработку
	_ = msg.Ack(false)
	w.logger.Info("аудит сохранен", "action", taskAudit.Action, "task_id", taskAudit.EntityID)
}

func convertToTaskAudit(msg *entity.AuditMessage) (*entity.TaskAudit, error) {
	if msg.Action != entity.ActionCreate && msg.Action != entity.ActionUpdate && msg.Action != entity.ActionDelete {
		return nil, fmt.Errorf("unknown audit action %q", msg.Action)
	}

	oldValues, err := marshalOptional(msg.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := marshalOptional(msg.NewValues)
	if err != nil {
		return nil, err
	}
	changes, err := marshalOptional(msg.Changes)
	if err != nil {
		return nil, err
	}

	return &entity.TaskAudit{
		Action:     msg.Action,
		EntityType: "task",
		EntityID:   msg.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Changes:    changes,
		ChangedAt:  msg.Timestamp,
	}, nil
}

// map[string]any в JSON строку, nil остается nil
func marshalOptional(values map[string]any) (*string, error) {
	if values == nil {
		return nil, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}
