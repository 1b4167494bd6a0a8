package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/St1cky1/task-api/internal/entity"
	"github.com/segmentio/kafka-go"
)

// KafkaProducer публикует аудит в топик Kafka, ключ - id задачи
type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaProducer) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal audit message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(message.EntityID)),
		Value: body,
		Time:  message.Timestamp,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(message.Action)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
