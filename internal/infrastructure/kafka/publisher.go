package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
)

// DefaultTopic receives sync events when no topic is configured.
const DefaultTopic = "catalog-synced"

// SyncEvent is the message published after each successful sync.
type SyncEvent struct {
	PageURL       string `json:"pageUrl"`
	DisplayName   string `json:"displayName"`
	ProductCount  int    `json:"productCount"`
	CategoryCount int    `json:"categoryCount"`
	LastSyncedAt  string `json:"lastSyncedAt"`
}

// Publisher announces syncs on a Kafka topic.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

var _ ports.Notifier = (*Publisher)(nil)

// NewSyncProducer dials the brokers with acks from all replicas.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("start kafka producer: %w", err)
	}
	return producer, nil
}

// NewPublisher wraps an existing producer.
func NewPublisher(producer sarama.SyncProducer, topic string, logger *slog.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

// PublishSync sends one event keyed by page identifier.
func (p *Publisher) PublishSync(ctx context.Context, summary domain.TransformSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := SyncEvent{
		ProductCount:  summary.ProductCount,
		CategoryCount: summary.CategoryCount,
		LastSyncedAt:  summary.LastSyncedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if summary.Store != nil {
		event.PageURL = summary.Store.PageURL
		event.DisplayName = summary.Store.DisplayName
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal sync event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.PageURL),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("write sync event: %w", err)
	}

	if p.logger != nil {
		p.logger.Debug("sync event published", "topic", p.topic, "partition", partition, "offset", offset)
	}
	return nil
}

// Close releases the producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
