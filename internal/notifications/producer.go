package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"boletamaster/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher emits domain events once the operation behind them has committed.
// Publishing is best effort: callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Close() error
}

// KafkaPublisherConfig contains configuration for the Kafka domain event producer
type KafkaPublisherConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

func DefaultKafkaPublisherConfig() *KafkaPublisherConfig {
	return &KafkaPublisherConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "marketplace-events",
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// KafkaPublisher writes domain events to one topic, keyed by catalog event
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(config *KafkaPublisherConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, config.Topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer, e.g. sarama/mocks
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event DomainEvent) error {
	value, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal domain event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(value),
		Headers:   headersFor(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send domain event to Kafka: %w", err)
	}

	logger.GetDefault().DebugContext(ctx, "domain event published",
		slog.String("type", string(event.Type)),
		slog.String("topic", p.topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

func headersFor(event DomainEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("actor"), Value: []byte(event.Actor)},
		{Key: []byte("producer"), Value: []byte("boletamaster-marketplace")},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}
}

// LogPublisher is used when Kafka is disabled. It logs every event and, given
// a repository, records the activity directly instead of via the consumer.
type LogPublisher struct {
	activity Repository
}

func NewLogPublisher(activity Repository) *LogPublisher {
	return &LogPublisher{activity: activity}
}

func (p *LogPublisher) Publish(ctx context.Context, event DomainEvent) error {
	logger.GetDefault().InfoContext(ctx, "domain event",
		slog.String("type", string(event.Type)),
		slog.String("actor", event.Actor),
		slog.Any("subjects", event.Subjects),
	)
	if p.activity == nil {
		return nil
	}
	return p.activity.Save(ctx, RecordsFor(event))
}

func (p *LogPublisher) Close() error { return nil }
