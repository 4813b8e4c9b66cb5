package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"boletamaster/pkg/logger"
	"boletamaster/pkg/metrics"

	"github.com/IBM/sarama"
)

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeout       time.Duration
	Heartbeat            time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "activity-log",
		Topics:               []string{"marketplace-events"},
		SessionTimeout:       30 * time.Second,
		Heartbeat:            3 * time.Second,
		OffsetOldest:         true,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// ActivityConsumer persists published domain events as per-user activity
type ActivityConsumer struct {
	group  sarama.ConsumerGroup
	config *ConsumerConfig
	repo   Repository
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewActivityConsumer(config *ConsumerConfig, repo Repository) (*ActivityConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	return &ActivityConsumer{group: group, config: config, repo: repo}, nil
}

// Start consumes in the background until Stop is called or ctx ends
func (c *ActivityConsumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	handler := &activityHandler{repo: c.repo, maxRetries: c.config.MaxRetries, backoff: c.config.RetryBackoffDuration}

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			logger.GetDefault().Error("activity consumer group error", slog.String("error", err.Error()))
		}
	}()
	go func() {
		defer c.wg.Done()
		for {
			if err := c.group.Consume(ctx, c.config.Topics, handler); err != nil {
				logger.GetDefault().Error("activity consumer error", slog.String("error", err.Error()))
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	logger.GetDefault().Info("activity consumer started", slog.Any("topics", c.config.Topics))
}

func (c *ActivityConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.group.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

// activityHandler implements sarama.ConsumerGroupHandler
type activityHandler struct {
	repo       Repository
	maxRetries int
	backoff    time.Duration
}

func (h *activityHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *activityHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *activityHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				metrics.TrackActivityMessage("failed")
				logger.GetDefault().Error("failed to record activity",
					slog.String("error", err.Error()),
					slog.Int64("offset", message.Offset),
				)
			} else {
				metrics.TrackActivityMessage("recorded")
			}
			// a poison message must not stall the partition
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *activityHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	event, err := FromJSON(message.Value)
	if err != nil {
		return fmt.Errorf("failed to unmarshal domain event: %w", err)
	}
	records := RecordsFor(event)

	for attempt := 0; ; attempt++ {
		err = h.repo.Save(ctx, records)
		if err == nil || attempt >= h.maxRetries {
			return err
		}
		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
