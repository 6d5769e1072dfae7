package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"instaclone/pkg/logger"
)

// EmailConsumer drains the email queue and hands messages to the mail
// relay with bounded retries.
type EmailConsumer interface {
	Start(ctx context.Context) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	SessionTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

func DefaultConsumerConfig(brokers []string, groupID, topic string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topics:         []string{topic},
		SessionTimeout: 30 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   time.Second,
	}
}

type kafkaEmailConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	emailService  EmailService
	log           *logger.Logger
	cancel        context.CancelFunc
}

func NewKafkaEmailConsumer(config *ConsumerConfig, emailService EmailService, log *logger.Logger) (EmailConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaEmailConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		emailService:  emailService,
		log:           log,
	}, nil
}

func (c *kafkaEmailConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.consumerGroup.Errors() {
			c.log.ErrorWithContext(context.Background(), "consumer group error", err, nil)
		}
	}()

	go func() {
		handler := &emailConsumerHandler{
			emailService: c.emailService,
			maxRetries:   c.config.MaxRetries,
			retryBackoff: c.config.RetryBackoff,
			log:          c.log,
		}
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
					c.log.ErrorWithContext(ctx, "error consuming messages", err, nil)
					time.Sleep(time.Second)
				}
			}
		}
	}()

	return nil
}

func (c *kafkaEmailConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type emailConsumerHandler struct {
	emailService EmailService
	maxRetries   int
	retryBackoff time.Duration
	log          *logger.Logger
}

func (h *emailConsumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *emailConsumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *emailConsumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				h.log.ErrorWithContext(session.Context(), "failed to process email notification", err,
					map[string]interface{}{"offset": message.Offset})
			}
			// Mark regardless: a notification that exhausted its retries
			// is dropped, not replayed forever.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *emailConsumerHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notification EmailNotification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	notification.Status = NotificationStatusSending

	var err error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		err = h.emailService.SendNotification(ctx, &notification)
		if err == nil {
			notification.MarkSent()
			return nil
		}
		if attempt == h.maxRetries {
			break
		}

		delay := h.retryBackoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	notification.MarkFailed(err)
	return err
}
