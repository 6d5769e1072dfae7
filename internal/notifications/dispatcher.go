package notifications

import (
	"context"
	"time"

	"instaclone/pkg/logger"
)

// Dispatcher is the single entry point the rest of the application uses
// to send account emails. With a producer configured it queues through
// Kafka; otherwise it sends directly through the mail relay.
type Dispatcher struct {
	producer     EmailProducer
	emailService EmailService
	resetTTL     time.Duration
	log          *logger.Logger
}

func NewDispatcher(producer EmailProducer, emailService EmailService, resetTTL time.Duration, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		producer:     producer,
		emailService: emailService,
		resetTTL:     resetTTL,
		log:          log,
	}
}

// SendPasswordResetEmail satisfies the auth mailer contract.
func (d *Dispatcher) SendPasswordResetEmail(ctx context.Context, emailTo, username, token string) error {
	notification := NewEmailNotification(
		NotificationTypePasswordReset,
		emailTo,
		username,
		"Password recovery for user "+username,
		map[string]interface{}{
			"token":       token,
			"valid_hours": int(d.resetTTL.Hours()),
		},
	)
	return d.dispatch(ctx, notification)
}

// SendNewAccountEmail satisfies the users mailer contract.
func (d *Dispatcher) SendNewAccountEmail(ctx context.Context, emailTo, username string) error {
	notification := NewEmailNotification(
		NotificationTypeNewAccount,
		emailTo,
		username,
		"New account for user "+username,
		map[string]interface{}{
			"username": username,
		},
	)
	return d.dispatch(ctx, notification)
}

func (d *Dispatcher) dispatch(ctx context.Context, notification *EmailNotification) error {
	if d.producer != nil {
		return d.producer.Publish(ctx, notification)
	}
	return d.emailService.SendNotification(ctx, notification)
}
