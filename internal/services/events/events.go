// Package events publishes domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"iprofit/internal/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subjects
const (
	TransactionApproved  = "transaction.approved"
	TransactionRejected  = "transaction.rejected"
	TransactionProcessed = "transaction.processing"
	TransactionCompleted = "transaction.completed"
	TransactionFailed    = "transaction.failed"
	LoanApproved         = "loan.approved"
	LoanRejected         = "loan.rejected"
	LoanDisbursed        = "loan.disbursed"
	LoanRepaid           = "loan.repaid"
	LoanDefaulted        = "loan.defaulted"
	UserStatusChanged    = "user.status_changed"
	UserKYCReviewed      = "user.kyc_reviewed"
	SettingsUpdated      = "settings.updated"
)

// Event is the envelope written to the bus.
type Event struct {
	Subject    string      `json:"subject"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher emits domain events. Publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close()
}

// NATSPublisher writes events to a NATS connection.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	log    *zap.Logger
}

// Connect returns a NATS publisher, or a no-op publisher when url is empty.
func Connect(url string, log *zap.Logger) (Publisher, error) {
	log = logger.OrNop(log)
	if url == "" {
		log.Info("NATS_URL not set, domain events disabled")
		return NoopPublisher{}, nil
	}
	nc, err := nats.Connect(url,
		nats.Name("iprofit-admin"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc, prefix: "iprofit.", log: log}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	data, err := json.Marshal(Event{Subject: subject, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", subject, err)
	}
	if err := p.nc.Publish(p.prefix+subject, data); err != nil {
		p.log.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
		return err
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("NATS drain failed", zap.Error(err))
	}
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close()                                            {}
