// Package events publishes audit lifecycle events to the activity
// channel. Delivery is fire-and-forget; nothing in the audit flow
// waits on a subscriber.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/seo-auditor/internal/logger"
)

// Event types emitted on terminal audit transitions.
const (
	TypeAuditCompleted = "audit.completed"
	TypeAuditFailed    = "audit.failed"
)

// DefaultChannel is the Redis pub/sub channel for audit events.
const DefaultChannel = "seo-auditor:activity"

const publishTimeout = 5 * time.Second

// AuditEvent is the summary emitted when an audit reaches a terminal
// state.
type AuditEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	AccountID  string    `json:"account_id"`
	AuditID    string    `json:"audit_id"`
	Score      *int      `json:"score,omitempty"`
	IssueCount int       `json:"issue_count"`
	Partial    bool      `json:"partial"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher sends audit events over Redis pub/sub. A Publisher built
// with a nil client drops every event, so callers never branch on
// whether the activity sink is configured.
type Publisher struct {
	client  *redis.Client
	channel string
	logger  logger.Logger
}

// NewPublisher creates an event publisher. client may be nil.
func NewPublisher(client *redis.Client, channel string, log logger.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{client: client, channel: channel, logger: log}
}

// NewEvent builds an audit event with identity and timestamp assigned.
func NewEvent(eventType, accountID, auditID string) *AuditEvent {
	return &AuditEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		AccountID: accountID,
		AuditID:   auditID,
		Timestamp: time.Now().UTC(),
	}
}

// Publish sends one event. Errors are returned for the caller to log;
// they never carry audit-flow significance.
func (p *Publisher) Publish(ctx context.Context, event *AuditEvent) error {
	if p.client == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	if pubErr := p.client.Publish(ctx, p.channel, payload).Err(); pubErr != nil {
		return fmt.Errorf("publish audit event: %w", pubErr)
	}
	return nil
}

// PublishAsync sends one event in the background with its own timeout.
// Failures are logged and dropped.
func (p *Publisher) PublishAsync(event *AuditEvent) {
	if p.client == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := p.Publish(ctx, event); err != nil {
			p.logger.Warn("dropping audit event",
				logger.String("event_id", event.EventID),
				logger.String("type", event.Type),
				logger.Error(err))
		}
	}()
}
