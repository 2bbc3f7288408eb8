// Package services holds the application use cases. Every service persists
// through storage first; domain events are published afterwards and never
// fail the request.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"conti/internal/amqp"
	"conti/internal/core"
)

// EventPublisher is implemented by *amqp.Client. A nil publisher disables
// event delivery.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.Event) error
}

type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func newID() string { return uuid.NewString() }

// randomToken returns n random bytes, hex encoded.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func publish(ctx context.Context, events EventPublisher, ev *amqp.Event) {
	if events == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping event", "type", ev.Type)
		return
	}
	if err := events.Publish(ctx, ev); err != nil {
		// The write is already committed locally.
		slog.ErrorContext(ctx, "Failed to publish event",
			"type", ev.Type,
			"expense_id", ev.ExpenseID,
			"error", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
