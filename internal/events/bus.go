package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Event is an in-process domain event. Payload holds the domain value the
// topic documents (an order snapshot, a contact message).
type Event struct {
	Topic      string
	OccurredAt time.Time
	Payload    any
}

// Notifier reacts to emitted events (e.g. e-mail, metrics).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Bus fans events out to the configured notifiers. Notifier failures are
// joined and returned but must never abort the emitting operation; callers
// treat the error as log-only.
type Bus struct {
	Notifiers []Notifier
	Logger    *zerolog.Logger
	Now       func() time.Time
}

// Emit dispatches the event to all notifiers and returns their joined errors.
func (b *Bus) Emit(ctx context.Context, topic string, payload any) error {
	if b == nil {
		return nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return errors.New("events: topic is required")
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	ev := Event{Topic: topic, OccurredAt: now(), Payload: payload}

	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, ev); err != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", err))
		}
	}
	if joined != nil && b.Logger != nil {
		b.Logger.Warn().Err(joined).Str("topic", topic).Msg("event notification failed")
	}
	return joined
}
