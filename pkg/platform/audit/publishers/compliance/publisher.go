// Package compliance provides a fail-closed audit publisher for regulatory events.
//
// Events are written synchronously and the caller blocks until the write
// succeeds. If the write fails an error is returned and the calling operation
// must fail: an adjudication that cannot be audited is not returned.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "adjudicator/pkg/platform/audit"
)

// Publisher emits compliance events with fail-closed semantics.
type Publisher struct {
	stores  []audit.Store
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithMirror adds a secondary store (e.g. the Kafka sink) that every event
// is also written to. A mirror failure fails the emit like the primary does.
func WithMirror(store audit.Store) Option {
	return func(p *Publisher) {
		if store != nil {
			p.stores = append(p.stores, store)
		}
	}
}

// WithClock overrides the timestamp source for events without one.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// New creates a compliance publisher over the primary store.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		stores: []audit.Store{store},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes event to every configured store.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	start := time.Now()

	if event.Subject == "" {
		return fmt.Errorf("compliance event requires Subject")
	}
	if event.Action == "" {
		return fmt.Errorf("compliance event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	for _, store := range p.stores {
		if err := store.Append(ctx, event); err != nil {
			p.metrics.IncPersistFailures()
			if p.logger != nil {
				p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
					"action", event.Action,
					"subject", event.Subject,
					"claim_id", event.ClaimID,
					"error", err,
				)
			}
			return fmt.Errorf("compliance audit persistence failed: %w", err)
		}
	}

	p.metrics.ObservePersistDuration(time.Since(start).Seconds())
	p.metrics.IncEventsEmitted(string(event.Category))
	return nil
}
