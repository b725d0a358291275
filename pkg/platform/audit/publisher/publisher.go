// Package publisher emits audit events to the configured stores.
//
// The primary store is written with fail-closed semantics: if the append
// fails, Emit returns the error and the calling operation must fail. Extra
// sinks (Kafka, Postgres outbox) are best-effort fan-out.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	audit "concord/pkg/platform/audit"
	"concord/pkg/requestcontext"
)

// Publisher writes audit events to a primary store and fans out to sinks.
type Publisher struct {
	store  audit.Store
	sinks  []audit.Store
	logger *slog.Logger

	inbox chan audit.Event
	done  chan struct{}
	once  sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for sink error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithSink adds a best-effort fan-out sink. Sink failures are logged, never
// surfaced to the emitting operation.
func WithSink(sink audit.Store) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

// WithAsyncBuffer switches sink fan-out to a buffered background worker.
// The primary store write stays synchronous so the trail ordering holds.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// NewPublisher builds a publisher over the primary store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit appends the event to the primary store, then fans out to sinks.
// The timestamp is stamped from the request context when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		return err
	}

	if p.inbox != nil {
		select {
		case p.inbox <- event:
		default:
			p.logger.Warn("audit sink buffer full, dropping fan-out",
				"action", event.Action,
			)
		}
		return nil
	}
	p.fanOut(ctx, event)
	return nil
}

func (p *Publisher) fanOut(ctx context.Context, event audit.Event) {
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			p.logger.Error("audit sink append failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
}

func (p *Publisher) drain() {
	for event := range p.inbox {
		p.fanOut(context.Background(), event)
	}
	close(p.done)
}

// Close drains any buffered fan-out and stops the background worker.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
}
