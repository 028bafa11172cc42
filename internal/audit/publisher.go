package audit

import (
	"context"
	"log/slog"
	"time"
)

// Emitter is the port domain services depend on. The workflow treats the
// audit trail as an external collaborator: it appends and never reads.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists audit events. Append-only; there is no update or delete.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context, limit int) ([]Event, error)
	ListByEntityType(ctx context.Context, entityType string, limit int) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	logger *slog.Logger
	sinks  []Emitter
}

// NewPublisher constructs a Publisher over a store plus optional extra sinks
// (e.g. the Kafka producer). Sink failures do not fail the emit: the store
// append is the source of truth and dropped sink deliveries are logged.
func NewPublisher(store Store, logger *slog.Logger, sinks ...Emitter) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, logger: logger, sinks: sinks}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Emit(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink delivery failed",
				"action", event.Action,
				"entity_type", event.EntityType,
				"entity_id", event.EntityID,
				"error", err,
			)
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, limit int) ([]Event, error) {
	return p.store.List(ctx, limit)
}

func (p *Publisher) ListByEntityType(ctx context.Context, entityType string, limit int) ([]Event, error) {
	return p.store.ListByEntityType(ctx, entityType, limit)
}
