// Package worker consumes transaction events and records them in the
// audit log.
package worker

import (
	"context"
	"fmt"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// AuditStore persists audit entries idempotently by event id.
type AuditStore interface {
	RecordAudit(ctx context.Context, e storage.AuditEntry) (bool, error)
}

type AuditWorker struct {
	store  AuditStore
	logger *applog.Logger
}

func NewAuditWorker(store AuditStore, logger *applog.Logger) *AuditWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &AuditWorker{
		store:  store,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent records evt. A redelivered event that is already stored is
// acknowledged without a second row.
func (w *AuditWorker) HandleEvent(ctx context.Context, evt *amqp.TransactionEvent) error {
	switch evt.Type {
	case amqp.EventTransactionCreated, amqp.EventTransactionDeleted:
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event type",
			"event_id", evt.EventID,
			"type", string(evt.Type))
		return nil
	}
	if evt.EventID == "" {
		return fmt.Errorf("event without id for transaction %d", evt.TransactionID)
	}

	payload, err := evt.ToJSON()
	if err != nil {
		return fmt.Errorf("encode audit payload: %w", err)
	}

	stored, err := w.store.RecordAudit(ctx, storage.AuditEntry{
		EventID:       evt.EventID,
		EventType:     string(evt.Type),
		TransactionID: evt.TransactionID,
		Payload:       string(payload),
		OccurredAt:    evt.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	if !stored {
		w.logger.DebugContext(ctx, "Duplicate event skipped", "event_id", evt.EventID)
		return nil
	}

	w.logger.InfoContext(ctx, "Recorded transaction event",
		applog.FieldOperation, applog.OpAudit,
		applog.FieldTransactionID, evt.TransactionID,
		"event_id", evt.EventID,
		"event_type", string(evt.Type))
	return nil
}

// Consumer is the subscription side of the AMQP client.
type Consumer interface {
	ConsumeWithRetry(ctx context.Context, handler amqp.EventHandler) error
}

// Run consumes until ctx is cancelled.
func (w *AuditWorker) Run(ctx context.Context, c Consumer) error {
	w.logger.InfoContext(ctx, "Audit worker started")
	err := c.ConsumeWithRetry(ctx, w.HandleEvent)
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Audit worker stopped")
		return nil
	}
	return err
}
