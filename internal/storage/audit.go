package storage

import (
	"context"
	"fmt"
	"time"
)

// AuditEntry is a ledger event persisted by the audit worker.
type AuditEntry struct {
	ID            int64
	EventID       string
	EventType     string
	TransactionID int64
	Payload       string
	OccurredAt    time.Time
	RecordedAt    time.Time
}

// RecordAudit stores an event once. It returns false when an entry with the
// same event id already exists, which makes redelivered messages harmless.
func (r *SQLiteRepository) RecordAudit(ctx context.Context, e AuditEntry) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO audit_log (event_id, event_type, transaction_id, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.EventID, e.EventType, e.TransactionID, e.Payload, e.OccurredAt.UTC().Format(timestampLayout))
	if err != nil {
		return false, fmt.Errorf("record audit entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows: %w", err)
	}
	return affected > 0, nil
}

// ListAudit returns the most recent audit entries first.
func (r *SQLiteRepository) ListAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, event_type, transaction_id, payload, occurred_at, recorded_at
		FROM audit_log
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		var (
			e                      AuditEntry
			occurredAt, recordedAt string
		)
		if err := rows.Scan(&e.ID, &e.EventID, &e.EventType, &e.TransactionID, &e.Payload, &occurredAt, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.OccurredAt = parseTimestamp(occurredAt)
		e.RecordedAt = parseTimestamp(recordedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", err)
	}
	return entries, nil
}
