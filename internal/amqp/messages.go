package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/core"
)

type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionDeleted EventType = "transaction.deleted"
)

// TransactionEvent announces a change to the ledger. Created events carry
// the full transaction; deleted events only the id.
type TransactionEvent struct {
	EventID       string            `json:"event_id"`
	Type          EventType         `json:"type"`
	TransactionID int64             `json:"transaction_id"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// NewTransactionCreatedEvent builds the event published after an insert.
func NewTransactionCreatedEvent(t core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		EventID:       uuid.NewString(),
		Type:          EventTransactionCreated,
		TransactionID: t.ID,
		Transaction:   &t,
		Timestamp:     time.Now().UTC(),
	}
}

// NewTransactionDeletedEvent builds the event published after a delete.
func NewTransactionDeletedEvent(id int64) *TransactionEvent {
	return &TransactionEvent{
		EventID:       uuid.NewString(),
		Type:          EventTransactionDeleted,
		TransactionID: id,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON creates an event from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
