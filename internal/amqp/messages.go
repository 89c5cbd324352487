package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sync operations carried on the queue.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// SyncMessage tells the worker to reconcile one locally written transaction
// with the hosted backend. It carries only the id and operation; the worker
// fetches the full row from the local database.
type SyncMessage struct {
	TransactionID string    `json:"transaction_id"`
	Op            string    `json:"op"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewSyncMessage creates a sync message for the given transaction.
func NewSyncMessage(transactionID, op string) *SyncMessage {
	return &SyncMessage{
		TransactionID: transactionID,
		Op:            op,
		Timestamp:     time.Now(),
	}
}

// Validate rejects messages a worker could not act on.
func (m *SyncMessage) Validate() error {
	if m.TransactionID == "" {
		return fmt.Errorf("sync message: empty transaction id")
	}
	if m.Op != OpUpsert && m.Op != OpDelete {
		return fmt.Errorf("sync message: unknown op %q", m.Op)
	}
	return nil
}

// ToJSON converts the message to JSON bytes.
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON creates a message from JSON bytes.
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
