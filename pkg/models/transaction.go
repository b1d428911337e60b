package models

import (
	"encoding/json"
	"fmt"
	"time"

	"itinventory/pkg/metadata"
)

// Transaction is one immutable audit-log entry.
type Transaction struct {
	ID          string                   `json:"id,omitempty"`
	User        string                   `json:"user"`
	Timestamp   time.Time                `json:"timestamp"`
	Type        metadata.TransactionType `json:"type"`
	Reason      metadata.Reason          `json:"reason"`
	ItemName    string                   `json:"itemName"`
	Quantity    *int                     `json:"quantity,omitempty"`
	Details     string                   `json:"details,omitempty"`
	EquipmentID string                   `json:"equipmentId,omitempty"`
}

func (t Transaction) Document() (json.RawMessage, error) {
	t.ID = ""
	return json.Marshal(t)
}

func TransactionFromDocument(id string, data json.RawMessage) (Transaction, error) {
	var t Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return Transaction{}, fmt.Errorf("decode transaction %s: %w", id, err)
	}
	t.ID = id
	return t, nil
}
