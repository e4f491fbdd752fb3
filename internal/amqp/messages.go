package amqp

import (
	"encoding/json"
	"time"
)

// CategorizeJobMessage asks the worker to categorize a user's pending
// transactions. It carries only the user ID and a batch hint; the worker
// fetches the actual rows from the database.
type CategorizeJobMessage struct {
	UserID    string    `json:"user_id"`
	BatchHint int       `json:"batch_hint"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCategorizeJobMessage creates a job message for the given user.
func NewCategorizeJobMessage(userID string, batchHint int) *CategorizeJobMessage {
	return &CategorizeJobMessage{
		UserID:    userID,
		BatchHint: batchHint,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CategorizeJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CategorizeJobMessageFromJSON creates a message from JSON bytes
func CategorizeJobMessageFromJSON(data []byte) (*CategorizeJobMessage, error) {
	var msg CategorizeJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
