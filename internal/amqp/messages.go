package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"spendlens/internal/analytics"
)

// ExpenseRecordedMessage announces a newly stored expense. It carries only
// identifiers; consumers fetch the record from the Record Source.
type ExpenseRecordedMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseRecordedMessage(id, userID string) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{ID: id, UserID: userID, Timestamp: time.Now()}
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || msg.UserID == "" {
		return nil, errors.New("expense recorded message missing id or user_id")
	}
	return &msg, nil
}

// SummaryDigestMessage carries a freshly computed summary for one user.
type SummaryDigestMessage struct {
	UserID      string                  `json:"user_id"`
	ExpenseID   string                  `json:"expense_id,omitempty"`
	GeneratedAt time.Time               `json:"generated_at"`
	Summary     analytics.SummaryReport `json:"summary"`
}

func (m *SummaryDigestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
