package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	ExpenseCreated   EventType = "expense.created"
	ExpenseUpdated   EventType = "expense.updated"
	ExpenseDeleted   EventType = "expense.deleted"
	RepaymentChanged EventType = "repayment.changed"
)

// Event is a lightweight domain notification. Consumers reload the full
// record from the database using ExpenseID.
type Event struct {
	Type          EventType `json:"type"`
	ExpenseID     string    `json:"expense_id,omitempty"`
	UserID        string    `json:"user_id"`
	CreditCardIDs []string  `json:"credit_card_ids,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewEvent(t EventType, userID, expenseID string, cardIDs ...string) *Event {
	var cards []string
	for _, id := range cardIDs {
		if id != "" {
			cards = append(cards, id)
		}
	}
	return &Event{
		Type:          t,
		ExpenseID:     expenseID,
		UserID:        userID,
		CreditCardIDs: cards,
		Timestamp:     time.Now().UTC(),
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and sanity-checks a message body.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case ExpenseCreated, ExpenseUpdated, ExpenseDeleted:
		if e.ExpenseID == "" {
			return nil, fmt.Errorf("%s event without expense_id", e.Type)
		}
	case RepaymentChanged:
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	return &e, nil
}
