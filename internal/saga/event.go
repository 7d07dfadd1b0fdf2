package saga

import "time"

// Status is the saga status reported back to the orchestrator.
type Status string

const (
	// StatusPending is the implicit status of a freshly delivered event.
	StatusPending Status = "PENDING"
	// StatusSuccess means the reservation was applied in full.
	StatusSuccess Status = "SUCCESS"
	// StatusRollbackPending asks the orchestrator to start compensation.
	StatusRollbackPending Status = "ROLLBACK_PENDING"
	// StatusFail is terminal: this participant will not retry.
	StatusFail Status = "FAIL"
)

// Event is one saga instance's state as it travels between participants.
// Only the participant mutates it (status, source, appended history).
type Event struct {
	TransactionID string    `json:"transaction_id" validate:"required"`
	Source        string    `json:"source"`
	Status        Status    `json:"status"`
	Payload       Order     `json:"payload" validate:"required"`
	History       []History `json:"history"`
}

// Order is the immutable core payload of an event.
type Order struct {
	OrderID   string     `json:"order_id" validate:"required"`
	LineItems []LineItem `json:"line_items" validate:"required,min=1,dive"`
}

// LineItem is one requested product/quantity pair.
type LineItem struct {
	ProductCode string `json:"product_code" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

// History is one entry of the audit trail embedded in the event.
// The trail is append-only in insertion order.
type History struct {
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
}

// AddHistory appends an audit entry capturing the event's current
// source and status alongside the message.
func (e *Event) AddHistory(message string, at time.Time) {
	e.History = append(e.History, History{
		CreatedAt: at,
		Source:    e.Source,
		Status:    e.Status,
		Message:   message,
	})
}
