package ledger

import (
	"fmt"
	"time"
)

// Entry is one recorded stock delta: one entry per line item per saga
// attempt. Entries are created by the forward transition and only ever
// read afterwards — the ledger has no update or delete.
type Entry struct {
	OrderID           string    `dynamodbav:"order_id" json:"order_id"`
	TransactionID     string    `dynamodbav:"transaction_id" json:"transaction_id"`
	Ordinal           int       `dynamodbav:"ordinal" json:"ordinal"` // line item position, sort key
	ProductCode       string    `dynamodbav:"product_code" json:"product_code"`
	OldQuantity       int       `dynamodbav:"old_quantity" json:"old_quantity"`
	RequestedQuantity int       `dynamodbav:"requested_quantity" json:"requested_quantity"`
	NewQuantity       int       `dynamodbav:"new_quantity" json:"new_quantity"`
	CreatedAt         time.Time `dynamodbav:"created_at" json:"created_at"`
}

// ReservationID builds the partition key shared by all entries of one
// (orderId, transactionId) pair.
func ReservationID(orderID, transactionID string) string {
	return fmt.Sprintf("%s#%s", orderID, transactionID)
}
