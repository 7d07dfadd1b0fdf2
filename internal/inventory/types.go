package inventory

import "time"

// Record is the per-product stock item persisted in the inventory table.
// available must never be persisted negative; the stores enforce this with
// condition expressions, not read-then-check.
type Record struct {
	ProductCode string    `dynamodbav:"product_code" json:"product_code"` // PK
	Available   int       `dynamodbav:"available" json:"available"`
	UpdatedAt   time.Time `dynamodbav:"updated_at" json:"updated_at"`
}
