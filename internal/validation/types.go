package validation

// UpsertInventoryRequest is the payload for PUT /inventory.
type UpsertInventoryRequest struct {
	ProductCode string `json:"product_code" validate:"required"` // stock keeping key
	Available   int    `json:"available" validate:"min=0"`       // never negative
}
