package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/ordersaga/inventory-service/internal/saga"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for saga.Order: a product code may
	// appear in at most one line item per order.
	v.RegisterStructValidation(orderStructValidation, saga.Order{})

	return v
}

// orderStructValidation rejects orders listing the same product code in more
// than one line item. The compensating restore writes absolute pre-images in
// ledger order, so a repeated code would resurrect stock consumed by the
// earlier line.
func orderStructValidation(sl validatorv10.StructLevel) {
	order := sl.Current().Interface().(saga.Order)

	seen := map[string]bool{}
	for _, item := range order.LineItems {
		if seen[item.ProductCode] {
			sl.ReportError(order.LineItems, "line_items", "LineItems",
				"unique_product_codes", item.ProductCode)
			return
		}
		seen[item.ProductCode] = true
	}
}
