package saga

import "errors"

// ErrDuplicateTransaction indicates ledger entries already exist for the
// (orderId, transactionId) pair — the transport redelivered the event.
var ErrDuplicateTransaction = errors.New("duplicate transaction for order")

// ErrProductNotFound indicates a line item references a product code with
// no inventory record.
var ErrProductNotFound = errors.New("inventory not found by product code")

// ErrOutOfStock indicates the requested quantity exceeds the available stock.
var ErrOutOfStock = errors.New("product out of stock")
