package saga

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ordersaga/inventory-service/internal/inventory"
	"github.com/ordersaga/inventory-service/internal/ledger"
)

// Source identifies this participant in event.source and history entries.
const Source = "INVENTORY_SERVICE"

// LedgerStore is the reservation ledger used for duplicate detection and
// compensation. Entries are write-once: there is no update or delete.
type LedgerStore interface {
	Exists(ctx context.Context, orderID, transactionID string) (bool, error)
	FindAll(ctx context.Context, orderID, transactionID string) ([]ledger.Entry, error)
	// AppendWithStockDecrement atomically appends the entry and decrements
	// the referenced product's available quantity.
	AppendWithStockDecrement(ctx context.Context, entry ledger.Entry) error
}

// InventoryStore is the durable per-product stock store.
type InventoryStore interface {
	Get(ctx context.Context, productCode string) (*inventory.Record, error)
	Restore(ctx context.Context, productCode string, quantity int) error
}

// Publisher hands mutated events back to the orchestrator.
type Publisher interface {
	PublishEvent(ctx context.Context, event *Event) error
}

// Participant implements the forward (reserve) and compensating (rollback)
// transitions of the inventory saga step.
type Participant struct {
	ledger    LedgerStore
	inventory InventoryStore
	publisher Publisher
	nowFunc   func() time.Time
}

// NewParticipant wires the participant with its ledger, store and publisher.
func NewParticipant(l LedgerStore, inv InventoryStore, pub Publisher) *Participant {
	return &Participant{
		ledger:    l,
		inventory: inv,
		publisher: pub,
		nowFunc:   time.Now,
	}
}

// Reserve applies the forward transition: guard against redelivery, record
// one ledger entry per line item and decrement stock, then report the
// outcome on the event. Every failure degrades to status ROLLBACK_PENDING
// plus a history entry; the event is always published, the orchestrator
// decides what happens next.
func (p *Participant) Reserve(ctx context.Context, event *Event) error {
	if err := p.reserve(ctx, event); err != nil {
		log.Printf("[saga] reservation failed for order=%s tx=%s: %v",
			event.Payload.OrderID, event.TransactionID, err)
		event.Status = StatusRollbackPending
		event.Source = Source
		event.AddHistory("reservation failed: "+err.Error(), p.nowFunc())
	} else {
		event.Status = StatusSuccess
		event.Source = Source
		event.AddHistory("reservation succeeded", p.nowFunc())
	}

	return p.publisher.PublishEvent(ctx, event)
}

func (p *Participant) reserve(ctx context.Context, event *Event) error {
	orderID := event.Payload.OrderID

	// Cheap redelivery short-circuit. The conditional ledger write below is
	// the authoritative guard; this lookup only saves a doomed transaction.
	exists, err := p.ledger.Exists(ctx, orderID, event.TransactionID)
	if err != nil {
		return fmt.Errorf("ledger lookup: %w", err)
	}
	if exists {
		return fmt.Errorf("%w %s", ErrDuplicateTransaction, orderID)
	}

	for i, item := range event.Payload.LineItems {
		rec, err := p.inventory.Get(ctx, item.ProductCode)
		if err != nil {
			return fmt.Errorf("fetch inventory %s: %w", item.ProductCode, err)
		}
		if rec == nil {
			return fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductCode)
		}

		entry := ledger.Entry{
			OrderID:           orderID,
			TransactionID:     event.TransactionID,
			Ordinal:           i,
			ProductCode:       item.ProductCode,
			OldQuantity:       rec.Available,
			RequestedQuantity: item.Quantity,
			NewQuantity:       rec.Available - item.Quantity,
		}

		err = p.ledger.AppendWithStockDecrement(ctx, entry)
		switch {
		case err == nil:
		case errors.Is(err, ledger.ErrDuplicateEntry):
			return fmt.Errorf("%w %s", ErrDuplicateTransaction, orderID)
		case errors.Is(err, ledger.ErrInsufficientStock):
			return fmt.Errorf("%w: %s", ErrOutOfStock, item.ProductCode)
		default:
			return fmt.Errorf("reserve %s: %w", item.ProductCode, err)
		}
	}

	return nil
}

// Rollback applies the compensating transition. The terminal FAIL status is
// set before any restore is attempted: this participant will not retry,
// whatever the compensation outcome. Each ledger entry is restored to its
// recorded pre-image; a failing entry does not stop the remaining restores.
func (p *Participant) Rollback(ctx context.Context, event *Event) error {
	event.Status = StatusFail
	event.Source = Source

	entries, err := p.ledger.FindAll(ctx, event.Payload.OrderID, event.TransactionID)
	if err != nil {
		event.AddHistory("rollback not executed: "+err.Error(), p.nowFunc())
		return p.publisher.PublishEvent(ctx, event)
	}

	var failures []string
	for _, entry := range entries {
		if err := p.inventory.Restore(ctx, entry.ProductCode, entry.OldQuantity); err != nil {
			log.Printf("[saga] restore failed for order=%s product=%s: %v",
				entry.OrderID, entry.ProductCode, err)
			failures = append(failures, fmt.Sprintf("%s: %v", entry.ProductCode, err))
			continue
		}
		log.Printf("[saga] restored inventory for order=%s product=%s from %d to %d",
			entry.OrderID, entry.ProductCode, entry.NewQuantity, entry.OldQuantity)
	}

	if len(failures) == 0 {
		event.AddHistory("rollback executed", p.nowFunc())
	} else {
		event.AddHistory("rollback not executed: "+strings.Join(failures, "; "), p.nowFunc())
	}

	return p.publisher.PublishEvent(ctx, event)
}
