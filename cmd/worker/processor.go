package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	validatorv10 "github.com/go-playground/validator/v10"

	internalaws "github.com/ordersaga/inventory-service/internal/aws"
	"github.com/ordersaga/inventory-service/internal/inventory"
	"github.com/ordersaga/inventory-service/internal/ledger"
	"github.com/ordersaga/inventory-service/internal/saga"
	"github.com/ordersaga/inventory-service/internal/validation"
)

// ProcessorConfig carries the queue/table wiring read from the environment.
type ProcessorConfig struct {
	InventoryTable       string
	LedgerTable          string
	OrchestratorQueueURL string
	ForwardQueue         string // queue name of the "forward" channel
	CompensateQueue      string // queue name of the "compensate" channel
	MetricsNamespace     string
}

// Processor routes SQS records to the saga participant's transitions.
type Processor struct {
	participant *saga.Participant
	metrics     *internalaws.MetricsEmitter
	validate    *validatorv10.Validate
	cfg         ProcessorConfig
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(clients *internalaws.AWSClients, cfg ProcessorConfig) *Processor {
	ledgerStore := ledger.NewStore(clients.DynamoDB, cfg.LedgerTable, cfg.InventoryTable)
	invStore := inventory.NewStore(clients.DynamoDB, cfg.InventoryTable)
	publisher := newOrchestratorPublisher(internalaws.NewPublisher(clients.SQS, cfg.OrchestratorQueueURL))

	return &Processor{
		participant: saga.NewParticipant(ledgerStore, invStore, publisher),
		metrics:     internalaws.NewMetricsEmitter(clients.CloudWatch, cfg.MetricsNamespace),
		validate:    validation.New(),
		cfg:         cfg,
	}
}

// Handle receives an SQS batch event and processes each record.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processRecord(ctx, rec); err != nil {
			// Return error: Lambda will redeliver the batch. The ledger
			// guard makes redelivery of already-applied events safe.
			log.Printf("worker error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processRecord(ctx context.Context, rec events.SQSMessage) error {
	var event saga.Event
	if err := json.Unmarshal([]byte(rec.Body), &event); err != nil {
		// Redelivery cannot fix a malformed body; log and skip. In
		// production the queue's DLQ policy catches these.
		log.Printf("[worker] skipping malformed event body: %v", err)
		return nil
	}
	if err := p.validate.Struct(&event); err != nil {
		log.Printf("[worker] skipping invalid event tx=%s: %v", event.TransactionID, err)
		return nil
	}

	switch {
	case p.fromQueue(rec, p.cfg.ForwardQueue):
		log.Printf("[worker] reserve order=%s tx=%s", event.Payload.OrderID, event.TransactionID)
		if err := p.participant.Reserve(ctx, &event); err != nil {
			return fmt.Errorf("reserve order=%s: %w", event.Payload.OrderID, err)
		}
		p.countOutcome(ctx, reserveMetric(&event))

	case p.fromQueue(rec, p.cfg.CompensateQueue):
		log.Printf("[worker] rollback order=%s tx=%s", event.Payload.OrderID, event.TransactionID)
		if err := p.participant.Rollback(ctx, &event); err != nil {
			return fmt.Errorf("rollback order=%s: %w", event.Payload.OrderID, err)
		}
		p.countOutcome(ctx, rollbackMetric(&event))

	default:
		log.Printf("[worker] skipping record from unknown source %s", rec.EventSourceARN)
	}
	return nil
}

// fromQueue matches a record's source ARN against a configured queue name.
func (p *Processor) fromQueue(rec events.SQSMessage, queueName string) bool {
	return queueName != "" && strings.HasSuffix(rec.EventSourceARN, ":"+queueName)
}

func (p *Processor) countOutcome(ctx context.Context, metricName string) {
	// best effort; a metrics hiccup must not fail the saga step
	if err := p.metrics.CountOutcome(ctx, metricName); err != nil {
		log.Printf("[worker] metric %s not emitted: %v", metricName, err)
	}
}

func reserveMetric(event *saga.Event) string {
	if event.Status == saga.StatusSuccess {
		return "ReservationSucceeded"
	}
	return "ReservationFailed"
}

func rollbackMetric(event *saga.Event) string {
	if n := len(event.History); n > 0 && event.History[n-1].Message == "rollback executed" {
		return "RollbackExecuted"
	}
	return "RollbackFailed"
}
