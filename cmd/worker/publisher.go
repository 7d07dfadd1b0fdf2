package main

import (
	"context"
	"encoding/json"
	"fmt"

	internalaws "github.com/ordersaga/inventory-service/internal/aws"
	"github.com/ordersaga/inventory-service/internal/saga"
)

// orchestratorPublisher adapts the SQS publisher to the participant's
// Publisher port: serialize the event, duplicate the routing fields into
// message attributes, send to the orchestrator's inbound queue.
type orchestratorPublisher struct {
	sqs *internalaws.Publisher
}

func newOrchestratorPublisher(p *internalaws.Publisher) *orchestratorPublisher {
	return &orchestratorPublisher{sqs: p}
}

func (o *orchestratorPublisher) PublishEvent(ctx context.Context, event *saga.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := map[string]string{
		"order_id":       event.Payload.OrderID,
		"transaction_id": event.TransactionID,
		"status":         string(event.Status),
	}
	return o.sqs.SendEventMessage(ctx, string(body), attrs)
}
