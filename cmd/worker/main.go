package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	internalaws "github.com/ordersaga/inventory-service/internal/aws"
	"github.com/ordersaga/inventory-service/internal/saga"
)

func configFromEnv() ProcessorConfig {
	return ProcessorConfig{
		InventoryTable:       getEnv("INVENTORY_TABLE", "inventory"),
		LedgerTable:          getEnv("LEDGER_TABLE", "reservation-ledger"),
		OrchestratorQueueURL: os.Getenv("ORCHESTRATOR_QUEUE_URL"),
		ForwardQueue:         getEnv("FORWARD_QUEUE", "inventory-reserve"),
		CompensateQueue:      getEnv("COMPENSATE_QUEUE", "inventory-compensate"),
		MetricsNamespace:     getEnv("METRICS_NAMESPACE", "OrderSaga/Inventory"),
	}
}

func main() {
	clients, err := internalaws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	cfg := configFromEnv()
	processor := NewProcessor(clients, cfg)

	// If RUN_LOCAL=true, simulate a single forward event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			event := saga.Event{
				TransactionID: uuid.NewString(),
				Status:        saga.StatusPending,
				Payload: saga.Order{
					OrderID: "local-order-1",
					LineItems: []saga.LineItem{
						{ProductCode: "SKU-LOCAL", Quantity: 1},
					},
				},
			}
			raw, _ := json.Marshal(event)
			body = string(raw)
		}
		ev := events.SQSEvent{
			Records: []events.SQSMessage{
				{
					Body:           body,
					EventSourceARN: "arn:aws:sqs:local:000000000000:" + cfg.ForwardQueue,
				},
			},
		}
		if err := processor.Handle(context.Background(), ev); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(processor.Handle)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
