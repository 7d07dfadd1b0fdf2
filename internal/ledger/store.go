package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ordersaga/inventory-service/internal/aws"
)

// ErrDuplicateEntry indicates an entry for this (orderId, transactionId,
// ordinal) already exists — the reservation was already recorded.
var ErrDuplicateEntry = errors.New("ledger entry already exists")

// ErrInsufficientStock indicates the coupled stock decrement failed its
// condition: the product is missing or available < requested.
var ErrInsufficientStock = errors.New("insufficient available stock")

// Store encapsulates ledger operations against DynamoDB. The ledger table
// is keyed by reservation_id (partition) and ordinal (sort); because the
// append couples each entry with its stock decrement, the store also knows
// the inventory table name.
type Store struct {
	client         aws.DynamoDBAPI
	tableName      string
	inventoryTable string
	nowFunc        func() time.Time
}

// NewStore returns a configured Store.
func NewStore(client aws.DynamoDBAPI, tableName, inventoryTable string) *Store {
	return &Store{
		client:         client,
		tableName:      tableName,
		inventoryTable: inventoryTable,
		nowFunc:        time.Now,
	}
}

// AppendWithStockDecrement writes the entry and decrements the referenced
// product's available quantity in a single TransactWriteItems call:
//   - the entry put is guarded by attribute_not_exists(reservation_id),
//     which makes the idempotency guard atomic with the recording;
//   - the decrement is guarded by available >= requested, so available can
//     never be persisted negative and concurrent reservations cannot lose
//     an update.
func (s *Store) AppendWithStockDecrement(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.nowFunc()
	}

	entryMap, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("marshal ledger entry: %w", err)
	}
	entryMap["reservation_id"] = &types.AttributeValueMemberS{
		Value: ReservationID(entry.OrderID, entry.TransactionID),
	}

	qty := fmt.Sprintf("%d", entry.RequestedQuantity)
	transactItems := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           &s.tableName,
				Item:                entryMap,
				ConditionExpression: awsString("attribute_not_exists(reservation_id)"),
			},
		},
		{
			Update: &types.Update{
				TableName: &s.inventoryTable,
				Key: map[string]types.AttributeValue{
					"product_code": &types.AttributeValueMemberS{Value: entry.ProductCode},
				},
				UpdateExpression:    awsString("SET available = available - :qty, updated_at = :ua"),
				ConditionExpression: awsString("attribute_exists(product_code) AND available >= :qty"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":qty": &types.AttributeValueMemberN{Value: qty},
					":ua":  &types.AttributeValueMemberS{Value: entry.CreatedAt.Format(time.RFC3339)},
				},
			},
		},
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			// reason order mirrors the transact item order
			if len(tce.CancellationReasons) == 2 {
				if conditionFailed(tce.CancellationReasons[0]) {
					return ErrDuplicateEntry
				}
				if conditionFailed(tce.CancellationReasons[1]) {
					return ErrInsufficientStock
				}
			}
			return fmt.Errorf("transaction canceled: %w", err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Exists reports whether any entry exists for the (orderId, transactionId)
// pair.
func (s *Store) Exists(ctx context.Context, orderID, transactionID string) (bool, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: awsString("reservation_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: ReservationID(orderID, transactionID)},
		},
		Select: types.SelectCount,
		Limit:  awsInt32(1),
	})
	if err != nil {
		return false, fmt.Errorf("query ledger: %w", err)
	}
	return out.Count > 0, nil
}

// FindAll returns every entry for the (orderId, transactionId) pair in
// ledger (ordinal) order.
func (s *Store) FindAll(ctx context.Context, orderID, transactionID string) ([]Entry, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: awsString("reservation_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: ReservationID(orderID, transactionID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}

	entries := make([]Entry, 0, len(out.Items))
	for _, item := range out.Items {
		var e Entry
		if err := attributevalue.UnmarshalMap(item, &e); err != nil {
			return nil, fmt.Errorf("unmarshal ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func conditionFailed(reason types.CancellationReason) bool {
	return reason.Code != nil && *reason.Code == "ConditionalCheckFailed"
}

func awsString(s string) *string { return &s }
func awsInt32(i int32) *int32    { return &i }
