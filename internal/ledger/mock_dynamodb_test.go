package ledger

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory stand-in for the DynamoDB calls the ledger
// store issues: TransactWriteItems (conditional put + conditional decrement)
// and Query. It keeps a ledger table keyed by reservation_id/ordinal and an
// inventory table keyed by product_code.
// NOTE: intentionally minimal, it only understands the expressions we send.
type mockDynamo struct {
	mu        sync.Mutex
	ledger    map[string]map[int]map[string]types.AttributeValue // reservation_id -> ordinal -> item
	inventory map[string]int                                     // product_code -> available

	transactCalls int
	queryCalls    int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		ledger:    map[string]map[int]map[string]types.AttributeValue{},
		inventory: map[string]int{},
	}
}

func (m *mockDynamo) seedInventory(productCode string, available int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory[productCode] = available
}

func (m *mockDynamo) available(productCode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventory[productCode]
}

func strAttr(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func numAttr(av types.AttributeValue) int {
	if n, ok := av.(*types.AttributeValueMemberN); ok {
		v, _ := strconv.Atoi(n.Value)
		return v
	}
	return 0
}

func canceled(ledgerFailed, stockFailed bool) error {
	code := func(failed bool) *string {
		c := "None"
		if failed {
			c = "ConditionalCheckFailed"
		}
		return &c
	}
	return &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: code(ledgerFailed)},
			{Code: code(stockFailed)},
		},
	}
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactCalls++

	if len(params.TransactItems) != 2 || params.TransactItems[0].Put == nil || params.TransactItems[1].Update == nil {
		return nil, errors.New("unexpected transact shape")
	}

	put := params.TransactItems[0].Put
	rid := strAttr(put.Item["reservation_id"])
	ordinal := numAttr(put.Item["ordinal"])
	if rid == "" {
		return nil, errors.New("missing reservation_id in put")
	}
	if _, exists := m.ledger[rid][ordinal]; exists {
		return nil, canceled(true, false)
	}

	update := params.TransactItems[1].Update
	productCode := strAttr(update.Key["product_code"])
	qty := numAttr(update.ExpressionAttributeValues[":qty"])
	available, exists := m.inventory[productCode]
	if !exists || available < qty {
		return nil, canceled(false, true)
	}

	if m.ledger[rid] == nil {
		m.ledger[rid] = map[int]map[string]types.AttributeValue{}
	}
	m.ledger[rid][ordinal] = put.Item
	m.inventory[productCode] = available - qty
	return &dyn.TransactWriteItemsOutput{}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++

	rid := strAttr(params.ExpressionAttributeValues[":rid"])
	items := m.ledger[rid]

	ordinals := make([]int, 0, len(items))
	for o := range items {
		ordinals = append(ordinals, o)
	}
	sort.Ints(ordinals)

	out := &dyn.QueryOutput{Count: int32(len(items))}
	if params.Select == types.SelectCount {
		return out, nil
	}
	for _, o := range ordinals {
		out.Items = append(out.Items, items[o])
	}
	return out, nil
}

// Unused by the ledger store; present to satisfy aws.DynamoDBAPI.
func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return nil, errors.New("not implemented")
}
