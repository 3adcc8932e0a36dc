package repository

import (
	"context"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfinch/myfinance-backend/internal/domain/expense"
	"github.com/mfinch/myfinance-backend/internal/domain/receipt"
	"github.com/mfinch/myfinance-backend/internal/platform/dynamodb/client"
)

// TestClient is an in-memory implementation of the DynamoDB client interface
// for testing. The expense table has no sort key, so items are addressed by
// PK alone.
type TestClient struct {
	items       map[string]map[string]types.AttributeValue
	transactErr error
}

// NewTestClient creates a new test client with an empty items map
func NewTestClient() *TestClient {
	return &TestClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func pkValue(attrs map[string]types.AttributeValue) string {
	if pk, ok := attrs["PK"].(*types.AttributeValueMemberS); ok {
		return pk.Value
	}
	return ""
}

// GetItem retrieves an item from the in-memory store
func (c *TestClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if item, exists := c.items[pkValue(params.Key)]; exists {
		return &dynamodb.GetItemOutput{Item: item}, nil
	}
	return &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{}}, nil
}

// PutItem adds or updates an item in the in-memory store
func (c *TestClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.items[pkValue(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

// DeleteItem removes an item from the in-memory store
func (c *TestClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(c.items, pkValue(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query returns items whose US_GSI_PK matches one of the expression values
func (c *TestClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	var matched []map[string]types.AttributeValue
	for _, item := range c.items {
		gsiPK, ok := item["US_GSI_PK"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		for _, value := range params.ExpressionAttributeValues {
			if s, ok := value.(*types.AttributeValueMemberS); ok && s.Value == gsiPK.Value {
				matched = append(matched, item)
				break
			}
		}
	}
	return &dynamodb.QueryOutput{Items: matched}, nil
}

// TransactWriteItems applies every queued operation, or none when a failure
// is injected
func (c *TestClient) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if c.transactErr != nil {
		return nil, c.transactErr
	}
	for _, op := range params.TransactItems {
		switch {
		case op.Put != nil:
			c.items[pkValue(op.Put.Item)] = op.Put.Item
		case op.Delete != nil:
			delete(c.items, pkValue(op.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (c *TestClient) BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	return &dynamodb.BatchGetItemOutput{}, nil
}

func testRecord(t *testing.T, userID, id string, status expense.Status) *expense.Record {
	t.Helper()
	pk, err := expense.DetailsKey(id, expense.BelongsToPurchase)
	require.NoError(t, err)
	gsiPK, err := expense.DetailsIndexKey(userID, status, expense.BelongsToPurchase)
	require.NoError(t, err)
	return &expense.Record{
		PK:           pk,
		GsiPK:        gsiPK,
		GsiSK:        "expenseDate#2023-07-15",
		GsiBelongsTo: "expenseBelongsTo#purchase",
		Details: expense.Detail{
			ID:        id,
			BillName:  "Grocery run",
			Amount:    "42.50",
			EventDate: "2023-07-15",
			Status:    status,
			Tags:      []string{"food"},
			Receipts:  []receipt.Detail{{ID: "receipt-1", Name: "receipt.jpg", ContentType: receipt.ContentTypeJPG, Size: 2048}},
			BelongsTo: expense.BelongsToPurchase,
		},
	}
}

func testItemsRecord(t *testing.T, id string) *expense.ItemsRecord {
	t.Helper()
	pk, err := expense.ItemsKey(id, expense.BelongsToPurchase)
	require.NoError(t, err)
	return &expense.ItemsRecord{
		PK: pk,
		Details: expense.ItemsDetail{
			ID:    id,
			Items: []expense.Item{{ID: "item-1", BillName: "Milk", Amount: "3.50"}},
		},
	}
}

func testTagsRecord(t *testing.T, userID, id string, status expense.Status) *expense.TagsRecord {
	t.Helper()
	pk, err := expense.TagsKey(id, expense.BelongsToPurchase)
	require.NoError(t, err)
	gsiPK, err := expense.TagsIndexKey(userID, status, expense.BelongsToPurchase)
	require.NoError(t, err)
	return &expense.TagsRecord{
		PK:    pk,
		GsiPK: gsiPK,
		GsiSK: "year#2023",
		Details: expense.TagsDetail{
			ID:        id,
			BelongsTo: expense.BelongsToPurchase,
			Tags:      []string{"food"},
		},
	}
}

func TestExpenseRepositorySave(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips every row", func(t *testing.T) {
		ddb := NewTestClient()
		repo := NewDynamoDBExpenseRepository(ddb, "expenses", "owner-status", slog.Default())

		rec := testRecord(t, "user-1", "expense-1", expense.StatusEnable)
		items := testItemsRecord(t, "expense-1")
		tags := testTagsRecord(t, "user-1", "expense-1", expense.StatusEnable)

		require.NoError(t, repo.Save(ctx, rec, items, false, tags))

		gotRec, err := repo.GetDetails(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		require.NotNil(t, gotRec)
		assert.Equal(t, rec.GsiPK, gotRec.GsiPK)
		assert.Equal(t, "Grocery run", gotRec.Details.BillName)
		assert.Equal(t, expense.StatusEnable, gotRec.Details.Status)
		require.Len(t, gotRec.Details.Receipts, 1)
		assert.Equal(t, "receipt-1", gotRec.Details.Receipts[0].ID)
		assert.Nil(t, gotRec.ExpiresAt)

		gotItems, err := repo.GetItems(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		require.NotNil(t, gotItems)
		require.Len(t, gotItems.Details.Items, 1)
		assert.Equal(t, "Milk", gotItems.Details.Items[0].BillName)

		gotTags, err := repo.GetTags(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		require.NotNil(t, gotTags)
		assert.Equal(t, []string{"food"}, gotTags.Details.Tags)
	})

	t.Run("ttl round trips and clears with the row image", func(t *testing.T) {
		ddb := NewTestClient()
		repo := NewDynamoDBExpenseRepository(ddb, "expenses", "owner-status", slog.Default())

		rec := testRecord(t, "user-1", "expense-1", expense.StatusDeleted)
		expires := int64(1700000000)
		rec.ExpiresAt = &expires
		require.NoError(t, repo.Save(ctx, rec, nil, false, nil))

		got, err := repo.GetDetails(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		require.NotNil(t, got.ExpiresAt)
		assert.Equal(t, expires, *got.ExpiresAt)

		// Rows are written whole, so a record without the attribute
		// clears it.
		rec.ExpiresAt = nil
		rec.Details.Status = expense.StatusEnable
		require.NoError(t, repo.Save(ctx, rec, nil, false, nil))

		got, err = repo.GetDetails(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		assert.Nil(t, got.ExpiresAt)
	})

	t.Run("drop items deletes the items row", func(t *testing.T) {
		ddb := NewTestClient()
		repo := NewDynamoDBExpenseRepository(ddb, "expenses", "owner-status", slog.Default())

		rec := testRecord(t, "user-1", "expense-1", expense.StatusEnable)
		require.NoError(t, repo.Save(ctx, rec, testItemsRecord(t, "expense-1"), false, nil))

		require.NoError(t, repo.Save(ctx, rec, nil, true, nil))
		got, err := repo.GetItems(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("failed transaction changes nothing", func(t *testing.T) {
		ddb := NewTestClient()
		repo := NewDynamoDBExpenseRepository(ddb, "expenses", "owner-status", slog.Default())

		rec := testRecord(t, "user-1", "expense-1", expense.StatusEnable)
		require.NoError(t, repo.Save(ctx, rec, nil, false, nil))

		ddb.transactErr = &types.TransactionCanceledException{Message: aws.String("conflict")}
		updated := testRecord(t, "user-1", "expense-1", expense.StatusEnable)
		updated.Details.BillName = "Changed"
		err := repo.Save(ctx, updated, testItemsRecord(t, "expense-1"), false, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CONFLICT")

		got, err := repo.GetDetails(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		assert.Equal(t, "Grocery run", got.Details.BillName)
		gotItems, err := repo.GetItems(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		assert.Nil(t, gotItems)
	})

	t.Run("nil details record is rejected", func(t *testing.T) {
		repo := NewDynamoDBExpenseRepository(NewTestClient(), "expenses", "owner-status", slog.Default())
		err := repo.Save(ctx, nil, nil, false, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ILLEGAL_ARGUMENT")
	})
}

func TestExpenseRepositoryGet(t *testing.T) {
	ctx := context.Background()

	t.Run("absent rows are nil without error", func(t *testing.T) {
		repo := NewDynamoDBExpenseRepository(NewTestClient(), "expenses", "owner-status", slog.Default())

		rec, err := repo.GetDetails(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		assert.Nil(t, rec)

		items, err := repo.GetItems(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		assert.Nil(t, items)

		tags, err := repo.GetTags(ctx, "expense-1", expense.BelongsToPurchase)
		require.NoError(t, err)
		assert.Nil(t, tags)
	})
}

func TestExpenseRepositoryListDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("returns only rows in the owner-status partition", func(t *testing.T) {
		ddb := NewTestClient()
		repo := NewDynamoDBExpenseRepository(ddb, "expenses", "owner-status", slog.Default())

		require.NoError(t, repo.Save(ctx, testRecord(t, "user-1", "expense-1", expense.StatusEnable), nil, false, nil))
		require.NoError(t, repo.Save(ctx, testRecord(t, "user-1", "expense-2", expense.StatusDisable), nil, false, nil))
		require.NoError(t, repo.Save(ctx, testRecord(t, "user-2", "expense-3", expense.StatusEnable), nil, false, nil))

		records, err := repo.ListDetails(ctx, expense.ListFilter{
			UserID:    "user-1",
			BelongsTo: expense.BelongsToPurchase,
			Status:    expense.StatusEnable,
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "expense-1", records[0].Details.ID)
	})

	t.Run("follows pagination up to the limit", func(t *testing.T) {
		mock := client.NewMockDynamoDBClient()
		page := 0
		mock.QueryFn = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			page++
			rec := testRecord(t, "user-1", "expense-1", expense.StatusEnable)
			item, err := attributevalue.MarshalMap(rec)
			require.NoError(t, err)
			out := &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item, item}}
			if page == 1 {
				out.LastEvaluatedKey = map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: rec.PK},
				}
			}
			return out, nil
		}
		repo := NewDynamoDBExpenseRepository(mock, "expenses", "owner-status", slog.Default())

		records, err := repo.ListDetails(ctx, expense.ListFilter{
			UserID:    "user-1",
			BelongsTo: expense.BelongsToPurchase,
			Status:    expense.StatusEnable,
			Limit:     3,
		})
		require.NoError(t, err)
		assert.Len(t, records, 3)
		assert.Equal(t, 2, page)
	})
}

func TestExpenseRepositoryListTags(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the caller's enabled tag rows", func(t *testing.T) {
		ddb := NewTestClient()
		repo := NewDynamoDBExpenseRepository(ddb, "expenses", "owner-status", slog.Default())

		rec := testRecord(t, "user-1", "expense-1", expense.StatusEnable)
		tags := testTagsRecord(t, "user-1", "expense-1", expense.StatusEnable)
		require.NoError(t, repo.Save(ctx, rec, nil, false, tags))

		records, err := repo.ListTags(ctx, "user-1", expense.BelongsToPurchase, 2020, 2024)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, []string{"food"}, records[0].Details.Tags)
	})
}
