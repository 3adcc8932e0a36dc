package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
	"github.com/mfinch/myfinance-backend/internal/domain/expense"
	"github.com/mfinch/myfinance-backend/internal/platform/dynamodb/client"
	"github.com/mfinch/myfinance-backend/internal/platform/dynamodb/txwriter"
)

// DynamoDBExpenseRepository implements the expense.Repository interface
type DynamoDBExpenseRepository struct {
	client client.Client
	table  string
	index  string
	logger *slog.Logger
}

// NewDynamoDBExpenseRepository creates a new DynamoDBExpenseRepository
func NewDynamoDBExpenseRepository(client client.Client, table, index string, logger *slog.Logger) *DynamoDBExpenseRepository {
	return &DynamoDBExpenseRepository{
		client: client,
		table:  table,
		index:  index,
		logger: logger,
	}
}

// GetDetails retrieves the details row of an expense, or nil when absent.
func (r *DynamoDBExpenseRepository) GetDetails(ctx context.Context, id string, belongsTo expense.BelongsTo) (*expense.Record, error) {
	pk, err := expense.DetailsKey(id, belongsTo)
	if err != nil {
		return nil, err
	}
	item, err := r.getItem(ctx, pk)
	if err != nil || item == nil {
		return nil, err
	}
	var rec expense.Record
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal expense details", err)
	}
	return &rec, nil
}

// GetItems retrieves the items row of an expense, or nil when absent.
func (r *DynamoDBExpenseRepository) GetItems(ctx context.Context, id string, belongsTo expense.BelongsTo) (*expense.ItemsRecord, error) {
	pk, err := expense.ItemsKey(id, belongsTo)
	if err != nil {
		return nil, err
	}
	item, err := r.getItem(ctx, pk)
	if err != nil || item == nil {
		return nil, err
	}
	var rec expense.ItemsRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal expense items", err)
	}
	return &rec, nil
}

// GetTags retrieves the tags row of an expense, or nil when absent.
func (r *DynamoDBExpenseRepository) GetTags(ctx context.Context, id string, belongsTo expense.BelongsTo) (*expense.TagsRecord, error) {
	pk, err := expense.TagsKey(id, belongsTo)
	if err != nil {
		return nil, err
	}
	item, err := r.getItem(ctx, pk)
	if err != nil || item == nil {
		return nil, err
	}
	var rec expense.TagsRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal expense tags", err)
	}
	return &rec, nil
}

// Save writes the expense's rows in one transaction. Either every row lands
// or none does; rows are always written whole, so attributes missing from
// the new image (like a cleared TTL) disappear with the write.
func (r *DynamoDBExpenseRepository) Save(ctx context.Context, rec *expense.Record, items *expense.ItemsRecord, dropItems bool, tags *expense.TagsRecord) error {
	if rec == nil {
		return commonErrors.NewIllegalArgumentError("details record is required")
	}
	w := txwriter.New(r.client, r.logger)

	detailsItem, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return commonErrors.NewInternalError("failed to marshal expense details", err)
	}
	w.Put(r.table, detailsItem)

	if items != nil {
		itemsItem, err := attributevalue.MarshalMap(items)
		if err != nil {
			return commonErrors.NewInternalError("failed to marshal expense items", err)
		}
		w.Put(r.table, itemsItem)
	} else if dropItems {
		pk, err := expense.ItemsKey(rec.Details.ID, rec.Details.BelongsTo)
		if err != nil {
			return err
		}
		w.Delete(r.table, map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
		})
	}

	if tags != nil {
		tagsItem, err := attributevalue.MarshalMap(tags)
		if err != nil {
			return commonErrors.NewInternalError("failed to marshal expense tags", err)
		}
		w.Put(r.table, tagsItem)
	}

	if err := w.Execute(ctx); err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			return commonErrors.NewConflictError("expense write was canceled by a conflicting operation")
		}
		return commonErrors.NewInternalError("failed to save expense", err)
	}
	return nil
}

// ListDetails queries details rows from the owner-status index.
func (r *DynamoDBExpenseRepository) ListDetails(ctx context.Context, filter expense.ListFilter) ([]expense.Record, error) {
	gsiPK, err := expense.DetailsIndexKey(filter.UserID, filter.Status, filter.BelongsTo)
	if err != nil {
		return nil, err
	}

	keyCondition := expression.Key("US_GSI_PK").Equal(expression.Value(gsiPK))
	switch {
	case filter.StartDate != "" && filter.EndDate != "":
		keyCondition = keyCondition.And(
			expression.Key("US_GSI_SK").Between(
				expression.Value(fmt.Sprintf("expenseDate#%s", filter.StartDate)),
				expression.Value(fmt.Sprintf("expenseDate#%s￿", filter.EndDate)),
			),
		)
	case filter.StartDate != "":
		keyCondition = keyCondition.And(
			expression.Key("US_GSI_SK").GreaterThanEqual(
				expression.Value(fmt.Sprintf("expenseDate#%s", filter.StartDate)),
			),
		)
	case filter.EndDate != "":
		keyCondition = keyCondition.And(
			expression.Key("US_GSI_SK").LessThanEqual(
				expression.Value(fmt.Sprintf("expenseDate#%s￿", filter.EndDate)),
			),
		)
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(r.index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(filter.Ascending),
	}
	if filter.Limit > 0 {
		input.Limit = aws.Int32(filter.Limit)
	}

	items, err := r.queryAll(ctx, input, filter.Limit)
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to query expenses", err)
	}

	var records []expense.Record
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal expenses", err)
	}
	return records, nil
}

// ListTags queries tags rows from the owner-status index for a year range.
func (r *DynamoDBExpenseRepository) ListTags(ctx context.Context, userID string, belongsTo expense.BelongsTo, startYear, endYear int) ([]expense.TagsRecord, error) {
	gsiPK, err := expense.TagsIndexKey(userID, expense.StatusEnable, belongsTo)
	if err != nil {
		return nil, err
	}

	keyCondition := expression.Key("US_GSI_PK").Equal(expression.Value(gsiPK)).
		And(expression.Key("US_GSI_SK").Between(
			expression.Value(expense.YearKey(strconv.Itoa(startYear))),
			expression.Value(expense.YearKey(strconv.Itoa(endYear))+"￿"),
		))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	items, err := r.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(r.index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, 0)
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to query expense tags", err)
	}

	var records []expense.TagsRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal expense tags", err)
	}
	return records, nil
}

func (r *DynamoDBExpenseRepository) getItem(ctx context.Context, pk string) (map[string]types.AttributeValue, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
		},
	})
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to get item", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

// queryAll follows LastEvaluatedKey until the query is exhausted or the
// requested limit is reached.
func (r *DynamoDBExpenseRepository) queryAll(ctx context.Context, input *dynamodb.QueryInput, limit int32) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if limit > 0 && int32(len(items)) >= limit {
			return items[:limit], nil
		}
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
