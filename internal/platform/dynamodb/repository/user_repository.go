package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
	"github.com/mfinch/myfinance-backend/internal/domain/user"
	"github.com/mfinch/myfinance-backend/internal/platform/dynamodb/client"
)

// DynamoDBUserRepository implements the user.Repository interface
type DynamoDBUserRepository struct {
	client client.Client
	table  string
	index  string
	logger *slog.Logger
}

// NewDynamoDBUserRepository creates a new DynamoDBUserRepository
func NewDynamoDBUserRepository(client client.Client, table, index string, logger *slog.Logger) *DynamoDBUserRepository {
	return &DynamoDBUserRepository{
		client: client,
		table:  table,
		index:  index,
		logger: logger,
	}
}

type userRow struct {
	PK      string       `json:"PK"`
	EmailPK string       `json:"E_GSI_PK"`
	Details user.Details `json:"details"`
}

// GetByEmail looks the user up through the email index.
func (r *DynamoDBUserRepository) GetByEmail(ctx context.Context, email string) (*user.Details, error) {
	keyCondition := expression.Key("E_GSI_PK").Equal(expression.Value(fmt.Sprintf("emailId#%s", email)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(r.index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to query user by email", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var row userRow
	if err := attributevalue.UnmarshalMap(out.Items[0], &row); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal user", err)
	}
	return &row.Details, nil
}

// GetByID fetches the user's details row directly.
func (r *DynamoDBUserRepository) GetByID(ctx context.Context, id string) (*user.Details, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("userId#%s#details", id)},
		},
	})
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to get user", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var row userRow
	if err := attributevalue.UnmarshalMap(out.Item, &row); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal user", err)
	}
	return &row.Details, nil
}
