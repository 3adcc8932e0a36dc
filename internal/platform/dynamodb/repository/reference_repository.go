package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
	"github.com/mfinch/myfinance-backend/internal/domain/expense"
	"github.com/mfinch/myfinance-backend/internal/platform/dynamodb/client"
)

// categoryKinds maps an expense variant to the config type its category ids
// come from.
var categoryKinds = map[expense.BelongsTo]string{
	expense.BelongsToPurchase:   "purchase-type",
	expense.BelongsToIncome:     "income-type",
	expense.BelongsToRefund:     "refund-reason",
	expense.BelongsToInvestment: "investment-type",
}

// DynamoDBReferenceRepository implements the expense.ReferenceChecker
// interface against the config type and payment account tables.
type DynamoDBReferenceRepository struct {
	client              client.Client
	configTypeTable     string
	paymentAccountTable string
	logger              *slog.Logger
}

// NewDynamoDBReferenceRepository creates a new DynamoDBReferenceRepository
func NewDynamoDBReferenceRepository(client client.Client, configTypeTable, paymentAccountTable string, logger *slog.Logger) *DynamoDBReferenceRepository {
	return &DynamoDBReferenceRepository{
		client:              client,
		configTypeTable:     configTypeTable,
		paymentAccountTable: paymentAccountTable,
		logger:              logger,
	}
}

type referenceRow struct {
	PK      string `json:"PK"`
	GsiPK   string `json:"US_GSI_PK"`
	Details struct {
		ID        string `json:"id"`
		BelongsTo string `json:"belongsTo"`
		Status    string `json:"status"`
	} `json:"details"`
}

// IsValidCategory reports whether the category id names an enabled config
// type of the right kind owned by the caller.
func (r *DynamoDBReferenceRepository) IsValidCategory(ctx context.Context, userID, categoryID string, belongsTo expense.BelongsTo) (bool, error) {
	kind, ok := categoryKinds[belongsTo]
	if !ok {
		return false, commonErrors.NewIllegalArgumentError(fmt.Sprintf("no category kind for variant %q", belongsTo))
	}
	pk := fmt.Sprintf("configTypeId#%s#details", categoryID)
	row, err := r.getReference(ctx, r.configTypeTable, pk)
	if err != nil || row == nil {
		return false, err
	}
	expectedGsiPK := fmt.Sprintf("userId#%s#status#enable#%s", userID, kind)
	return row.GsiPK == expectedGsiPK && row.Details.BelongsTo == kind, nil
}

// IsValidPaymentAccount reports whether the account id names an enabled
// payment account owned by the caller.
func (r *DynamoDBReferenceRepository) IsValidPaymentAccount(ctx context.Context, userID, accountID string) (bool, error) {
	pk := fmt.Sprintf("pymtAccId#%s#details", accountID)
	row, err := r.getReference(ctx, r.paymentAccountTable, pk)
	if err != nil || row == nil {
		return false, err
	}
	expectedGsiPK := fmt.Sprintf("userId#%s#status#enable#paymentAccount", userID)
	return row.GsiPK == expectedGsiPK, nil
}

func (r *DynamoDBReferenceRepository) getReference(ctx context.Context, table, pk string) (*referenceRow, error) {
	if table == "" {
		return nil, commonErrors.NewInternalError("reference table is not configured", nil)
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
		},
	})
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to get reference item", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var row referenceRow
	if err := attributevalue.UnmarshalMap(out.Item, &row); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal reference item", err)
	}
	return &row, nil
}
