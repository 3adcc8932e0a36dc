package expense

import (
	"fmt"

	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
)

// Variant describes how one expense flavor maps onto the shared lifecycle.
// All four variants share keys, authorization, soft delete and receipt
// handling; they differ only in the API names of the date and category
// fields and in whether line items exist.
type Variant struct {
	BelongsTo     BelongsTo
	DateField     string
	CategoryField string
	HasItems      bool
}

var variants = map[BelongsTo]Variant{
	BelongsToPurchase:   {BelongsTo: BelongsToPurchase, DateField: "purchasedDate", CategoryField: "purchaseTypeId", HasItems: true},
	BelongsToIncome:     {BelongsTo: BelongsToIncome, DateField: "incomeDate", CategoryField: "incomeTypeId"},
	BelongsToRefund:     {BelongsTo: BelongsToRefund, DateField: "refundDate", CategoryField: "reasonId"},
	BelongsToInvestment: {BelongsTo: BelongsToInvestment, DateField: "investmentDate", CategoryField: "investmentTypeId"},
}

// VariantFor resolves the descriptor for a belongsTo value.
func VariantFor(b BelongsTo) (Variant, error) {
	v, ok := variants[b]
	if !ok {
		return Variant{}, commonErrors.NewIllegalArgumentError(fmt.Sprintf("unknown expense variant %q", b))
	}
	return v, nil
}
