package expense

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfinch/myfinance-backend/internal/domain/receipt"
)

const (
	validID      = "9a6ad63d-17d5-4e16-a64e-5f26333f38cc"
	validOtherID = "f33cbfd1-f1f5-4361-ac0c-a28ab1dcb6ac"
)

func validPurchase() *Resource {
	return &Resource{
		BillName:  "Grocery run",
		Amount:    "42.50",
		EventDate: "2023-07-15",
	}
}

func paths(t *testing.T, req *Resource, v Variant) []string {
	t.Helper()
	fields := ValidateUpsert(req, v)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Path)
	}
	return out
}

func TestValidateUpsert(t *testing.T) {
	purchase, err := VariantFor(BelongsToPurchase)
	require.NoError(t, err)
	income, err := VariantFor(BelongsToIncome)
	require.NoError(t, err)

	t.Run("minimal valid request", func(t *testing.T) {
		assert.Empty(t, ValidateUpsert(validPurchase(), purchase))
	})

	t.Run("fully populated valid request", func(t *testing.T) {
		req := validPurchase()
		req.ID = validID
		req.VerifiedTimestamp = "2023-07-15T10:30:00Z"
		req.CategoryID = validOtherID
		req.PaymentAccountID = validOtherID
		req.ProfileID = validOtherID
		req.Status = StatusEnable
		req.Description = "weekly shop"
		req.Tags = []string{"food", "weekly"}
		req.PersonIDs = []string{validOtherID}
		req.Receipts = []receipt.Resource{{Name: "receipt.jpg"}}
		req.Items = []Item{{BillName: "Milk", Amount: "3.50"}}
		assert.Empty(t, ValidateUpsert(req, purchase))
	})

	t.Run("every broken field is reported", func(t *testing.T) {
		req := &Resource{
			ID:        "not-a-uuid",
			BillName:  "x",
			Amount:    "abc",
			EventDate: "15/07/2023",
		}
		got := paths(t, req, purchase)
		assert.ElementsMatch(t, []string{"id", "billName", "amount", "purchasedDate"}, got)
	})

	t.Run("date path follows the variant", func(t *testing.T) {
		req := validPurchase()
		req.EventDate = "bad"
		assert.Equal(t, []string{"incomeDate"}, paths(t, req, income))
	})

	t.Run("category path follows the variant", func(t *testing.T) {
		req := validPurchase()
		req.CategoryID = "nope"
		assert.Equal(t, []string{"purchaseTypeId"}, paths(t, req, purchase))
		assert.Equal(t, []string{"incomeTypeId"}, paths(t, req, income))
	})

	t.Run("status may only be enable", func(t *testing.T) {
		req := validPurchase()
		req.Status = StatusDisable
		assert.Equal(t, []string{"status"}, paths(t, req, purchase))
	})

	t.Run("bill name bounds", func(t *testing.T) {
		for _, name := range []string{"a", strings.Repeat("a", 51), "bad|name"} {
			req := validPurchase()
			req.BillName = name
			assert.Equal(t, []string{"billName"}, paths(t, req, purchase), name)
		}
	})

	t.Run("amount bounds", func(t *testing.T) {
		valid := []string{"0", "-42.50", "10000000", "-10000000", "0.99"}
		for _, amount := range valid {
			req := validPurchase()
			req.Amount = amount
			assert.Empty(t, paths(t, req, purchase), amount)
		}
		invalid := []string{"", "abc", "10000000.01", "-10000001", "1.999"}
		for _, amount := range invalid {
			req := validPurchase()
			req.Amount = amount
			assert.Equal(t, []string{"amount"}, paths(t, req, purchase), amount)
		}
	})

	t.Run("description bounds", func(t *testing.T) {
		req := validPurchase()
		req.Description = strings.Repeat("a", 151)
		assert.Equal(t, []string{"description"}, paths(t, req, purchase))
	})

	t.Run("tag bounds", func(t *testing.T) {
		req := validPurchase()
		req.Tags = []string{"a"}
		assert.Equal(t, []string{"tags"}, paths(t, req, purchase))

		req = validPurchase()
		req.Tags = []string{"has space"}
		assert.Equal(t, []string{"tags"}, paths(t, req, purchase))

		req = validPurchase()
		for i := 0; i < 11; i++ {
			req.Tags = append(req.Tags, "tag"+strings.Repeat("x", 3))
		}
		assert.Equal(t, []string{"tags"}, paths(t, req, purchase))
	})

	t.Run("person ids must be uuids", func(t *testing.T) {
		req := validPurchase()
		req.PersonIDs = []string{validOtherID, "nope"}
		assert.Equal(t, []string{"personIds"}, paths(t, req, purchase))
	})

	t.Run("receipts require an expense id", func(t *testing.T) {
		req := validPurchase()
		req.Receipts = []receipt.Resource{{Name: "receipt.jpg"}}
		got := ValidateUpsert(req, purchase)
		require.Len(t, got, 1)
		assert.Equal(t, "receipts", got[0].Path)
		assert.Contains(t, got[0].Message, "expense id")
	})

	t.Run("too many receipts", func(t *testing.T) {
		req := validPurchase()
		req.ID = validID
		for i := 0; i < 6; i++ {
			req.Receipts = append(req.Receipts, receipt.Resource{Name: "receipt.jpg"})
		}
		assert.Equal(t, []string{"receipts"}, paths(t, req, purchase))
	})

	t.Run("items on a variant without items", func(t *testing.T) {
		req := validPurchase()
		req.Items = []Item{{BillName: "Milk", Amount: "3.50"}}
		got := ValidateUpsert(req, income)
		require.Len(t, got, 1)
		assert.Equal(t, "expenseItems", got[0].Path)
	})

	t.Run("item fields carry indexed paths", func(t *testing.T) {
		req := validPurchase()
		req.Items = []Item{
			{BillName: "Milk", Amount: "3.50"},
			{BillName: "x", Amount: "abc"},
		}
		got := paths(t, req, purchase)
		assert.ElementsMatch(t, []string{"expenseItems[1].billName", "expenseItems[1].amount"}, got)
	})
}
