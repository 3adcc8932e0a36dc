package expense

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordKeys(t *testing.T) {
	t.Run("details key", func(t *testing.T) {
		pk, err := DetailsKey("9a6ad63d-17d5-4e16-a64e-5f26333f38cc", BelongsToPurchase)
		require.NoError(t, err)
		assert.Equal(t, "purchaseId#9a6ad63d-17d5-4e16-a64e-5f26333f38cc#details", pk)
	})

	t.Run("items key", func(t *testing.T) {
		pk, err := ItemsKey("9a6ad63d-17d5-4e16-a64e-5f26333f38cc", BelongsToPurchase)
		require.NoError(t, err)
		assert.Equal(t, "purchaseId#9a6ad63d-17d5-4e16-a64e-5f26333f38cc#items", pk)
	})

	t.Run("tags key", func(t *testing.T) {
		pk, err := TagsKey("9a6ad63d-17d5-4e16-a64e-5f26333f38cc", BelongsToIncome)
		require.NoError(t, err)
		assert.Equal(t, "incomeId#9a6ad63d-17d5-4e16-a64e-5f26333f38cc#tags", pk)
	})

	t.Run("same inputs yield same key", func(t *testing.T) {
		first, err := DetailsKey("id-1", BelongsToRefund)
		require.NoError(t, err)
		second, err := DetailsKey("id-1", BelongsToRefund)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		_, err := DetailsKey("", BelongsToPurchase)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ILLEGAL_ARGUMENT")
	})

	t.Run("unknown variant is rejected", func(t *testing.T) {
		_, err := DetailsKey("id-1", BelongsTo("subscription"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ILLEGAL_ARGUMENT")
	})
}

func TestIndexKeys(t *testing.T) {
	t.Run("details index key", func(t *testing.T) {
		pk, err := DetailsIndexKey("user-1", StatusEnable, BelongsToPurchase)
		require.NoError(t, err)
		assert.Equal(t, "userId#user-1#status#enable#purchase", pk)
	})

	t.Run("tags index key carries the tags suffix", func(t *testing.T) {
		pk, err := TagsIndexKey("user-1", StatusEnable, BelongsToPurchase)
		require.NoError(t, err)
		assert.Equal(t, "userId#user-1#status#enable#purchase#tags", pk)
	})

	t.Run("status changes the partition", func(t *testing.T) {
		enabled, err := DetailsIndexKey("user-1", StatusEnable, BelongsToIncome)
		require.NoError(t, err)
		deleted, err := DetailsIndexKey("user-1", StatusDeleted, BelongsToIncome)
		require.NoError(t, err)
		assert.NotEqual(t, enabled, deleted)
	})

	t.Run("empty user id is rejected", func(t *testing.T) {
		_, err := DetailsIndexKey("", StatusEnable, BelongsToPurchase)
		assert.Error(t, err)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		_, err := DetailsIndexKey("user-1", Status("archived"), BelongsToPurchase)
		assert.Error(t, err)
	})

	t.Run("belongsTo attribute", func(t *testing.T) {
		attr, err := BelongsToAttr(BelongsToInvestment)
		require.NoError(t, err)
		assert.Equal(t, "expenseBelongsTo#investment", attr)
	})
}

func TestSortKeys(t *testing.T) {
	t.Run("date sort key", func(t *testing.T) {
		sk, err := DateSortKey("2023-07-15")
		require.NoError(t, err)
		assert.Equal(t, "expenseDate#2023-07-15", sk)
	})

	t.Run("year sort key", func(t *testing.T) {
		sk, err := YearSortKey("2023-07-15")
		require.NoError(t, err)
		assert.Equal(t, "year#2023", sk)
	})

	t.Run("year key from bare year", func(t *testing.T) {
		assert.Equal(t, "year#2024", YearKey("2024"))
	})

	t.Run("invalid date is rejected", func(t *testing.T) {
		_, err := DateSortKey("15/07/2023")
		assert.Error(t, err)
	})
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "calendar date", input: "2023-07-15", want: "2023-07-15"},
		{name: "rfc3339 timestamp", input: "2023-07-15T10:30:00Z", want: "2023-07-15"},
		{name: "rfc3339 with offset normalizes to utc", input: "2023-07-15T23:30:00-05:00", want: "2023-07-16"},
		{name: "empty", input: "", wantErr: true},
		{name: "slashes", input: "2023/07/15", wantErr: true},
		{name: "time only", input: "10:30:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsYear(t *testing.T) {
	assert.True(t, IsYear("2023"))
	assert.False(t, IsYear("202"))
	assert.False(t, IsYear("20235"))
	assert.False(t, IsYear("20x3"))
}
