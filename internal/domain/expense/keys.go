package expense

import (
	"fmt"
	"regexp"
	"time"

	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
)

// Key builders for the expense table and its owner-status index. Every
// builder is a pure function of its inputs and rejects empty parts: a key
// with a hole in it would silently address the wrong partition.

const dateLayout = "2006-01-02"

var yearPattern = regexp.MustCompile(`^\d{4}$`)

func recordKey(id string, belongsTo BelongsTo, recordType RecordType) (string, error) {
	if id == "" {
		return "", commonErrors.NewIllegalArgumentError("expense id is required to build a record key")
	}
	if !belongsTo.Valid() {
		return "", commonErrors.NewIllegalArgumentError(fmt.Sprintf("invalid belongsTo %q for record key", belongsTo))
	}
	return fmt.Sprintf("%sId#%s#%s", belongsTo, id, recordType), nil
}

// DetailsKey is the partition key of an expense details row.
func DetailsKey(id string, belongsTo BelongsTo) (string, error) {
	return recordKey(id, belongsTo, RecordTypeDetails)
}

// ItemsKey is the partition key of an expense items row.
func ItemsKey(id string, belongsTo BelongsTo) (string, error) {
	return recordKey(id, belongsTo, RecordTypeItems)
}

// TagsKey is the partition key of an expense tags row.
func TagsKey(id string, belongsTo BelongsTo) (string, error) {
	return recordKey(id, belongsTo, RecordTypeTags)
}

func ownerStatusKey(userID string, status Status, suffix string) (string, error) {
	if userID == "" {
		return "", commonErrors.NewIllegalArgumentError("user id is required to build an index key")
	}
	if !status.Valid() {
		return "", commonErrors.NewIllegalArgumentError(fmt.Sprintf("invalid status %q for index key", status))
	}
	return fmt.Sprintf("userId#%s#status#%s#%s", userID, status, suffix), nil
}

// DetailsIndexKey is the owner-status index partition of a details row.
func DetailsIndexKey(userID string, status Status, belongsTo BelongsTo) (string, error) {
	if !belongsTo.Valid() {
		return "", commonErrors.NewIllegalArgumentError(fmt.Sprintf("invalid belongsTo %q for index key", belongsTo))
	}
	return ownerStatusKey(userID, status, string(belongsTo))
}

// TagsIndexKey is the owner-status index partition of a tags row. The #tags
// suffix keeps tag mirrors out of details queries.
func TagsIndexKey(userID string, status Status, belongsTo BelongsTo) (string, error) {
	if !belongsTo.Valid() {
		return "", commonErrors.NewIllegalArgumentError(fmt.Sprintf("invalid belongsTo %q for index key", belongsTo))
	}
	return ownerStatusKey(userID, status, string(belongsTo)+"#tags")
}

// DateSortKey is the index sort key of a details row, derived from the
// expense's event date.
func DateSortKey(date string) (string, error) {
	normalized, err := NormalizeDate(date)
	if err != nil {
		return "", err
	}
	return "expenseDate#" + normalized, nil
}

// YearSortKey is the index sort key of a tags row, derived from the
// expense's event date.
func YearSortKey(date string) (string, error) {
	normalized, err := NormalizeDate(date)
	if err != nil {
		return "", err
	}
	return YearKey(normalized[:4]), nil
}

// YearKey builds a tags sort key from a bare four-digit year.
func YearKey(year string) string {
	return "year#" + year
}

// BelongsToAttr is the index attribute that discriminates variants inside a
// shared owner-status partition.
func BelongsToAttr(belongsTo BelongsTo) (string, error) {
	if !belongsTo.Valid() {
		return "", commonErrors.NewIllegalArgumentError(fmt.Sprintf("invalid belongsTo %q for index attribute", belongsTo))
	}
	return "expenseBelongsTo#" + string(belongsTo), nil
}

// NormalizeDate accepts a calendar date or an RFC 3339 timestamp and returns
// the UTC calendar date in YYYY-MM-DD form.
func NormalizeDate(date string) (string, error) {
	if date == "" {
		return "", commonErrors.NewIllegalArgumentError("date is required")
	}
	if t, err := time.Parse(dateLayout, date); err == nil {
		return t.Format(dateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.UTC().Format(dateLayout), nil
	}
	return "", commonErrors.NewIllegalArgumentError(fmt.Sprintf("unparseable date %q", date))
}

// IsYear reports whether s is a bare four-digit year.
func IsYear(s string) bool {
	return yearPattern.MatchString(s)
}
