package expense

import "context"

// ListFilter selects details rows from the owner-status index.
type ListFilter struct {
	UserID    string
	BelongsTo BelongsTo
	Status    Status
	StartDate string // inclusive, YYYY-MM-DD; empty for open start
	EndDate   string // inclusive, YYYY-MM-DD; empty for open end
	Ascending bool
	Limit     int32
}

// Repository is the persistence surface for expense rows. Save must apply
// every passed row in one all-or-nothing write; implementations back it with
// a transactional writer.
type Repository interface {
	GetDetails(ctx context.Context, id string, belongsTo BelongsTo) (*Record, error)
	GetItems(ctx context.Context, id string, belongsTo BelongsTo) (*ItemsRecord, error)
	GetTags(ctx context.Context, id string, belongsTo BelongsTo) (*TagsRecord, error)

	// Save writes the details row plus the optional items and tags rows
	// atomically. dropItems deletes the items row instead, for updates
	// that empty the item list.
	Save(ctx context.Context, rec *Record, items *ItemsRecord, dropItems bool, tags *TagsRecord) error

	ListDetails(ctx context.Context, filter ListFilter) ([]Record, error)
	ListTags(ctx context.Context, userID string, belongsTo BelongsTo, startYear, endYear int) ([]TagsRecord, error)
}

// ReferenceChecker verifies that ids a request points at exist, belong to
// the caller and are active.
type ReferenceChecker interface {
	IsValidCategory(ctx context.Context, userID, categoryID string, belongsTo BelongsTo) (bool, error)
	IsValidPaymentAccount(ctx context.Context, userID, accountID string) (bool, error)
}
