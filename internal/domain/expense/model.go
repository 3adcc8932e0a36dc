package expense

import (
	"github.com/mfinch/myfinance-backend/internal/domain/receipt"
)

// Status is the lifecycle state of an expense.
type Status string

const (
	StatusEnable  Status = "enable"
	StatusDisable Status = "disable"
	StatusDeleted Status = "deleted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusEnable, StatusDisable, StatusDeleted:
		return true
	}
	return false
}

// BelongsTo identifies the expense variant a record belongs to.
type BelongsTo string

const (
	BelongsToPurchase   BelongsTo = "purchase"
	BelongsToIncome     BelongsTo = "income"
	BelongsToRefund     BelongsTo = "refund"
	BelongsToInvestment BelongsTo = "investment"
)

func (b BelongsTo) Valid() bool {
	switch b {
	case BelongsToPurchase, BelongsToIncome, BelongsToRefund, BelongsToInvestment:
		return true
	}
	return false
}

// RecordType is the row flavor sharing an expense's partition key space.
type RecordType string

const (
	RecordTypeDetails RecordType = "details"
	RecordTypeItems   RecordType = "items"
	RecordTypeTags    RecordType = "tags"
)

// AuditDetails tracks who touched a record and when. CreatedBy and CreatedOn
// are set once and survive every later write.
type AuditDetails struct {
	CreatedBy string `json:"createdBy"`
	UpdatedBy string `json:"updatedBy"`
	CreatedOn string `json:"createdOn"`
	UpdatedOn string `json:"updatedOn"`
}

// Detail is the payload of an expense details row.
type Detail struct {
	ID                string           `json:"id"`
	BillName          string           `json:"billName"`
	Amount            string           `json:"amount"`
	EventDate         string           `json:"eventDate"`
	VerifiedTimestamp string           `json:"verifiedTimestamp,omitempty"`
	CategoryID        string           `json:"categoryId,omitempty"`
	PaymentAccountID  string           `json:"paymentAccountId,omitempty"`
	ProfileID         string           `json:"profileId,omitempty"`
	Status            Status           `json:"status"`
	Description       string           `json:"description,omitempty"`
	Tags              []string         `json:"tags"`
	PersonIDs         []string         `json:"personIds,omitempty"`
	Receipts          []receipt.Detail `json:"receipts"`
	BelongsTo         BelongsTo        `json:"belongsTo"`
	RecordType        RecordType       `json:"recordType"`
	AuditDetails      AuditDetails     `json:"auditDetails"`
}

// Record is an expense details row as stored. The table has no sort key;
// every row is addressed by PK alone. The owner-status index keys bake the
// owner and status into the partition so ownership checks reduce to key
// equality.
type Record struct {
	PK           string `json:"PK"`
	GsiPK        string `json:"US_GSI_PK,omitempty"`
	GsiSK        string `json:"US_GSI_SK,omitempty"`
	GsiBelongsTo string `json:"US_GSI_BELONGSTO,omitempty"`
	ExpiresAt    *int64 `json:"ExpiresAt,omitempty"`
	Details      Detail `json:"details"`
}

// Item is one line item of a purchase.
type Item struct {
	ID          string   `json:"id,omitempty"`
	BillName    string   `json:"billName"`
	Amount      string   `json:"amount"`
	CategoryID  string   `json:"categoryId,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ItemsDetail is the payload of an expense items row. ID is the owning
// expense's ID.
type ItemsDetail struct {
	ID           string       `json:"id"`
	Items        []Item       `json:"expenseItems"`
	RecordType   RecordType   `json:"recordType"`
	AuditDetails AuditDetails `json:"auditDetails"`
}

// ItemsRecord is an expense items row as stored. Items rows are not
// projected into the owner-status index.
type ItemsRecord struct {
	PK        string      `json:"PK"`
	ExpiresAt *int64      `json:"ExpiresAt,omitempty"`
	Details   ItemsDetail `json:"details"`
}

// TagsDetail is the payload of an expense tags row, a mirror of the details
// row's tag list that the index can serve without touching details rows.
type TagsDetail struct {
	ID           string       `json:"id"`
	BelongsTo    BelongsTo    `json:"belongsTo"`
	Tags         []string     `json:"tags"`
	RecordType   RecordType   `json:"recordType"`
	AuditDetails AuditDetails `json:"auditDetails"`
}

// TagsRecord is an expense tags row as stored. Its index partition carries a
// #tags suffix so tag queries never collide with details queries, and its
// sort key is the event year.
type TagsRecord struct {
	PK        string     `json:"PK"`
	GsiPK     string     `json:"US_GSI_PK,omitempty"`
	GsiSK     string     `json:"US_GSI_SK,omitempty"`
	ExpiresAt *int64     `json:"ExpiresAt,omitempty"`
	Details   TagsDetail `json:"details"`
}

// Resource is the API shape of an expense.
type Resource struct {
	ID                string             `json:"id,omitempty"`
	BillName          string             `json:"billName"`
	Amount            string             `json:"amount"`
	EventDate         string             `json:"eventDate"`
	VerifiedTimestamp string             `json:"verifiedTimestamp,omitempty"`
	CategoryID        string             `json:"categoryId,omitempty"`
	PaymentAccountID  string             `json:"paymentAccountId,omitempty"`
	ProfileID         string             `json:"profileId,omitempty"`
	Status            Status             `json:"status,omitempty"`
	Description       string             `json:"description,omitempty"`
	Tags              []string           `json:"tags"`
	PersonIDs         []string           `json:"personIds,omitempty"`
	Receipts          []receipt.Resource `json:"receipts"`
	Items             []Item             `json:"expenseItems,omitempty"`
	BelongsTo         BelongsTo          `json:"belongsTo,omitempty"`
	ExpiresAt         *int64             `json:"expiresAt,omitempty"`
	AuditDetails      *AuditDetails      `json:"auditDetails,omitempty"`
}
