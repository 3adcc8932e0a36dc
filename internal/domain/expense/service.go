package expense

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
	"github.com/mfinch/myfinance-backend/internal/domain/receipt"
)

// Service implements the expense lifecycle for every variant: add, update,
// soft delete with a recovery window, status changes and reads. Writes are
// last-write-wins; concurrent updates to the same expense are not detected
// and the later commit stands.
type Service struct {
	repo         Repository
	receipts     *receipt.Reconciler
	refs         ReferenceChecker
	graceSeconds int64
	logger       *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, receipts *receipt.Reconciler, refs ReferenceChecker, graceSeconds int64, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		receipts:     receipts,
		refs:         refs,
		graceSeconds: graceSeconds,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Result is the outcome of a lifecycle write. ReceiptWarning is set when the
// database commit succeeded but the receipt store could not be brought in
// line; re-submitting the request reconciles the blobs.
type Result struct {
	Resource       *Resource
	Created        bool
	ReceiptWarning string
}

// Upsert adds or updates an expense. A request without a matching stored
// record is an add and gets a freshly minted id; a matching record is
// rewritten in place with its created audit pair preserved. The resulting
// status is always enable.
func (s *Service) Upsert(ctx context.Context, userID string, v Variant, req *Resource) (*Result, error) {
	fields := ValidateUpsert(req, v)
	fields, err := s.checkReferences(ctx, userID, req, v, fields)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, commonErrors.NewInvalidFieldsError(fields)
	}

	var existing *Record
	if req.ID != "" {
		rec, err := s.repo.GetDetails(ctx, req.ID, v.BelongsTo)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			if err := AssertOwnership(rec, userID); err != nil {
				return nil, err
			}
			if err := AssertNotPendingDelete(rec); err != nil {
				return nil, err
			}
			existing = rec
		}
	}

	expenseID := req.ID
	var existingReceipts []receipt.Detail
	var existingAudit *AuditDetails
	if existing != nil {
		expenseID = existing.Details.ID
		existingReceipts = existing.Details.Receipts
		existingAudit = &existing.Details.AuditDetails
	} else {
		expenseID = s.newID()
	}

	// Temp receipt uploads live under the id the client sent, which for a
	// brand-new expense is not the id the record is stored as.
	plan, err := s.receipts.Plan(ctx, req.Receipts, existingReceipts, req.ID, userID)
	if err != nil {
		return nil, err
	}
	finalReceipts, err := s.receipts.Finalize(ctx, plan)
	if err != nil {
		return nil, err
	}

	eventDate, err := NormalizeDate(req.EventDate)
	if err != nil {
		return nil, err
	}
	audit := UpdateAudit(existingAudit, userID, s.now())
	detail := Detail{
		ID:                expenseID,
		BillName:          req.BillName,
		Amount:            req.Amount,
		EventDate:         eventDate,
		VerifiedTimestamp: req.VerifiedTimestamp,
		CategoryID:        req.CategoryID,
		PaymentAccountID:  req.PaymentAccountID,
		ProfileID:         req.ProfileID,
		Status:            StatusEnable,
		Description:       req.Description,
		Tags:              nonNil(req.Tags),
		PersonIDs:         req.PersonIDs,
		Receipts:          finalReceipts,
		BelongsTo:         v.BelongsTo,
		RecordType:        RecordTypeDetails,
		AuditDetails:      audit,
	}

	rec, err := s.buildDetailsRecord(userID, detail)
	if err != nil {
		return nil, err
	}
	items, dropItems, err := s.buildItemsRecord(req.Items, v, expenseID, audit)
	if err != nil {
		return nil, err
	}
	tags, err := s.buildTagsRecord(userID, detail)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, rec, items, dropItems, tags); err != nil {
		return nil, err
	}

	warning := s.applyReceipts(ctx, plan, req.ID, expenseID, userID)
	return &Result{Resource: toResource(rec, items), Created: existing == nil, ReceiptWarning: warning}, nil
}

// Delete soft-deletes an enabled expense. All of its rows flip to deleted
// status and get a TTL timestamp one second past the recovery window; the
// table's TTL sweep removes them later. Receipt blobs are tagged for
// expiration after the commit, best effort.
func (s *Service) Delete(ctx context.Context, userID string, v Variant, expenseID string) (*Result, error) {
	rec, err := s.getOwned(ctx, userID, v, expenseID)
	if err != nil {
		return nil, err
	}
	if rec.Details.Status != StatusEnable {
		return nil, commonErrors.NewInvalidFieldsError([]commonErrors.InvalidField{{Path: "status", Message: "only enabled expenses can be deleted"}})
	}
	return s.transition(ctx, userID, v, rec, StatusDeleted)
}

// UpdateStatus moves an expense to the target status. Moving a
// pending-delete expense to any live status is a reversal: the TTL
// timestamps are cleared and the delete markers come off its receipt blobs.
// Moving to deleted behaves like Delete, minus its enabled-only
// precondition.
func (s *Service) UpdateStatus(ctx context.Context, userID string, v Variant, expenseID string, target Status) (*Result, error) {
	if !target.Valid() {
		return nil, commonErrors.NewInvalidFieldsError([]commonErrors.InvalidField{{Path: "status", Message: "incorrect value"}})
	}
	rec, err := s.getOwned(ctx, userID, v, expenseID)
	if err != nil {
		return nil, err
	}
	if rec.Details.Status == target {
		items, err := s.itemsFor(ctx, v, expenseID)
		if err != nil {
			return nil, err
		}
		return &Result{Resource: toResource(rec, items)}, nil
	}
	return s.transition(ctx, userID, v, rec, target)
}

// transition rewrites every row of the expense under the target status. One
// atomic write covers the details, items and tags rows.
func (s *Service) transition(ctx context.Context, userID string, v Variant, rec *Record, target Status) (*Result, error) {
	reversal := rec.ExpiresAt != nil && target != StatusDeleted

	detail := rec.Details
	detail.Status = target
	detail.AuditDetails = UpdateAudit(&rec.Details.AuditDetails, userID, s.now())

	updated, err := s.buildDetailsRecord(userID, detail)
	if err != nil {
		return nil, err
	}
	var expiresAt *int64
	if target == StatusDeleted {
		at := s.now().Add(time.Duration(s.graceSeconds+1) * time.Second).Unix()
		expiresAt = &at
	}
	updated.ExpiresAt = expiresAt

	var items *ItemsRecord
	if v.HasItems {
		items, err = s.repo.GetItems(ctx, detail.ID, v.BelongsTo)
		if err != nil {
			return nil, err
		}
		if items != nil {
			items.Details.AuditDetails = detail.AuditDetails
			items.ExpiresAt = expiresAt
		}
	}
	tags, err := s.buildTagsRecord(userID, detail)
	if err != nil {
		return nil, err
	}
	tags.ExpiresAt = expiresAt

	if err := s.repo.Save(ctx, updated, items, false, tags); err != nil {
		return nil, err
	}

	actions := &receipt.Actions{}
	switch {
	case target == StatusDeleted:
		actions.ToRemove = detail.Receipts
	case reversal:
		actions.ToReverseRemove = detail.Receipts
	}
	warning := s.applyReceipts(ctx, actions, detail.ID, detail.ID, userID)
	return &Result{Resource: toResource(updated, items), ReceiptWarning: warning}, nil
}

// Get returns one expense with its line items. Pending-delete expenses are
// not readable.
func (s *Service) Get(ctx context.Context, userID string, v Variant, expenseID string) (*Resource, error) {
	rec, err := s.getOwned(ctx, userID, v, expenseID)
	if err != nil {
		return nil, err
	}
	if err := AssertNotPendingDelete(rec); err != nil {
		return nil, err
	}
	items, err := s.itemsFor(ctx, v, expenseID)
	if err != nil {
		return nil, err
	}
	return toResource(rec, items), nil
}

// List returns the caller's expenses of one variant from the owner-status
// index, newest first unless asked otherwise.
func (s *Service) List(ctx context.Context, userID string, v Variant, filter ListFilter) ([]Resource, error) {
	if filter.Status == "" {
		filter.Status = StatusEnable
	}
	if !filter.Status.Valid() {
		return nil, commonErrors.NewInvalidFieldsError([]commonErrors.InvalidField{{Path: "status", Message: "incorrect value"}})
	}
	for _, date := range []string{filter.StartDate, filter.EndDate} {
		if date == "" {
			continue
		}
		if _, err := NormalizeDate(date); err != nil {
			return nil, commonErrors.NewInvalidFieldsError([]commonErrors.InvalidField{{Path: "date", Message: "incorrect format"}})
		}
	}
	filter.UserID = userID
	filter.BelongsTo = v.BelongsTo

	records, err := s.repo.ListDetails(ctx, filter)
	if err != nil {
		return nil, err
	}
	resources := make([]Resource, 0, len(records))
	for i := range records {
		resources = append(resources, *toResource(&records[i], nil))
	}
	return resources, nil
}

// TagList returns the distinct tags the caller used on one variant within a
// year range, sorted.
func (s *Service) TagList(ctx context.Context, userID string, v Variant, startYear, endYear int) ([]string, error) {
	if startYear > endYear {
		startYear, endYear = endYear, startYear
	}
	records, err := s.repo.ListTags(ctx, userID, v.BelongsTo, startYear, endYear)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var tags []string
	for _, rec := range records {
		for _, tag := range rec.Details.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *Service) getOwned(ctx context.Context, userID string, v Variant, expenseID string) (*Record, error) {
	if !isValidID(expenseID) {
		return nil, commonErrors.NewInvalidFieldsError([]commonErrors.InvalidField{{Path: "expenseId", Message: "must be a version 4 uuid"}})
	}
	rec, err := s.repo.GetDetails(ctx, expenseID, v.BelongsTo)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, commonErrors.NewNotFoundError(fmt.Sprintf("%s expense doesn't exist", v.BelongsTo))
	}
	if err := AssertOwnership(rec, userID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) itemsFor(ctx context.Context, v Variant, expenseID string) (*ItemsRecord, error) {
	if !v.HasItems {
		return nil, nil
	}
	return s.repo.GetItems(ctx, expenseID, v.BelongsTo)
}

func (s *Service) checkReferences(ctx context.Context, userID string, req *Resource, v Variant, fields []commonErrors.InvalidField) ([]commonErrors.InvalidField, error) {
	if req.CategoryID != "" && isValidID(req.CategoryID) {
		ok, err := s.refs.IsValidCategory(ctx, userID, req.CategoryID, v.BelongsTo)
		if err != nil {
			return nil, err
		}
		if !ok {
			fields = append(fields, commonErrors.InvalidField{Path: v.CategoryField, Message: "doesn't exist"})
		}
	}
	if req.PaymentAccountID != "" && isValidID(req.PaymentAccountID) {
		ok, err := s.refs.IsValidPaymentAccount(ctx, userID, req.PaymentAccountID)
		if err != nil {
			return nil, err
		}
		if !ok {
			fields = append(fields, commonErrors.InvalidField{Path: "paymentAccountId", Message: "doesn't exist"})
		}
	}
	return fields, nil
}

func (s *Service) buildDetailsRecord(userID string, detail Detail) (*Record, error) {
	pk, err := DetailsKey(detail.ID, detail.BelongsTo)
	if err != nil {
		return nil, err
	}
	gsiPK, err := DetailsIndexKey(userID, detail.Status, detail.BelongsTo)
	if err != nil {
		return nil, err
	}
	gsiSK, err := DateSortKey(detail.EventDate)
	if err != nil {
		return nil, err
	}
	belongsToAttr, err := BelongsToAttr(detail.BelongsTo)
	if err != nil {
		return nil, err
	}
	return &Record{PK: pk, GsiPK: gsiPK, GsiSK: gsiSK, GsiBelongsTo: belongsToAttr, Details: detail}, nil
}

func (s *Service) buildItemsRecord(items []Item, v Variant, expenseID string, audit AuditDetails) (*ItemsRecord, bool, error) {
	if !v.HasItems {
		return nil, false, nil
	}
	if len(items) == 0 {
		// An empty item list on an update clears the row.
		return nil, true, nil
	}
	pk, err := ItemsKey(expenseID, v.BelongsTo)
	if err != nil {
		return nil, false, err
	}
	stored := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = s.newID()
		}
		item.Tags = nonNil(item.Tags)
		stored = append(stored, item)
	}
	return &ItemsRecord{
		PK: pk,
		Details: ItemsDetail{
			ID:           expenseID,
			Items:        stored,
			RecordType:   RecordTypeItems,
			AuditDetails: audit,
		},
	}, false, nil
}

func (s *Service) buildTagsRecord(userID string, detail Detail) (*TagsRecord, error) {
	pk, err := TagsKey(detail.ID, detail.BelongsTo)
	if err != nil {
		return nil, err
	}
	gsiPK, err := TagsIndexKey(userID, detail.Status, detail.BelongsTo)
	if err != nil {
		return nil, err
	}
	gsiSK, err := YearSortKey(detail.EventDate)
	if err != nil {
		return nil, err
	}
	return &TagsRecord{
		PK:    pk,
		GsiPK: gsiPK,
		GsiSK: gsiSK,
		Details: TagsDetail{
			ID:           detail.ID,
			BelongsTo:    detail.BelongsTo,
			Tags:         nonNil(detail.Tags),
			RecordType:   RecordTypeTags,
			AuditDetails: detail.AuditDetails,
		},
	}, nil
}

func (s *Service) applyReceipts(ctx context.Context, actions *receipt.Actions, uploadID, expenseID, userID string) string {
	if err := s.receipts.Apply(ctx, actions, uploadID, expenseID, userID); err != nil {
		s.logger.Error("receipt store update failed after commit",
			"expenseId", expenseID,
			"error", err)
		return "receipt storage update did not complete; re-submitting the request will reconcile it"
	}
	return ""
}

func toResource(rec *Record, items *ItemsRecord) *Resource {
	d := rec.Details
	audit := d.AuditDetails
	res := &Resource{
		ID:                d.ID,
		BillName:          d.BillName,
		Amount:            d.Amount,
		EventDate:         d.EventDate,
		VerifiedTimestamp: d.VerifiedTimestamp,
		CategoryID:        d.CategoryID,
		PaymentAccountID:  d.PaymentAccountID,
		ProfileID:         d.ProfileID,
		Status:            d.Status,
		Description:       d.Description,
		Tags:              nonNil(d.Tags),
		PersonIDs:         d.PersonIDs,
		Receipts:          receiptResources(d.Receipts),
		BelongsTo:         d.BelongsTo,
		ExpiresAt:         rec.ExpiresAt,
		AuditDetails:      &audit,
	}
	if items != nil {
		res.Items = items.Details.Items
	}
	return res
}

func receiptResources(details []receipt.Detail) []receipt.Resource {
	out := make([]receipt.Resource, 0, len(details))
	for _, det := range details {
		out = append(out, receipt.Resource{ID: det.ID, Name: det.Name, ContentType: det.ContentType, Size: det.Size})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
