package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
)

// Actions is the outcome of diffing the submitted receipt list against the
// stored one. Each stored receipt lands in exactly one of ToRemove or
// NoChange, and each submitted receipt in exactly one of ToAdd or NoChange.
// ToReverseRemove is only populated by status reversal, to clear the delete
// marker off blobs that were tagged when the expense was soft-deleted.
type Actions struct {
	ToAdd           []Resource
	ToRemove        []Detail
	NoChange        []Detail
	ToReverseRemove []Detail

	heads map[string]*HeadDetails
	added []Detail
}

// Final is the receipt list the expense record should persist. Valid only
// after Finalize has minted IDs for the additions.
func (a *Actions) Final() []Detail {
	out := make([]Detail, 0, len(a.NoChange)+len(a.added)+len(a.ToReverseRemove))
	out = append(out, a.NoChange...)
	out = append(out, a.added...)
	out = append(out, a.ToReverseRemove...)
	return out
}

// Reconciler plans and applies receipt blob changes for an expense. Planning
// and finalizing are read-only against the store; Apply performs the copies
// and tag changes and is meant to run after the database commit.
type Reconciler struct {
	store      BlobStore
	tempPrefix string
	keyPrefix  string
	deleteTags map[string]string
	logger     *slog.Logger

	newID func() string
}

func NewReconciler(store BlobStore, tempPrefix, keyPrefix string, deleteTags map[string]string, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:      store,
		tempPrefix: tempPrefix,
		keyPrefix:  keyPrefix,
		deleteTags: deleteTags,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// TempKey is where the client uploaded a fresh receipt, addressed by file
// name under the ID the client used for the upload.
func (r *Reconciler) TempKey(userID, uploadID, name string) string {
	return strings.Join([]string{r.tempPrefix, userID, uploadID, name}, "/")
}

// ObjectKey is the permanent home of a receipt blob, addressed by the minted
// receipt ID.
func (r *Reconciler) ObjectKey(userID, expenseID, receiptID string) string {
	return strings.Join([]string{r.keyPrefix, userID, expenseID, receiptID}, "/")
}

// Plan diffs the submitted receipt list against the stored one and validates
// every fresh upload. uploadID is the expense ID the client uploaded temp
// blobs under, which for a brand-new expense differs from the ID the record
// will be stored as.
//
// When the stored list is non-empty, an addition whose name, content type and
// size all match a stored receipt is reclassified as unchanged, so that
// re-submitting the same file does not orphan a blob copy. An add-only
// request against an empty stored list skips that cross-check.
func (r *Reconciler) Plan(ctx context.Context, requested []Resource, existing []Detail, uploadID, userID string) (*Actions, error) {
	existingByID := make(map[string]Detail, len(existing))
	for _, det := range existing {
		existingByID[det.ID] = det
	}
	requestedIDs := make(map[string]struct{}, len(requested))
	for _, res := range requested {
		if res.ID != "" {
			requestedIDs[res.ID] = struct{}{}
		}
	}

	actions := &Actions{heads: make(map[string]*HeadDetails)}
	for _, res := range requested {
		if _, ok := existingByID[res.ID]; !ok {
			actions.ToAdd = append(actions.ToAdd, res)
		}
	}
	for _, det := range existing {
		if _, ok := requestedIDs[det.ID]; ok {
			actions.NoChange = append(actions.NoChange, det)
		} else {
			actions.ToRemove = append(actions.ToRemove, det)
		}
	}

	var invalid []commonErrors.InvalidField
	for _, res := range actions.ToAdd {
		head, err := r.store.Head(ctx, r.TempKey(userID, uploadID, res.Name))
		if err != nil {
			return nil, commonErrors.NewInternalError("looking up uploaded receipt", err)
		}
		if head == nil || head.ContentLength == 0 || head.LastModified.IsZero() {
			invalid = append(invalid, commonErrors.InvalidField{Path: "receipts", Message: fmt.Sprintf("receipt %q has not been uploaded", res.Name)})
			continue
		}
		if !ContentType(head.ContentType).Allowed() {
			invalid = append(invalid, commonErrors.InvalidField{Path: "receipts", Message: fmt.Sprintf("receipt %q has unsupported content type %s", res.Name, head.ContentType)})
			continue
		}
		if head.ContentLength < MinFileSizeBytes || head.ContentLength > MaxFileSizeBytes {
			invalid = append(invalid, commonErrors.InvalidField{Path: "receipts", Message: fmt.Sprintf("receipt %q size is out of bounds", res.Name)})
			continue
		}
		actions.heads[res.Name] = head
	}
	if len(invalid) > 0 {
		return nil, commonErrors.NewInvalidFieldsError(invalid)
	}

	if len(existing) > 0 {
		r.reclassifyUnchanged(actions)
	}
	return actions, nil
}

// reclassifyUnchanged moves additions that byte-for-byte shadow a stored
// receipt (same name, content type and size) into NoChange, and rescues the
// shadowed receipt from removal.
func (r *Reconciler) reclassifyUnchanged(actions *Actions) {
	keepAdd := actions.ToAdd[:0]
	for _, res := range actions.ToAdd {
		head := actions.heads[res.Name]
		match, ok := r.findShadowed(actions, res.Name, head)
		if !ok {
			keepAdd = append(keepAdd, res)
			continue
		}
		actions.NoChange = append(actions.NoChange, match)
		keepRemove := actions.ToRemove[:0]
		for _, det := range actions.ToRemove {
			if det.ID != match.ID {
				keepRemove = append(keepRemove, det)
			}
		}
		actions.ToRemove = keepRemove
		delete(actions.heads, res.Name)
	}
	actions.ToAdd = keepAdd
}

func (r *Reconciler) findShadowed(actions *Actions, name string, head *HeadDetails) (Detail, bool) {
	if head == nil {
		return Detail{}, false
	}
	for _, det := range actions.ToRemove {
		if det.Name == name && string(det.ContentType) == head.ContentType && det.Size == head.ContentLength {
			return det, true
		}
	}
	for _, det := range actions.NoChange {
		if det.Name == name && string(det.ContentType) == head.ContentType && det.Size == head.ContentLength {
			return det, true
		}
	}
	return Detail{}, false
}

// Finalize mints an ID for every planned addition and returns the receipt
// list the expense record should persist. It must run before the database
// write so the stored record already names the permanent blob keys.
func (r *Reconciler) Finalize(ctx context.Context, actions *Actions) ([]Detail, error) {
	actions.added = actions.added[:0]
	for _, res := range actions.ToAdd {
		head, ok := actions.heads[res.Name]
		if !ok || head == nil {
			return nil, commonErrors.NewIllegalArgumentError(fmt.Sprintf("receipt %q was not planned", res.Name))
		}
		actions.added = append(actions.added, Detail{
			ID:          r.newID(),
			Name:        res.Name,
			ContentType: ContentType(head.ContentType),
			Size:        head.ContentLength,
		})
	}
	return actions.Final(), nil
}

// Apply performs the blob side effects for a committed expense write:
// removed receipts get the delete tag set, planned additions are copied from
// the temporary prefix to their permanent key, and reversed removals get
// their tags cleared. The database record is already committed when this
// runs, so a failure here leaves blobs to reconcile on a later retry rather
// than rolling anything back.
func (r *Reconciler) Apply(ctx context.Context, actions *Actions, uploadID, expenseID, userID string) error {
	if len(actions.ToAdd) != len(actions.added) {
		return commonErrors.NewIllegalArgumentError("receipt actions were not finalized")
	}

	if len(actions.ToRemove) > 0 {
		keys := make([]string, 0, len(actions.ToRemove))
		for _, det := range actions.ToRemove {
			keys = append(keys, r.ObjectKey(userID, expenseID, det.ID))
		}
		if err := r.store.AddTags(ctx, keys, r.deleteTags); err != nil {
			return fmt.Errorf("tagging removed receipts: %w", err)
		}
	}

	for i, res := range actions.ToAdd {
		src := r.TempKey(userID, uploadID, res.Name)
		dst := r.ObjectKey(userID, expenseID, actions.added[i].ID)
		if err := r.store.Copy(ctx, src, dst); err != nil {
			return fmt.Errorf("copying receipt %q: %w", res.Name, err)
		}
	}

	if len(actions.ToReverseRemove) > 0 {
		keys := make([]string, 0, len(actions.ToReverseRemove))
		for _, det := range actions.ToReverseRemove {
			keys = append(keys, r.ObjectKey(userID, expenseID, det.ID))
		}
		if err := r.store.DeleteTags(ctx, keys); err != nil {
			return fmt.Errorf("untagging restored receipts: %w", err)
		}
	}
	return nil
}
