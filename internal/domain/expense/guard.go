package expense

import (
	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
)

// AssertOwnership verifies that the record belongs to the caller by
// recomputing the owner-status index partition from the record's own stored
// status and comparing it to the stored one. There is no ownership field to
// consult; if the recomputed key differs, the row was written for a
// different owner. Foreign and missing-grant cases both surface as
// unauthorized so callers cannot probe for existence.
func AssertOwnership(rec *Record, userID string) error {
	if rec == nil {
		return commonErrors.NewIllegalArgumentError("ownership check on a nil record")
	}
	expected, err := DetailsIndexKey(userID, rec.Details.Status, rec.Details.BelongsTo)
	if err != nil {
		return err
	}
	if expected != rec.GsiPK {
		return commonErrors.NewUnAuthorizedError("expense cannot be accessed by this user")
	}
	return nil
}

// AssertNotPendingDelete rejects records sitting in the soft-delete grace
// window. Pending-delete rows are invisible to normal reads and writes; only
// a status reversal may touch them.
func AssertNotPendingDelete(rec *Record) error {
	if rec != nil && rec.ExpiresAt != nil {
		return commonErrors.NewUnAuthorizedError("expense is pending deletion")
	}
	return nil
}
