package expense

import (
	"time"

	"github.com/google/uuid"
)

// UpdateAudit stamps audit details for a write. The created pair is carried
// over from the existing record when present; the updated pair is always
// refreshed to the caller and the current time.
func UpdateAudit(existing *AuditDetails, userID string, now time.Time) AuditDetails {
	ts := now.UTC().Format(time.RFC3339)
	audit := AuditDetails{
		CreatedBy: userID,
		CreatedOn: ts,
		UpdatedBy: userID,
		UpdatedOn: ts,
	}
	if existing != nil {
		if _, err := uuid.Parse(existing.CreatedBy); err == nil {
			audit.CreatedBy = existing.CreatedBy
		}
		if existing.CreatedOn != "" {
			audit.CreatedOn = existing.CreatedOn
		}
	}
	return audit
}
