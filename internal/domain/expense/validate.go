package expense

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
	"github.com/mfinch/myfinance-backend/internal/domain/receipt"
)

const (
	nameMinLength      = 2
	nameMaxLength      = 50
	descriptionMaxLen  = 150
	tagMinLength       = 2
	tagMaxLength       = 15
	maxAllowedTags     = 10
	maxAllowedPersons  = 10
	maxAllowedReceipts = 5
	amountMaxAbs       = 10_000_000
)

var (
	billNamePattern    = regexp.MustCompile(`^[\w\s.@#$&+!-]+$`)
	descriptionPattern = regexp.MustCompile(`^[\w\s.,@#$&+!?-]*$`)
	tagPattern         = regexp.MustCompile(`^\w+$`)
)

// ValidateUpsert runs every request-local check for an add or update and
// returns the full list of offending fields. Reference existence (category,
// payment account) is checked separately by the service because it needs
// the data layer.
func ValidateUpsert(req *Resource, v Variant) []commonErrors.InvalidField {
	var fields []commonErrors.InvalidField
	add := func(path, message string) {
		fields = append(fields, commonErrors.InvalidField{Path: path, Message: message})
	}

	if req.ID != "" && !isValidID(req.ID) {
		add("id", "must be a version 4 uuid")
	}
	if !isValidBillName(req.BillName) {
		add("billName", "incorrect value")
	}
	if !isValidAmount(req.Amount) {
		add("amount", "incorrect value")
	}
	if _, err := NormalizeDate(req.EventDate); err != nil {
		add(v.DateField, "incorrect format")
	}
	if req.VerifiedTimestamp != "" {
		if _, err := time.Parse(time.RFC3339, req.VerifiedTimestamp); err != nil {
			add("verifiedTimestamp", "incorrect format")
		}
	}
	if req.CategoryID != "" && !isValidID(req.CategoryID) {
		add(v.CategoryField, "incorrect value")
	}
	if req.PaymentAccountID != "" && !isValidID(req.PaymentAccountID) {
		add("paymentAccountId", "incorrect value")
	}
	if req.ProfileID != "" && !isValidID(req.ProfileID) {
		add("profileId", "incorrect value")
	}
	if req.Status != "" && req.Status != StatusEnable {
		add("status", "incorrect value")
	}
	if !isValidDescription(req.Description) {
		add("description", "incorrect value")
	}

	fields = append(fields, validateTags("tags", req.Tags)...)

	if len(req.PersonIDs) > maxAllowedPersons {
		add("personIds", fmt.Sprintf("at most %d persons are allowed", maxAllowedPersons))
	} else {
		for _, id := range req.PersonIDs {
			if !isValidID(id) {
				add("personIds", "incorrect value")
				break
			}
		}
	}

	fields = append(fields, validateReceipts(req.Receipts, req.ID)...)
	fields = append(fields, validateItems(req.Items, v)...)
	return fields
}

func validateReceipts(receipts []receipt.Resource, expenseID string) []commonErrors.InvalidField {
	var fields []commonErrors.InvalidField
	if len(receipts) == 0 {
		return nil
	}
	if len(receipts) > maxAllowedReceipts {
		fields = append(fields, commonErrors.InvalidField{Path: "receipts", Message: fmt.Sprintf("at most %d receipts are allowed", maxAllowedReceipts)})
	}
	// Uploads land under the expense id, so receipts cannot be attached
	// before the client has chosen one.
	if expenseID == "" {
		fields = append(fields, commonErrors.InvalidField{Path: "receipts", Message: "receipts require an expense id"})
	}
	for _, res := range receipts {
		if !isValidFileName(res.Name) {
			fields = append(fields, commonErrors.InvalidField{Path: "receipts", Message: fmt.Sprintf("receipt name %q is invalid", res.Name)})
		}
		if res.ID != "" && !isValidID(res.ID) {
			fields = append(fields, commonErrors.InvalidField{Path: "receipts", Message: "receipt id must be a version 4 uuid"})
		}
	}
	return fields
}

func validateItems(items []Item, v Variant) []commonErrors.InvalidField {
	if len(items) == 0 {
		return nil
	}
	if !v.HasItems {
		return []commonErrors.InvalidField{{Path: "expenseItems", Message: fmt.Sprintf("%s expenses do not have items", v.BelongsTo)}}
	}
	var fields []commonErrors.InvalidField
	for i, item := range items {
		path := fmt.Sprintf("expenseItems[%d]", i)
		if item.ID != "" && !isValidID(item.ID) {
			fields = append(fields, commonErrors.InvalidField{Path: path + ".id", Message: "must be a version 4 uuid"})
		}
		if !isValidBillName(item.BillName) {
			fields = append(fields, commonErrors.InvalidField{Path: path + ".billName", Message: "incorrect value"})
		}
		if !isValidAmount(item.Amount) {
			fields = append(fields, commonErrors.InvalidField{Path: path + ".amount", Message: "incorrect value"})
		}
		if !isValidDescription(item.Description) {
			fields = append(fields, commonErrors.InvalidField{Path: path + ".description", Message: "incorrect value"})
		}
		fields = append(fields, validateTags(path+".tags", item.Tags)...)
	}
	return fields
}

func validateTags(path string, tags []string) []commonErrors.InvalidField {
	if len(tags) == 0 {
		return nil
	}
	if len(tags) > maxAllowedTags {
		return []commonErrors.InvalidField{{Path: path, Message: fmt.Sprintf("at most %d tags are allowed", maxAllowedTags)}}
	}
	for _, tag := range tags {
		if len(tag) < tagMinLength || len(tag) > tagMaxLength || !tagPattern.MatchString(tag) {
			return []commonErrors.InvalidField{{Path: path, Message: "incorrect value"}}
		}
	}
	return nil
}

func isValidID(id string) bool {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return parsed.Version() == 4
}

func isValidBillName(name string) bool {
	return len(name) >= nameMinLength && len(name) <= nameMaxLength && billNamePattern.MatchString(name)
}

func isValidFileName(name string) bool {
	return len(name) >= nameMinLength && len(name) <= nameMaxLength && billNamePattern.MatchString(name)
}

func isValidDescription(description string) bool {
	return len(description) <= descriptionMaxLen && descriptionPattern.MatchString(description)
}

// isValidAmount accepts a signed decimal with at most two fraction digits,
// bounded to ten million either way.
func isValidAmount(amount string) bool {
	if amount == "" {
		return false
	}
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return false
	}
	if value > amountMaxAbs || value < -amountMaxAbs {
		return false
	}
	if dot := strings.IndexByte(amount, '.'); dot >= 0 && len(amount)-dot-1 > 2 {
		return false
	}
	return true
}
