package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField    = errors.New("missing required field")
	ErrUnknownShop     = errors.New("unknown shop")
	ErrNoItems         = errors.New("bill has no items")
	ErrUnknownProduct  = errors.New("invalid product reference")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrDuplicateName   = errors.New("name already exists")
	ErrReservedName    = errors.New("name is reserved")
	ErrPartialCascade  = errors.New("rename cascade incomplete")
	ErrMalformedImport = errors.New("malformed import payload")
)

var kinds = map[error]string{
	ErrMissingField:   "missing_field",
	ErrUnknownShop:    "unknown_shop",
	ErrNoItems:        "no_items",
	ErrUnknownProduct: "unknown_product",
	ErrInvalidAmount:  "invalid_amount",
	ErrInvalidDate:    "invalid_date",
	ErrDuplicateName:  "duplicate_name",
	ErrReservedName:   "reserved_name",
}

// ValidationError is one rejected field. Index is the item position, or -1 for bill-level fields.
type ValidationError struct {
	Err   error
	Field string
	Value string
	Index int
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Field != "" {
		b.WriteString(": ")
		if e.Index >= 0 {
			fmt.Fprintf(&b, "items[%d].", e.Index)
		}
		b.WriteString(e.Field)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Kind is a stable machine-readable name for the failure, e.g. "unknown_product".
func (e *ValidationError) Kind() string {
	if k, ok := kinds[e.Err]; ok {
		return k
	}
	return "invalid"
}

// Issues flattens err (possibly built with errors.Join) into its validation errors.
// Non-validation errors are skipped.
func Issues(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	var walk func(error)
	walk = func(e error) {
		if ve, ok := e.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		switch w := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range w.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := w.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

// IsValidation reports whether err carries at least one validation error.
func IsValidation(err error) bool {
	return len(Issues(err)) > 0
}

const (
	StageLoadBills   = "load_bills"
	StageUpdateBills = "update_bills"
)

// PartialCascadeError means the shop master was renamed but some bills still carry the old name.
type PartialCascadeError struct {
	Stage          string
	ShopID         string
	OldName        string
	NewName        string
	BillsUpdated   int
	PendingBillIDs []string
	Err            error
}

func (e *PartialCascadeError) Error() string {
	return fmt.Sprintf("%s at %s: shop %s renamed %q -> %q, %d bills updated, %d pending: %v",
		ErrPartialCascade, e.Stage, e.ShopID, e.OldName, e.NewName, e.BillsUpdated, len(e.PendingBillIDs), e.Err)
}

func (e *PartialCascadeError) Unwrap() []error {
	return []error{ErrPartialCascade, e.Err}
}
