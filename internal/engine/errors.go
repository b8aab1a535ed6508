package engine

import (
	"errors"
	"fmt"
)

// Kind categorizes engine validation failures.
type Kind string

const (
	KindUnknownEmployee   Kind = "UNKNOWN_EMPLOYEE"
	KindUnknownItem       Kind = "UNKNOWN_ITEM"
	KindUnknownIssue      Kind = "UNKNOWN_ISSUE"
	KindEmptyIssue        Kind = "EMPTY_ISSUE"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindIllegalTransition Kind = "ILLEGAL_TRANSITION"
	KindSignatureRequired Kind = "SIGNATURE_REQUIRED"
	KindNotPending        Kind = "NOT_PENDING"
	KindEmptySignature    Kind = "EMPTY_SIGNATURE"
	KindInvalidQuantity   Kind = "INVALID_QUANTITY"
	KindExcessReturn      Kind = "EXCESS_RETURN"
	KindCategoryInUse     Kind = "CATEGORY_IN_USE"
)

// Error is a validation failure reported to the caller. Operations that
// return an Error leave their input collections unchanged.
type Error struct {
	Kind    Kind
	Message string

	// Context fields, populated where relevant.
	EmployeeID string
	IssueID    string
	ItemID     string
	ItemName   string
	Status     string
	Target     string
	Available  int
	Requested  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is an engine Error of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ErrKind returns the kind of an engine Error, or "" for other errors.
func ErrKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Warning is a recovered-from condition surfaced alongside a successful
// operation. The only producer today is a stock clamp (stock desync).
type Warning struct {
	ItemID    string `json:"itemId"`
	ItemName  string `json:"itemName"`
	Requested int    `json:"requested"`
	Applied   int    `json:"applied"`
}

func (w Warning) String() string {
	return fmt.Sprintf("stock desync on %s (%s): requested %d, applied %d",
		w.ItemID, w.ItemName, w.Requested, w.Applied)
}
