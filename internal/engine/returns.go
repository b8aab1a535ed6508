package engine

import (
	"fmt"

	"github.com/erazemk/pisarna/internal/model"
)

// ReturnLine is one partially returned item of an issue.
type ReturnLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// ReturnItems records a partial return on an issued issue: each line's
// returned count grows by the given quantity and the stock is credited back.
// Once every line is fully returned the issue flips to returned. Lines
// referencing deleted inventory items still update their bookkeeping but
// credit nothing.
func ReturnItems(issueID string, lines []ReturnLine, issues []model.Issue, inventory []model.InventoryItem) ([]model.Issue, []model.InventoryItem, error) {
	idx := findIssue(issues, issueID)
	if idx < 0 {
		return issues, inventory, &Error{
			Kind:    KindUnknownIssue,
			Message: fmt.Sprintf("issue %q not found", issueID),
			IssueID: issueID,
		}
	}
	issue := issues[idx]

	if issue.Status != model.StatusIssued {
		return issues, inventory, &Error{
			Kind:    KindIllegalTransition,
			Message: fmt.Sprintf("issue %q is %s, partial returns apply to issued issues only", issueID, issue.Status),
			IssueID: issueID,
			Status:  issue.Status,
			Target:  model.StatusReturned,
		}
	}

	if len(lines) == 0 {
		return issues, inventory, &Error{
			Kind:    KindEmptyIssue,
			Message: "a return must contain at least one line",
			IssueID: issueID,
		}
	}

	// Validate every line before applying anything.
	returning := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return issues, inventory, &Error{
				Kind:      KindInvalidQuantity,
				Message:   fmt.Sprintf("return quantity for item %q must be positive, got %d", line.ItemID, line.Quantity),
				IssueID:   issueID,
				ItemID:    line.ItemID,
				Requested: line.Quantity,
			}
		}
		returning[line.ItemID] += line.Quantity
	}
	for itemID, qty := range returning {
		li := issueLine(issue, itemID)
		if li < 0 {
			return issues, inventory, &Error{
				Kind:    KindUnknownItem,
				Message: fmt.Sprintf("item %q is not part of issue %q", itemID, issueID),
				IssueID: issueID,
				ItemID:  itemID,
			}
		}
		if out := issue.Items[li].Outstanding(); qty > out {
			return issues, inventory, &Error{
				Kind:      KindExcessReturn,
				Message:   fmt.Sprintf("cannot return %d of %q, only %d outstanding", qty, issue.Items[li].ItemName, out),
				IssueID:   issueID,
				ItemID:    itemID,
				ItemName:  issue.Items[li].ItemName,
				Available: out,
				Requested: qty,
			}
		}
	}

	updatedIssues := cloneIssues(issues)
	updatedInventory := cloneInventory(inventory)
	target := &updatedIssues[idx]

	for itemID, qty := range returning {
		li := issueLine(*target, itemID)
		target.Items[li].Returned += qty
		if inv := findItem(updatedInventory, itemID); inv >= 0 {
			updatedInventory[inv].StockQuantity += qty
		}
	}

	done := true
	for _, line := range target.Items {
		if line.Outstanding() > 0 {
			done = false
			break
		}
	}
	if done {
		target.Status = model.StatusReturned
	}

	return updatedIssues, updatedInventory, nil
}

func issueLine(issue model.Issue, itemID string) int {
	for i, line := range issue.Items {
		if line.ItemID == itemID {
			return i
		}
	}
	return -1
}
