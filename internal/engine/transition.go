package engine

import (
	"fmt"

	"github.com/erazemk/pisarna/internal/model"
)

// Transition moves an issue to targetStatus and applies the matching
// inventory delta. Legal transitions:
//
//	issued   -> returned   credit each line's outstanding quantity
//	returned -> issued     debit each line's full quantity, clamped at zero
//	issued   -> issued     no-op
//	returned -> returned   no-op
//
// pending -> issued is only reachable through CompleteSignature and fails
// here with SIGNATURE_REQUIRED. Everything else is ILLEGAL_TRANSITION.
// Repeating a transition with the same target never double-credits or
// double-debits stock.
func Transition(issueID, targetStatus string, issues []model.Issue, inventory []model.InventoryItem) ([]model.Issue, []model.InventoryItem, []Warning, error) {
	idx := findIssue(issues, issueID)
	if idx < 0 {
		return issues, inventory, nil, &Error{
			Kind:    KindUnknownIssue,
			Message: fmt.Sprintf("issue %q not found", issueID),
			IssueID: issueID,
		}
	}
	issue := issues[idx]

	switch targetStatus {
	case model.StatusPending, model.StatusIssued, model.StatusReturned:
	default:
		return issues, inventory, nil, &Error{
			Kind:    KindIllegalTransition,
			Message: fmt.Sprintf("unknown target status %q", targetStatus),
			IssueID: issueID,
			Status:  issue.Status,
			Target:  targetStatus,
		}
	}

	// Idempotent no-ops.
	if issue.Status == targetStatus && issue.Status != model.StatusPending {
		return issues, inventory, nil, nil
	}

	if issue.Status == model.StatusPending && targetStatus == model.StatusIssued {
		return issues, inventory, nil, &Error{
			Kind:    KindSignatureRequired,
			Message: "a pending issue can only become issued through a completed signature",
			IssueID: issueID,
			Status:  issue.Status,
			Target:  targetStatus,
		}
	}

	updatedIssues := cloneIssues(issues)
	updatedInventory := cloneInventory(inventory)
	target := &updatedIssues[idx]
	var warnings []Warning

	switch {
	case issue.Status == model.StatusIssued && targetStatus == model.StatusReturned:
		// Return everything still outstanding. Lines referencing deleted
		// inventory items are skipped (dangling references are tolerated).
		for i := range target.Items {
			line := &target.Items[i]
			if idx := findItem(updatedInventory, line.ItemID); idx >= 0 {
				updatedInventory[idx].StockQuantity += line.Outstanding()
			}
			line.Returned = line.Quantity
		}

	case issue.Status == model.StatusReturned && targetStatus == model.StatusIssued:
		// Re-issue previously returned stock. Insufficient physical stock
		// clamps to zero rather than failing.
		for i := range target.Items {
			line := &target.Items[i]
			if idx := findItem(updatedInventory, line.ItemID); idx >= 0 {
				if w := debit(&updatedInventory[idx], line.Quantity); w != nil {
					warnings = append(warnings, *w)
				}
			}
			line.Returned = 0
		}

	default:
		return issues, inventory, nil, &Error{
			Kind:    KindIllegalTransition,
			Message: fmt.Sprintf("cannot transition issue from %q to %q", issue.Status, targetStatus),
			IssueID: issueID,
			Status:  issue.Status,
			Target:  targetStatus,
		}
	}

	target.Status = targetStatus
	return updatedIssues, updatedInventory, warnings, nil
}
