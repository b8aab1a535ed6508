package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erazemk/pisarna/internal/model"
)

// LowStock returns the items whose stock is at or below their threshold.
// Recomputed from the given inventory on every call, never cached.
func LowStock(inventory []model.InventoryItem) []model.InventoryItem {
	var low []model.InventoryItem
	for _, item := range inventory {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	return low
}

// PendingSignatures returns the issues still waiting for a signature.
func PendingSignatures(issues []model.Issue) []model.Issue {
	var pending []model.Issue
	for _, issue := range issues {
		if issue.Status == model.StatusPending {
			pending = append(pending, issue)
		}
	}
	return pending
}

// FilterIssues returns the issues matching the query, a case-insensitive
// substring search over id, employee name, department, status and line item
// names. An empty query matches everything.
func FilterIssues(issues []model.Issue, query string) []model.Issue {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return issues
	}

	var matched []model.Issue
	for _, issue := range issues {
		if issueMatches(issue, query) {
			matched = append(matched, issue)
		}
	}
	return matched
}

func issueMatches(issue model.Issue, query string) bool {
	for _, field := range []string{issue.ID, issue.EmployeeName, issue.Department, issue.Status} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	for _, line := range issue.Items {
		if strings.Contains(strings.ToLower(line.ItemName), query) {
			return true
		}
	}
	return false
}

// RemoveCategory deletes a category from the reference set. Deletion is
// blocked while any inventory item still references the category.
func RemoveCategory(name string, categories []string, inventory []model.InventoryItem) ([]string, error) {
	for _, item := range inventory {
		if item.Category == name {
			return categories, &Error{
				Kind:     KindCategoryInUse,
				Message:  fmt.Sprintf("category %q is still used by item %q", name, item.Name),
				ItemID:   item.ID,
				ItemName: item.Name,
			}
		}
	}

	remaining := slices.DeleteFunc(slices.Clone(categories), func(c string) bool { return c == name })
	return remaining, nil
}

// ValidateState checks the cross-collection invariants on data arriving from
// the persistence or import boundary: non-negative stock, non-empty issue
// lines, known statuses, per-line returned bounds, and signature presence on
// issued and returned issues. The engine itself never repairs violations, the
// boundary must reject or fix them.
func ValidateState(inventory []model.InventoryItem, issues []model.Issue) error {
	for _, item := range inventory {
		if item.StockQuantity < 0 {
			return fmt.Errorf("item %q has negative stock %d", item.ID, item.StockQuantity)
		}
		if item.Threshold < 0 {
			return fmt.Errorf("item %q has negative threshold %d", item.ID, item.Threshold)
		}
	}

	for _, issue := range issues {
		if len(issue.Items) == 0 {
			return fmt.Errorf("issue %q has no items", issue.ID)
		}
		switch issue.Status {
		case model.StatusPending, model.StatusIssued, model.StatusReturned:
		default:
			return fmt.Errorf("issue %q has unknown status %q", issue.ID, issue.Status)
		}
		if issue.Status != model.StatusPending && strings.TrimSpace(issue.SignatureData) == "" {
			return fmt.Errorf("issue %q is %s but has no signature", issue.ID, issue.Status)
		}
		for _, line := range issue.Items {
			if line.Quantity <= 0 {
				return fmt.Errorf("issue %q has non-positive quantity for item %q", issue.ID, line.ItemID)
			}
			if line.Returned < 0 || line.Returned > line.Quantity {
				return fmt.Errorf("issue %q has returned %d outside [0, %d] for item %q",
					issue.ID, line.Returned, line.Quantity, line.ItemID)
			}
		}
	}

	return nil
}
