package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/pisarna/internal/model"
)

// RequestLine is one requested item of a new issue.
type RequestLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// CreateRequest describes a new issue to create.
type CreateRequest struct {
	EmployeeID string        `json:"employeeId"`
	Lines      []RequestLine `json:"items"`
	Actor      model.Actor   `json:"-"`
}

// CreateIssue validates the request against the current collections and, on
// success, returns the new pending issue plus the inventory with every line's
// quantity deducted (the reservation). On failure the returned inventory is
// the input, unchanged: either all lines apply or none do.
func CreateIssue(req CreateRequest, inventory []model.InventoryItem, employees []model.Employee) (model.Issue, []model.InventoryItem, []Warning, error) {
	emp := findEmployee(employees, req.EmployeeID)
	if emp < 0 {
		return model.Issue{}, inventory, nil, &Error{
			Kind:       KindUnknownEmployee,
			Message:    fmt.Sprintf("employee %q not found", req.EmployeeID),
			EmployeeID: req.EmployeeID,
		}
	}

	if len(req.Lines) == 0 {
		return model.Issue{}, inventory, nil, &Error{
			Kind:    KindEmptyIssue,
			Message: "an issue must contain at least one item",
		}
	}

	// Validate against the summed quantity per item so that duplicate lines
	// for the same item cannot over-commit stock.
	requested := make(map[string]int, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return model.Issue{}, inventory, nil, &Error{
				Kind:      KindInvalidQuantity,
				Message:   fmt.Sprintf("quantity for item %q must be positive, got %d", line.ItemID, line.Quantity),
				ItemID:    line.ItemID,
				Requested: line.Quantity,
			}
		}
		requested[line.ItemID] += line.Quantity
	}
	for _, line := range req.Lines {
		idx := findItem(inventory, line.ItemID)
		if idx < 0 {
			return model.Issue{}, inventory, nil, &Error{
				Kind:    KindUnknownItem,
				Message: fmt.Sprintf("item %q not found in inventory", line.ItemID),
				ItemID:  line.ItemID,
			}
		}
		item := inventory[idx]
		if want := requested[line.ItemID]; want > item.StockQuantity {
			return model.Issue{}, inventory, nil, &Error{
				Kind:      KindInsufficientStock,
				Message:   fmt.Sprintf("insufficient stock for %q: have %d, need %d", item.Name, item.StockQuantity, want),
				ItemID:    item.ID,
				ItemName:  item.Name,
				Available: item.StockQuantity,
				Requested: want,
			}
		}
	}

	// All lines validated, apply the reservation.
	updated := cloneInventory(inventory)
	var warnings []Warning
	lines := make([]model.IssuedItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		idx := findItem(updated, line.ItemID)
		if w := debit(&updated[idx], line.Quantity); w != nil {
			warnings = append(warnings, *w)
		}
		lines = append(lines, model.IssuedItem{
			ItemID:   line.ItemID,
			ItemName: updated[idx].Name,
			Quantity: line.Quantity,
		})
	}

	employee := employees[emp]
	actor := req.Actor
	issue := model.Issue{
		ID:           newIssueID(req.EmployeeID),
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		Department:   employee.Department,
		Items:        lines,
		IssueDate:    today(),
		Status:       model.StatusPending,
		CreatedBy:    &actor,
	}

	return issue, updated, warnings, nil
}

// newIssueID builds an issue identifier that stays unique under
// same-millisecond submissions while keeping the timestamp and employee id
// visible for traceability.
func newIssueID(employeeID string) string {
	return fmt.Sprintf("%d-%s-%s", now().UnixMilli(), employeeID, uuid.NewString()[:8])
}

// DeleteIssues removes the identified issues from history. Stock reserved by
// deleted pending and issued issues is credited back (the outstanding quantity
// per line); returned issues already credited their stock. Unknown ids and
// lines referencing deleted inventory items are skipped.
func DeleteIssues(ids []string, issues []model.Issue, inventory []model.InventoryItem) ([]model.Issue, []model.InventoryItem) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	updated := cloneInventory(inventory)
	remaining := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		if !drop[issue.ID] {
			remaining = append(remaining, issue)
			continue
		}
		if issue.Status == model.StatusReturned {
			continue
		}
		for _, line := range issue.Items {
			if idx := findItem(updated, line.ItemID); idx >= 0 {
				updated[idx].StockQuantity += line.Outstanding()
			}
		}
	}
	return remaining, updated
}
