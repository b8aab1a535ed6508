// Package engine implements the issue lifecycle and inventory reconciliation
// rules. All operations are pure: they take the current collections, validate,
// and return new collections, never mutating their inputs. Persistence is the
// caller's concern.
package engine

import (
	"slices"
	"time"

	"github.com/erazemk/pisarna/internal/model"
)

// now is the clock used for issue and signature dates. Stubbed in tests.
var now = time.Now

// today formats the current date the way issue records store dates.
func today() string {
	return now().Format("2006-01-02")
}

func cloneInventory(inventory []model.InventoryItem) []model.InventoryItem {
	return slices.Clone(inventory)
}

func cloneIssues(issues []model.Issue) []model.Issue {
	out := slices.Clone(issues)
	for i := range out {
		out[i].Items = slices.Clone(out[i].Items)
	}
	return out
}

func findItem(inventory []model.InventoryItem, id string) int {
	return slices.IndexFunc(inventory, func(it model.InventoryItem) bool { return it.ID == id })
}

func findIssue(issues []model.Issue, id string) int {
	return slices.IndexFunc(issues, func(is model.Issue) bool { return is.ID == id })
}

func findEmployee(employees []model.Employee, id string) int {
	return slices.IndexFunc(employees, func(e model.Employee) bool { return e.ID == id })
}

// debit subtracts quantity from the item's stock, clamping at zero. If the
// clamp fires the caller gets a stock desync warning: out-of-band data (manual
// edit, corrupted import) violated the reservation invariant.
func debit(item *model.InventoryItem, quantity int) *Warning {
	if item.StockQuantity >= quantity {
		item.StockQuantity -= quantity
		return nil
	}
	applied := item.StockQuantity
	item.StockQuantity = 0
	return &Warning{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Requested: quantity,
		Applied:   applied,
	}
}
