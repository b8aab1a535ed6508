package engine

import (
	"testing"

	"github.com/erazemk/pisarna/internal/model"
)

func issuedIssue() []model.Issue {
	return []model.Issue{
		{
			ID: "i1", EmployeeID: "e1", EmployeeName: "Alice", Department: "Finance",
			Status: model.StatusIssued, SignatureData: "sig", SignedDate: "2025-03-10",
			Items: []model.IssuedItem{
				{ItemID: "pen", ItemName: "Ballpoint Pen", Quantity: 3},
				{ItemID: "pad", ItemName: "Notepad", Quantity: 2},
			},
		},
	}
}

func TestTransitionIssuedToReturnedCreditsStock(t *testing.T) {
	issues, inv, warnings, err := Transition("i1", model.StatusReturned, issuedIssue(), testInventory())
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if issues[0].Status != model.StatusReturned {
		t.Errorf("expected returned, got %q", issues[0].Status)
	}
	if inv[0].StockQuantity != 13 || inv[1].StockQuantity != 7 {
		t.Errorf("expected stock 13/7, got %d/%d", inv[0].StockQuantity, inv[1].StockQuantity)
	}
	for _, line := range issues[0].Items {
		if line.Returned != line.Quantity {
			t.Errorf("line %q not fully returned: %d/%d", line.ItemID, line.Returned, line.Quantity)
		}
	}
}

func TestTransitionReturnedIsIdempotent(t *testing.T) {
	issues, inv, _, err := Transition("i1", model.StatusReturned, issuedIssue(), testInventory())
	if err != nil {
		t.Fatalf("first transition: %v", err)
	}

	again, inv2, _, err := Transition("i1", model.StatusReturned, issues, inv)
	if err != nil {
		t.Fatalf("second transition: %v", err)
	}

	// No double-credit.
	if inv2[0].StockQuantity != inv[0].StockQuantity || inv2[1].StockQuantity != inv[1].StockQuantity {
		t.Errorf("repeated transition changed inventory: %+v vs %+v", inv, inv2)
	}
	if again[0].Status != model.StatusReturned {
		t.Errorf("status changed: %q", again[0].Status)
	}
}

func TestTransitionRoundTripRestoresInventory(t *testing.T) {
	before := testInventory()

	issues, inv, _, err := Transition("i1", model.StatusReturned, issuedIssue(), before)
	if err != nil {
		t.Fatalf("to returned: %v", err)
	}
	issues, inv, warnings, err := Transition("i1", model.StatusIssued, issues, inv)
	if err != nil {
		t.Fatalf("back to issued: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	for i := range before {
		if inv[i].StockQuantity != before[i].StockQuantity {
			t.Errorf("item %q stock %d, want %d", inv[i].ID, inv[i].StockQuantity, before[i].StockQuantity)
		}
	}
	if issues[0].Status != model.StatusIssued {
		t.Errorf("expected issued, got %q", issues[0].Status)
	}
	for _, line := range issues[0].Items {
		if line.Returned != 0 {
			t.Errorf("line %q returned not reset: %d", line.ItemID, line.Returned)
		}
	}
}

func TestTransitionReturnedToIssuedClampsAtZero(t *testing.T) {
	issues := []model.Issue{
		{
			ID: "i1", Status: model.StatusReturned, SignatureData: "sig",
			Items: []model.IssuedItem{{ItemID: "pen", ItemName: "Ballpoint Pen", Quantity: 8, Returned: 8}},
		},
	}
	inventory := []model.InventoryItem{
		{ID: "pen", Name: "Ballpoint Pen", StockQuantity: 5, Threshold: 1},
	}

	_, inv, warnings, err := Transition("i1", model.StatusIssued, issues, inventory)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if inv[0].StockQuantity != 0 {
		t.Errorf("expected clamp to 0, got %d", inv[0].StockQuantity)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 stock desync warning, got %d", len(warnings))
	}
	if warnings[0].ItemID != "pen" || warnings[0].Requested != 8 || warnings[0].Applied != 5 {
		t.Errorf("warning detail wrong: %+v", warnings[0])
	}
}

func TestTransitionPendingToIssuedRequiresSignature(t *testing.T) {
	issues := []model.Issue{
		{ID: "i1", Status: model.StatusPending,
			Items: []model.IssuedItem{{ItemID: "pen", Quantity: 1}}},
	}

	updated, inv, _, err := Transition("i1", model.StatusIssued, issues, testInventory())
	if !IsKind(err, KindSignatureRequired) {
		t.Fatalf("expected SIGNATURE_REQUIRED, got %v", err)
	}
	if updated[0].Status != model.StatusPending {
		t.Errorf("status changed on failure: %q", updated[0].Status)
	}
	if inv[0].StockQuantity != 10 {
		t.Errorf("inventory changed on failure: %d", inv[0].StockQuantity)
	}
}

func TestTransitionIllegalTargets(t *testing.T) {
	cases := []struct {
		name   string
		status string
		target string
	}{
		{"returned to pending", model.StatusReturned, model.StatusPending},
		{"issued to pending", model.StatusIssued, model.StatusPending},
		{"pending to returned", model.StatusPending, model.StatusReturned},
		{"pending to pending", model.StatusPending, model.StatusPending},
		{"bogus target", model.StatusIssued, "lost"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issues := []model.Issue{
				{ID: "i1", Status: tc.status, SignatureData: "sig",
					Items: []model.IssuedItem{{ItemID: "pen", Quantity: 1}}},
			}
			_, _, _, err := Transition("i1", tc.target, issues, testInventory())
			if !IsKind(err, KindIllegalTransition) {
				t.Errorf("expected ILLEGAL_TRANSITION, got %v", err)
			}
		})
	}
}

func TestTransitionUnknownIssue(t *testing.T) {
	_, _, _, err := Transition("missing", model.StatusReturned, nil, testInventory())
	if !IsKind(err, KindUnknownIssue) {
		t.Fatalf("expected UNKNOWN_ISSUE, got %v", err)
	}
}

func TestTransitionSkipsDanglingItems(t *testing.T) {
	issues := []model.Issue{
		{
			ID: "i1", Status: model.StatusIssued, SignatureData: "sig",
			Items: []model.IssuedItem{{ItemID: "gone", ItemName: "Deleted Item", Quantity: 2}},
		},
	}

	updated, inv, _, err := Transition("i1", model.StatusReturned, issues, testInventory())
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated[0].Status != model.StatusReturned {
		t.Errorf("expected returned, got %q", updated[0].Status)
	}
	if inv[0].StockQuantity != 10 || inv[1].StockQuantity != 5 {
		t.Errorf("unrelated inventory changed: %+v", inv)
	}
}

func TestTransitionAfterPartialReturnCreditsRemainder(t *testing.T) {
	issues := []model.Issue{
		{
			ID: "i1", Status: model.StatusIssued, SignatureData: "sig",
			Items: []model.IssuedItem{{ItemID: "pen", ItemName: "Ballpoint Pen", Quantity: 5, Returned: 2}},
		},
	}

	_, inv, _, err := Transition("i1", model.StatusReturned, issues, testInventory())
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	// Only the 3 outstanding come back, the 2 already returned were credited
	// when the partial return was recorded.
	if inv[0].StockQuantity != 13 {
		t.Errorf("expected pen stock 13, got %d", inv[0].StockQuantity)
	}
}
