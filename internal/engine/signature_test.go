package engine

import (
	"testing"
	"time"

	"github.com/erazemk/pisarna/internal/model"
)

func pendingIssue() []model.Issue {
	return []model.Issue{
		{
			ID: "i1", EmployeeID: "e1", EmployeeName: "Alice", Status: model.StatusPending,
			Items: []model.IssuedItem{{ItemID: "pen", ItemName: "Ballpoint Pen", Quantity: 2}},
		},
	}
}

func TestCompleteSignature(t *testing.T) {
	fixedClock(t, time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC))

	updated, err := CompleteSignature("i1", "data:image/png;base64,abc", pendingIssue())
	if err != nil {
		t.Fatalf("CompleteSignature: %v", err)
	}

	got := updated[0]
	if got.Status != model.StatusIssued {
		t.Errorf("expected issued, got %q", got.Status)
	}
	if got.SignatureData != "data:image/png;base64,abc" {
		t.Errorf("signature not recorded: %q", got.SignatureData)
	}
	if got.SignedDate != "2025-04-01" {
		t.Errorf("expected signed date 2025-04-01, got %q", got.SignedDate)
	}
}

func TestCompleteSignatureEmptyArtifact(t *testing.T) {
	for _, artifact := range []string{"", "   ", "\n\t"} {
		updated, err := CompleteSignature("i1", artifact, pendingIssue())
		if !IsKind(err, KindEmptySignature) {
			t.Errorf("artifact %q: expected EMPTY_SIGNATURE, got %v", artifact, err)
		}
		if updated[0].Status != model.StatusPending {
			t.Errorf("artifact %q: status changed on failure: %q", artifact, updated[0].Status)
		}
	}

	// Retry with a real artifact succeeds.
	updated, err := CompleteSignature("i1", "data:image/png;base64,abc", pendingIssue())
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if updated[0].Status != model.StatusIssued {
		t.Errorf("expected issued after retry, got %q", updated[0].Status)
	}
}

func TestCompleteSignatureNotPending(t *testing.T) {
	issues := []model.Issue{
		{ID: "i1", Status: model.StatusIssued, SignatureData: "sig",
			Items: []model.IssuedItem{{ItemID: "pen", Quantity: 1}}},
	}

	_, err := CompleteSignature("i1", "data:image/png;base64,new", issues)
	if !IsKind(err, KindNotPending) {
		t.Fatalf("expected NOT_PENDING, got %v", err)
	}
}

func TestCompleteSignatureUnknownIssue(t *testing.T) {
	_, err := CompleteSignature("missing", "data:image/png;base64,abc", nil)
	if !IsKind(err, KindUnknownIssue) {
		t.Fatalf("expected UNKNOWN_ISSUE, got %v", err)
	}
}
