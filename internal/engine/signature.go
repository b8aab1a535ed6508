package engine

import (
	"fmt"
	"strings"

	"github.com/erazemk/pisarna/internal/model"
)

// CompleteSignature authorizes a pending issue: it records the signature
// artifact and signing date and moves the issue to issued. Inventory is not
// touched; the stock was already reserved when the issue was created.
// The artifact is opaque, only non-blankness is asserted here.
func CompleteSignature(issueID, signatureData string, issues []model.Issue) ([]model.Issue, error) {
	idx := findIssue(issues, issueID)
	if idx < 0 {
		return issues, &Error{
			Kind:    KindUnknownIssue,
			Message: fmt.Sprintf("issue %q not found", issueID),
			IssueID: issueID,
		}
	}

	if issues[idx].Status != model.StatusPending {
		return issues, &Error{
			Kind:    KindNotPending,
			Message: fmt.Sprintf("issue %q is %s, only pending issues can be signed", issueID, issues[idx].Status),
			IssueID: issueID,
			Status:  issues[idx].Status,
		}
	}

	if strings.TrimSpace(signatureData) == "" {
		return issues, &Error{
			Kind:    KindEmptySignature,
			Message: "signature artifact is empty",
			IssueID: issueID,
		}
	}

	updated := cloneIssues(issues)
	updated[idx].Status = model.StatusIssued
	updated[idx].SignatureData = signatureData
	updated[idx].SignedDate = today()
	return updated, nil
}
