package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/pisarna/internal/engine"
	"github.com/erazemk/pisarna/internal/model"
	"github.com/erazemk/pisarna/internal/signing"
	"github.com/erazemk/pisarna/internal/store"
)

// IssuesHandler handles issue lifecycle endpoints.
type IssuesHandler struct {
	DB *sql.DB
}

type createIssueRequest struct {
	EmployeeID string               `json:"employeeId"`
	Items      []engine.RequestLine `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type signatureRequest struct {
	SignatureData string `json:"signatureData"`
}

type returnsRequest struct {
	Items []engine.ReturnLine `json:"items"`
}

type deleteIssuesRequest struct {
	IDs []string `json:"ids"`
}

// issueResponse wraps a changed issue with any stock desync warnings the
// operation recovered from, so the caller can log or display them.
type issueResponse struct {
	Issue    model.Issue      `json:"issue"`
	Warnings []engine.Warning `json:"warnings,omitempty"`
}

// List handles GET /api/issues. Supports ?q= substring search and ?status=.
func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load issues")
		return
	}

	issues := engine.FilterIssues(data.Issues, r.URL.Query().Get("q"))
	if status := r.URL.Query().Get("status"); status != "" {
		var filtered []model.Issue
		for _, issue := range issues {
			if issue.Status == status {
				filtered = append(filtered, issue)
			}
		}
		issues = filtered
	}

	if issues == nil {
		issues = []model.Issue{}
	}
	jsonResponse(w, http.StatusOK, issues)
}

// Create handles POST /api/issues. The new issue starts pending and its stock
// is reserved immediately.
func (h *IssuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	issue, inventory, warnings, err := engine.CreateIssue(engine.CreateRequest{
		EmployeeID: req.EmployeeID,
		Lines:      req.Items,
		Actor:      claims.Actor(),
	}, data.Inventory, data.Employees)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	data.Inventory = inventory
	data.Issues = append(data.Issues, issue)

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	slog.Info("issue created", "issue", issue.ID, "employee", issue.EmployeeName,
		"lines", len(issue.Items), "by", claims.Username)
	logWarnings(issue.ID, warnings)
	jsonResponse(w, http.StatusCreated, issueResponse{Issue: issue, Warnings: warnings})
}

// UpdateStatus handles POST /api/issues/{id}/status.
func (h *IssuesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	id := r.PathValue("id")
	issues, inventory, warnings, err := engine.Transition(id, req.Status, data.Issues, data.Inventory)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	data.Issues = issues
	data.Inventory = inventory

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	logWarnings(id, warnings)
	jsonResponse(w, http.StatusOK, issueResponse{Issue: findIssue(issues, id), Warnings: warnings})
}

// Sign handles POST /api/issues/{id}/signature: the pending issue becomes
// issued once a non-blank signature artifact is captured.
func (h *IssuesHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req signatureRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	artifact, err := signing.Process(req.SignatureData)
	if err != nil {
		if errors.Is(err, signing.ErrBlank) {
			engineError(w, &engine.Error{
				Kind:    engine.KindEmptySignature,
				Message: "signature artifact is empty",
				IssueID: r.PathValue("id"),
			})
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	id := r.PathValue("id")
	issues, err := engine.CompleteSignature(id, artifact, data.Issues)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	data.Issues = issues

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	issue := findIssue(issues, id)
	slog.Info("issue signed", "issue", id, "employee", issue.EmployeeName)
	jsonResponse(w, http.StatusOK, issueResponse{Issue: issue})
}

// Returns handles POST /api/issues/{id}/returns, a partial return of an
// issued issue's items.
func (h *IssuesHandler) Returns(w http.ResponseWriter, r *http.Request) {
	var req returnsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	id := r.PathValue("id")
	issues, inventory, err := engine.ReturnItems(id, req.Items, data.Issues, data.Inventory)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	data.Issues = issues
	data.Inventory = inventory

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	jsonResponse(w, http.StatusOK, issueResponse{Issue: findIssue(issues, id)})
}

// Delete handles POST /api/issues/delete, a bulk hard-delete of history.
// Stock still reserved by the deleted issues is credited back.
func (h *IssuesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteIssuesRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	ids := req.IDs
	if len(ids) == 0 {
		// No explicit selection clears the whole history.
		for _, issue := range data.Issues {
			ids = append(ids, issue.ID)
		}
	}

	issues, inventory := engine.DeleteIssues(ids, data.Issues, data.Inventory)
	deleted := len(data.Issues) - len(issues)
	data.Issues = issues
	data.Inventory = inventory

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	slog.Info("issues deleted", "count", deleted)
	jsonResponse(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *IssuesHandler) respondEngineError(w http.ResponseWriter, err error) {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		engineError(w, engErr)
		return
	}
	jsonError(w, http.StatusInternalServerError, "internal error")
}

func findIssue(issues []model.Issue, id string) model.Issue {
	for _, issue := range issues {
		if issue.ID == id {
			return issue
		}
	}
	return model.Issue{}
}

func logWarnings(issueID string, warnings []engine.Warning) {
	for _, warning := range warnings {
		slog.Warn("stock desync recovered", "issue", issueID,
			"item", warning.ItemID, "requested", warning.Requested, "applied", warning.Applied)
	}
}
