package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/pisarna/internal/engine"
	"github.com/erazemk/pisarna/internal/model"
	"github.com/erazemk/pisarna/internal/store"
)

// DashboardHandler serves the aggregated overview numbers.
type DashboardHandler struct {
	DB *sql.DB
}

type dashboardResponse struct {
	TotalItems        int                   `json:"totalItems"`
	TotalStock        int                   `json:"totalStock"`
	TotalEmployees    int                   `json:"totalEmployees"`
	TotalIssues       int                   `json:"totalIssues"`
	LowStock          []model.InventoryItem `json:"lowStock"`
	PendingSignatures []model.Issue         `json:"pendingSignatures"`
}

// Overview handles GET /api/dashboard. Everything is recomputed from the
// current collections, nothing is cached between requests.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	resp := dashboardResponse{
		TotalItems:        len(data.Inventory),
		TotalEmployees:    len(data.Employees),
		TotalIssues:       len(data.Issues),
		LowStock:          engine.LowStock(data.Inventory),
		PendingSignatures: engine.PendingSignatures(data.Issues),
	}
	for _, item := range data.Inventory {
		resp.TotalStock += item.StockQuantity
	}
	if resp.LowStock == nil {
		resp.LowStock = []model.InventoryItem{}
	}
	if resp.PendingSignatures == nil {
		resp.PendingSignatures = []model.Issue{}
	}

	jsonResponse(w, http.StatusOK, resp)
}
