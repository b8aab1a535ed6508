package api

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/pisarna/internal/backup"
	"github.com/erazemk/pisarna/internal/model"
	"github.com/erazemk/pisarna/internal/store"
)

// maxImportSize bounds the import request body. Signature images dominate the
// document size, a few megabytes covers realistic datasets.
const maxImportSize = 32 << 20

// AdminHandler handles export, import and wipe.
type AdminHandler struct {
	DB *sql.DB
}

// Export handles GET /api/export and sends the full dataset as a downloadable
// JSON document.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load data")
		return
	}

	now := time.Now()
	filename := fmt.Sprintf("pisarna-export-%s.json", now.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	jsonResponse(w, http.StatusOK, backup.Export(data, now))
}

// Import handles POST /api/import. The uploaded document replaces all four
// collections at once; a document that fails structural or invariant checks
// is rejected whole and the current data is left untouched.
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	data, err := backup.Import(raw)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	slog.Info("data imported", "items", len(data.Inventory), "issues", len(data.Issues),
		"employees", len(data.Employees), "categories", len(data.Categories))
	jsonResponse(w, http.StatusOK, map[string]string{"status": "imported"})
}

// Wipe handles POST /api/wipe, deleting the domain collections. User accounts
// survive a wipe so the admin can log back in.
func (h *AdminHandler) Wipe(w http.ResponseWriter, r *http.Request) {
	if err := store.WipeData(r.Context(), h.DB); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to wipe data")
		return
	}

	claims := GetClaims(r.Context())
	slog.Warn("all data wiped", "by", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"status": "wiped"})
}

// defaultCategories is the starter category set a reset restores.
var defaultCategories = []string{"Writing", "Paper", "Desk Supplies", "Filing", "Other"}

// Reset handles POST /api/reset: wipe, then restore the starter categories so
// the tracker is usable without setup.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	data := &store.Data{
		Inventory:  []model.InventoryItem{},
		Issues:     []model.Issue{},
		Employees:  []model.Employee{},
		Categories: append([]string(nil), defaultCategories...),
	}
	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to reset data")
		return
	}

	claims := GetClaims(r.Context())
	slog.Warn("data reset to defaults", "by", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"status": "reset"})
}
