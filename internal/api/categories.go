package api

import (
	"database/sql"
	"errors"
	"net/http"
	"slices"

	"github.com/erazemk/pisarna/internal/engine"
	"github.com/erazemk/pisarna/internal/store"
)

// CategoriesHandler handles category reference data endpoints.
type CategoriesHandler struct {
	DB *sql.DB
}

type categoryRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	if data.Categories == nil {
		data.Categories = []string{}
	}
	jsonResponse(w, http.StatusOK, data.Categories)
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	if slices.Contains(data.Categories, req.Name) {
		jsonError(w, http.StatusConflict, "category already exists")
		return
	}
	data.Categories = append(data.Categories, req.Name)

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save categories")
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"name": req.Name})
}

// Delete handles DELETE /api/categories/{name}. Deletion is blocked while any
// inventory item still uses the category.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	name := r.PathValue("name")
	if !slices.Contains(data.Categories, name) {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}

	remaining, err := engine.RemoveCategory(name, data.Categories, data.Inventory)
	if err != nil {
		var engErr *engine.Error
		if errors.As(err, &engErr) {
			engineError(w, engErr)
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	data.Categories = remaining

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save categories")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
