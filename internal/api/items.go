package api

import (
	"database/sql"
	"net/http"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/erazemk/pisarna/internal/engine"
	"github.com/erazemk/pisarna/internal/model"
	"github.com/erazemk/pisarna/internal/store"
)

// ItemsHandler handles inventory item CRUD endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type itemRequest struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	StockQuantity int    `json:"stockQuantity"`
	Unit          string `json:"unit"`
	Threshold     int    `json:"threshold"`
}

func (req *itemRequest) validate(categories []string) string {
	if req.Name == "" {
		return "name required"
	}
	if req.Unit == "" {
		return "unit required"
	}
	if req.StockQuantity < 0 {
		return "stockQuantity must not be negative"
	}
	if req.Threshold < 0 {
		return "threshold must not be negative"
	}
	if !slices.Contains(categories, req.Category) {
		return "unknown category"
	}
	return ""
}

// List handles GET /api/items. Supports ?category= and ?low=true filters.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load inventory")
		return
	}

	items := data.Inventory
	if low, _ := strconv.ParseBool(r.URL.Query().Get("low")); low {
		items = engine.LowStock(items)
	}
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []model.InventoryItem
		for _, item := range items {
			if item.Category == category {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	if items == nil {
		items = []model.InventoryItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load inventory")
		return
	}

	if msg := req.validate(data.Categories); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	item := model.InventoryItem{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Category:      req.Category,
		StockQuantity: req.StockQuantity,
		Unit:          req.Unit,
		Threshold:     req.Threshold,
	}
	data.Inventory = append(data.Inventory, item)

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save inventory")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load inventory")
		return
	}

	id := r.PathValue("id")
	for _, item := range data.Inventory {
		if item.ID == id {
			jsonResponse(w, http.StatusOK, item)
			return
		}
	}
	jsonError(w, http.StatusNotFound, "item not found")
}

// Update handles PUT /api/items/{id}. Direct stock edits are permitted here,
// the issue lifecycle is not the only writer of stock levels.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load inventory")
		return
	}

	if msg := req.validate(data.Categories); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	id := r.PathValue("id")
	idx := slices.IndexFunc(data.Inventory, func(it model.InventoryItem) bool { return it.ID == id })
	if idx < 0 {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	data.Inventory[idx] = model.InventoryItem{
		ID:            id,
		Name:          req.Name,
		Category:      req.Category,
		StockQuantity: req.StockQuantity,
		Unit:          req.Unit,
		Threshold:     req.Threshold,
	}

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save inventory")
		return
	}

	jsonResponse(w, http.StatusOK, data.Inventory[idx])
}

// Delete handles DELETE /api/items/{id}. Historical issues keep their
// denormalized item name, the dangling reference is a tolerated state.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load inventory")
		return
	}

	id := r.PathValue("id")
	before := len(data.Inventory)
	data.Inventory = slices.DeleteFunc(data.Inventory, func(it model.InventoryItem) bool { return it.ID == id })
	if len(data.Inventory) == before {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save inventory")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
