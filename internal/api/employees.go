package api

import (
	"database/sql"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/erazemk/pisarna/internal/model"
	"github.com/erazemk/pisarna/internal/store"
)

// EmployeesHandler handles employee reference data endpoints.
type EmployeesHandler struct {
	DB *sql.DB
}

type employeeRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// List handles GET /api/employees.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load employees")
		return
	}

	if data.Employees == nil {
		data.Employees = []model.Employee{}
	}
	jsonResponse(w, http.StatusOK, data.Employees)
}

// Create handles POST /api/employees.
func (h *EmployeesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Department == "" {
		jsonError(w, http.StatusBadRequest, "name and department required")
		return
	}

	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load employees")
		return
	}

	employee := model.Employee{ID: uuid.NewString(), Name: req.Name, Department: req.Department}
	data.Employees = append(data.Employees, employee)

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save employees")
		return
	}

	jsonResponse(w, http.StatusCreated, employee)
}

// Update handles PUT /api/employees/{id}. Historical issues keep their
// employee name snapshot, only future issues see the new name.
func (h *EmployeesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Department == "" {
		jsonError(w, http.StatusBadRequest, "name and department required")
		return
	}

	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load employees")
		return
	}

	id := r.PathValue("id")
	idx := slices.IndexFunc(data.Employees, func(e model.Employee) bool { return e.ID == id })
	if idx < 0 {
		jsonError(w, http.StatusNotFound, "employee not found")
		return
	}

	data.Employees[idx] = model.Employee{ID: id, Name: req.Name, Department: req.Department}

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save employees")
		return
	}

	jsonResponse(w, http.StatusOK, data.Employees[idx])
}

// Delete handles DELETE /api/employees/{id}. No cascade: existing issues are
// historical records and stay untouched.
func (h *EmployeesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadData(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load employees")
		return
	}

	id := r.PathValue("id")
	before := len(data.Employees)
	data.Employees = slices.DeleteFunc(data.Employees, func(e model.Employee) bool { return e.ID == id })
	if len(data.Employees) == before {
		jsonError(w, http.StatusNotFound, "employee not found")
		return
	}

	if err := store.SaveData(r.Context(), h.DB, data); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save employees")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "employee deleted"})
}
