package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/pisarna/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	employeesHandler := &EmployeesHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db}
	issuesHandler := &IssuesHandler{DB: db}
	dashboardHandler := &DashboardHandler{DB: db}
	adminHandler := &AdminHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireAssistant := RequireRole(model.RoleAssistant)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Dashboard (all roles).
	mux.Handle("GET /api/dashboard", authMW(http.HandlerFunc(dashboardHandler.Overview)))

	// Items: read (all roles), write (assistant+).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireAssistant(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireAssistant(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireAssistant(http.HandlerFunc(itemsHandler.Delete))))

	// Employees: read (all roles), write (assistant+).
	mux.Handle("GET /api/employees", authMW(http.HandlerFunc(employeesHandler.List)))
	mux.Handle("POST /api/employees", authMW(requireAssistant(http.HandlerFunc(employeesHandler.Create))))
	mux.Handle("PUT /api/employees/{id}", authMW(requireAssistant(http.HandlerFunc(employeesHandler.Update))))
	mux.Handle("DELETE /api/employees/{id}", authMW(requireAssistant(http.HandlerFunc(employeesHandler.Delete))))

	// Categories: read (all roles), write (assistant+).
	mux.Handle("GET /api/categories", authMW(http.HandlerFunc(categoriesHandler.List)))
	mux.Handle("POST /api/categories", authMW(requireAssistant(http.HandlerFunc(categoriesHandler.Create))))
	mux.Handle("DELETE /api/categories/{name}", authMW(requireAssistant(http.HandlerFunc(categoriesHandler.Delete))))

	// Issues: read, create and sign (all roles); lifecycle writes (assistant+).
	// Viewers can create and sign so an employee at the counter does not need
	// an assistant account to acknowledge a handout.
	mux.Handle("GET /api/issues", authMW(http.HandlerFunc(issuesHandler.List)))
	mux.Handle("POST /api/issues", authMW(http.HandlerFunc(issuesHandler.Create)))
	mux.Handle("POST /api/issues/{id}/signature", authMW(http.HandlerFunc(issuesHandler.Sign)))
	mux.Handle("POST /api/issues/{id}/status", authMW(requireAssistant(http.HandlerFunc(issuesHandler.UpdateStatus))))
	mux.Handle("POST /api/issues/{id}/returns", authMW(requireAssistant(http.HandlerFunc(issuesHandler.Returns))))
	mux.Handle("POST /api/issues/delete", authMW(requireAssistant(http.HandlerFunc(issuesHandler.Delete))))

	// Data management (admin only).
	mux.Handle("GET /api/export", authMW(requireAdmin(http.HandlerFunc(adminHandler.Export))))
	mux.Handle("POST /api/import", authMW(requireAdmin(http.HandlerFunc(adminHandler.Import))))
	mux.Handle("POST /api/wipe", authMW(requireAdmin(http.HandlerFunc(adminHandler.Wipe))))
	mux.Handle("POST /api/reset", authMW(requireAdmin(http.HandlerFunc(adminHandler.Reset))))

	return mux
}
