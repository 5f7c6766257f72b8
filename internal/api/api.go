// Package api handles routes and their associated handlers
package api

import (
	"net/http"
)

func SetupMux(cfg *APIConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// middleware
	mdAuth := cfg.middlewareAuthenticate
	mdAdmin := func(next http.HandlerFunc) http.HandlerFunc {
		return mdAuth(cfg.middlewareRequireAdmin(next))
	}

	// REGISTER API HANDLERS
	// ======================

	// State
	mux.HandleFunc("GET /api/health", cfg.handleHealth)
	mux.HandleFunc("GET /admin/users/count", cfg.handleGetTotalUserCount)
	// Authentication
	mux.HandleFunc("POST /api/auth/register", cfg.handleRegister)
	mux.HandleFunc("POST /api/auth/login", cfg.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", cfg.handleRefresh)
	mux.HandleFunc("POST /api/auth/logout", mdAuth(cfg.handleLogout))
	mux.HandleFunc("GET /api/auth/me", mdAuth(cfg.handleMe))
	mux.HandleFunc("PUT /api/auth/password", mdAuth(cfg.handleChangePassword))
	// Expenses
	mux.HandleFunc("GET /api/expenses/stats", mdAuth(cfg.handleGetExpenseStats))
	mux.HandleFunc("GET /api/expenses", mdAuth(cfg.handleGetExpenses))
	mux.HandleFunc("POST /api/expenses", mdAuth(cfg.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/{expense_id}", mdAuth(cfg.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{expense_id}", mdAuth(cfg.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{expense_id}", mdAuth(cfg.handleDeleteExpense))
	// Categories
	mux.HandleFunc("GET /api/categories", mdAuth(cfg.handleGetCategories))
	mux.HandleFunc("POST /api/categories", mdAuth(cfg.handleCreateCategory))
	mux.HandleFunc("GET /api/categories/{category_id}", mdAuth(cfg.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{category_id}", mdAuth(cfg.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{category_id}", mdAuth(cfg.handleDeleteCategory))
	mux.HandleFunc("PATCH /api/categories/{category_id}/toggle", mdAuth(cfg.handleToggleCategory))
	// Users
	mux.HandleFunc("GET /api/users", mdAdmin(cfg.handleGetUsers))
	mux.HandleFunc("POST /api/users", mdAdmin(cfg.handleCreateUser))
	mux.HandleFunc("GET /api/users/{user_id}", mdAdmin(cfg.handleGetUser))
	mux.HandleFunc("PUT /api/users/{user_id}", mdAdmin(cfg.handleUpdateUser))
	mux.HandleFunc("DELETE /api/users/{user_id}", mdAdmin(cfg.handleDeleteUser))
	// Reports
	mux.HandleFunc("GET /api/reports/monthly", mdAuth(cfg.handleGetMonthlyReport))
	mux.HandleFunc("GET /api/reports/monthly/pdf", mdAuth(cfg.handleGetMonthlyReportPDF))
	mux.HandleFunc("GET /api/reports/yearly", mdAuth(cfg.handleGetYearlyReport))
	return mux
}

// NewHandler wraps the routes with request logging and CORS.
func NewHandler(cfg *APIConfig) http.Handler {
	return cfg.middlewareLogRequests(cfg.middlewareCORS(SetupMux(cfg)))
}
