package handlers

import (
	"net/http"

	"github.com/Dinesh751/hms-auth-service/internal/handlers/middleware"
	"github.com/Dinesh751/hms-auth-service/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// NewRouter wires the auth endpoints, the role gated dashboards and the
// request middlewares. The authenticator attaches identities; RequireAuth
// and RequireRole turn a missing identity into a rejection per route.
func NewRouter(
	authHandler *AuthHandler,
	stats UserStats,
	authenticator func(http.Handler) http.Handler,
	loggerMiddleware func(http.Handler) http.Handler,
) http.Handler {
	root := http.NewServeMux()

	root.Handle("/api/auth/v1/", http.StripPrefix("/api/auth/v1", authHandler.Handler()))

	withAuth := middleware.RequireAuth
	root.Handle("GET /api/profile/v1", withAuth(handleProfile()))

	root.Handle("GET /api/admin/v1/dashboard",
		middleware.RequireRole(models.RoleAdmin)(handleAdminDashboard(stats)))
	root.Handle("GET /api/doctor/v1/dashboard",
		middleware.RequireRole(models.RoleDoctor)(handleDoctorDashboard(stats)))
	root.Handle("GET /api/patient/v1/dashboard",
		middleware.RequireRole(models.RolePatient)(handlePatientDashboard(stats)))

	return chain(root,
		loggerMiddleware,
		authenticator,
	)
}
