package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dinesh751/hms-auth-service/internal/handlers/identityctx"
	"github.com/Dinesh751/hms-auth-service/internal/handlers/render"
	"github.com/Dinesh751/hms-auth-service/internal/models"
)

// Count hooks exposed by the user store for dashboards
type UserStats interface {
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	CountEnabled(ctx context.Context) (int64, error)
}

type identitySummary struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Accessed time.Time `json:"accessTime"`
}

func newIdentitySummary(id models.Identity) identitySummary {
	return identitySummary{
		ID:       id.UserID,
		Email:    id.Email,
		Role:     id.Role.String(),
		Accessed: time.Now().UTC(),
	}
}

// handleProfile answers for any authenticated user
func handleProfile() http.Handler {
	type response struct {
		Profile identitySummary `json:"profile"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Identity is guaranteed by the RequireAuth middleware
		id, _ := identityctx.FromContext(r.Context())
		render.OK(w, "Profile retrieved successfully", response{Profile: newIdentitySummary(id)})
	})
}

func handleAdminDashboard(stats UserStats) http.Handler {
	type systemStats struct {
		TotalAdmins   int64 `json:"totalAdmins"`
		TotalDoctors  int64 `json:"totalDoctors"`
		TotalPatients int64 `json:"totalPatients"`
		ActiveUsers   int64 `json:"activeUsers"`
	}
	type response struct {
		Admin identitySummary `json:"admin"`
		Stats systemStats     `json:"systemStats"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := identityctx.FromContext(r.Context())

		s, err := collectStats(r.Context(), stats)
		if err != nil {
			render.Fail(w, http.StatusInternalServerError, "Failed to build dashboard", "Internal server error")
			return
		}

		render.OK(w, "Admin dashboard retrieved successfully", response{
			Admin: newIdentitySummary(id),
			Stats: systemStats{
				TotalAdmins:   s.admins,
				TotalDoctors:  s.doctors,
				TotalPatients: s.patients,
				ActiveUsers:   s.enabled,
			},
		})
	})
}

func handleDoctorDashboard(stats UserStats) http.Handler {
	type medicalStats struct {
		TotalPatients  int64 `json:"totalPatients"`
		TotalDoctors   int64 `json:"totalDoctors"`
		ActivePatients int64 `json:"activePatients"`
	}
	type response struct {
		Doctor identitySummary `json:"doctor"`
		Stats  medicalStats    `json:"medicalStats"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := identityctx.FromContext(r.Context())

		s, err := collectStats(r.Context(), stats)
		if err != nil {
			render.Fail(w, http.StatusInternalServerError, "Failed to build dashboard", "Internal server error")
			return
		}

		render.OK(w, "Doctor dashboard retrieved successfully", response{
			Doctor: newIdentitySummary(id),
			Stats: medicalStats{
				TotalPatients:  s.patients,
				TotalDoctors:   s.doctors,
				ActivePatients: s.enabled,
			},
		})
	})
}

func handlePatientDashboard(stats UserStats) http.Handler {
	type patientStats struct {
		TotalDoctors int64 `json:"totalDoctors"`
	}
	type response struct {
		Patient identitySummary `json:"patient"`
		Stats   patientStats    `json:"patientStats"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := identityctx.FromContext(r.Context())

		doctors, err := stats.CountByRole(r.Context(), models.RoleDoctor)
		if err != nil {
			render.Fail(w, http.StatusInternalServerError, "Failed to build dashboard", "Internal server error")
			return
		}

		render.OK(w, "Patient dashboard retrieved successfully", response{
			Patient: newIdentitySummary(id),
			Stats:   patientStats{TotalDoctors: doctors},
		})
	})
}

type roleCounts struct {
	admins   int64
	doctors  int64
	patients int64
	enabled  int64
}

func collectStats(ctx context.Context, stats UserStats) (roleCounts, error) {
	var s roleCounts
	var err error

	if s.admins, err = stats.CountByRole(ctx, models.RoleAdmin); err != nil {
		return s, err
	}
	if s.doctors, err = stats.CountByRole(ctx, models.RoleDoctor); err != nil {
		return s, err
	}
	if s.patients, err = stats.CountByRole(ctx, models.RolePatient); err != nil {
		return s, err
	}
	if s.enabled, err = stats.CountEnabled(ctx); err != nil {
		return s, err
	}

	return s, nil
}
