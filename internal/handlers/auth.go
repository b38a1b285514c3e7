package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Dinesh751/hms-auth-service/internal/apperrors"
	"github.com/Dinesh751/hms-auth-service/internal/handlers/render"
	"github.com/Dinesh751/hms-auth-service/internal/logger"
	"github.com/Dinesh751/hms-auth-service/internal/models"
)

// Auth operations the HTTP layer depends on
type AuthService interface {
	// Register user and issue the first token pair
	// Has to return apperrors.ErrUserAlreadyExists if email is taken and
	// apperrors.ErrInvalidEmail / ErrWeakPassword on validation failures
	Register(ctx context.Context, email string, password string, role models.Role) (models.User, models.TokenPair, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound on any credential failure
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Rotate tokens using a refresh token
	Refresh(ctx context.Context, refreshToken string) (models.User, models.TokenPair, error)

	// Refresh cookie transport
	SetRefreshCookie(w http.ResponseWriter, pair models.TokenPair)
	ClearRefreshCookie(w http.ResponseWriter)
	GetRefreshToken(r *http.Request) (string, error)
}

// User summary nested in token responses
type userInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Enabled bool   `json:"enabled"`
}

type tokenResponse struct {
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
	ExpiresIn   int64    `json:"expiresIn"`
	User        userInfo `json:"user"`
}

type AuthHandler struct {
	auth   AuthService
	logger logger.Logger
}

func NewAuth(auth AuthService, l logger.Logger) *AuthHandler {
	if l == nil {
		l = logger.NewNoOp()
	}
	return &AuthHandler{auth: auth, logger: l}
}

func (h *AuthHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /refresh-token", h.refresh)
	mux.HandleFunc("POST /logout", h.logout)
	mux.HandleFunc("GET /health", h.health)

	return mux
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,password"`
		Role     string `json:"role" validate:"required"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	role, err := models.ParseRole(data.Role)
	if err != nil {
		render.Fail(w, http.StatusBadRequest, "Registration failed", "Unknown role: "+data.Role)
		return
	}

	user, pair, err := h.auth.Register(r.Context(), data.Email, data.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.Fail(w, http.StatusConflict, "Registration failed", "User with this email already exists")
		case errors.Is(err, apperrors.ErrInvalidEmail), errors.Is(err, apperrors.ErrWeakPassword):
			render.Fail(w, http.StatusBadRequest, "Registration failed", err.Error())
		default:
			h.logger.Error("registration failed", "error", err)
			render.Fail(w, http.StatusInternalServerError, "Registration failed", "Internal server error")
		}
		return
	}

	h.auth.SetRefreshCookie(w, pair)
	render.Success(w, http.StatusCreated, "User registered successfully", newTokenResponse(user, pair))
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	user, pair, err := h.auth.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		// Wrong password and unknown user are deliberately indistinguishable
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Fail(w, http.StatusUnauthorized, "Authentication failed", "Invalid email or password")
		default:
			h.logger.Error("login failed", "error", err)
			render.Fail(w, http.StatusInternalServerError, "Login failed", "Internal server error")
		}
		return
	}

	h.auth.SetRefreshCookie(w, pair)
	render.OK(w, "Login successful", newTokenResponse(user, pair))
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := h.auth.GetRefreshToken(r)
	if err != nil {
		render.Fail(w, http.StatusUnauthorized, "Token refresh failed", "No refresh token found")
		return
	}

	user, pair, err := h.auth.Refresh(r.Context(), refresh)
	if err != nil {
		// Any refresh failure invalidates the cookie
		h.auth.ClearRefreshCookie(w)

		switch {
		case apperrors.IsTokenInvalid(err),
			errors.Is(err, apperrors.ErrUserNotFound),
			errors.Is(err, apperrors.ErrUserDisabled):
			render.Fail(w, http.StatusUnauthorized, "Token refresh failed", "Invalid or expired refresh token")
		default:
			h.logger.Error("token refresh failed", "error", err)
			render.Fail(w, http.StatusInternalServerError, "Token refresh failed", "Internal server error")
		}
		return
	}

	h.auth.SetRefreshCookie(w, pair)
	render.OK(w, "Token refresh successful", newTokenResponse(user, pair))
}

// logout clears the refresh cookie; idempotent, succeeds whether or not a
// cookie existed
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearRefreshCookie(w)
	render.OK(w, "Logout successful", nil)
}

func (h *AuthHandler) health(w http.ResponseWriter, r *http.Request) {
	type healthData struct {
		Status string `json:"status"`
	}

	render.OK(w, "Service is healthy", healthData{Status: "UP"})
}

func newTokenResponse(user models.User, pair models.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken: pair.Access.Value,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(pair.Access.ExpiresAt).Seconds()),
		User: userInfo{
			ID:      user.ID.String(),
			Email:   user.Email,
			Role:    user.Role.String(),
			Enabled: user.Enabled,
		},
	}
}
