package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dinesh751/hms-auth-service/internal/apperrors"
	"github.com/Dinesh751/hms-auth-service/internal/logger"
	"github.com/Dinesh751/hms-auth-service/internal/models"
)

// Exact prefix required on the Authorization header, case sensitive
const bearerPrefix = "Bearer "

// User operations the auth service depends on
type UserService interface {
	Register(ctx context.Context, email string, password string, role models.Role) (models.User, error)
	Authenticate(ctx context.Context, email string, password string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// AuthService orchestrates login, registration, refresh rotation, logout
// and per request identity resolution
type AuthService struct {
	tokens  *TokenManager
	cookies *CookieTransport
	users   UserService
	logger  logger.Logger
}

func NewService(tokens *TokenManager, cookies *CookieTransport, users UserService, l logger.Logger) (*AuthService, error) {
	if tokens == nil || cookies == nil || users == nil {
		return nil, errors.New("token manager, cookie transport and user service must not be nil")
	}
	if l == nil {
		l = logger.NewNoOp()
	}

	return &AuthService{
		tokens:  tokens,
		cookies: cookies,
		users:   users,
		logger:  l,
	}, nil
}

func (s *AuthService) AccessTTL() int64 {
	return int64(s.tokens.AccessTTL().Seconds())
}

// Register creates the user and issues the first token pair
func (s *AuthService) Register(ctx context.Context, email string, password string, role models.Role) (models.User, models.TokenPair, error) {
	user, err := s.users.Register(ctx, email, password, role)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

// Login verifies credentials and issues a token pair.
// On failure no tokens are issued and no cookie must be written.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

// Refresh validates the refresh token, re-checks the live user record and
// issues a brand new pair. The previous refresh token is superseded by the
// cookie overwrite; no revocation list is kept.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.User, models.TokenPair, error) {
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected", "reason", err)
		return models.User{}, models.TokenPair{}, err
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	if !user.Enabled {
		s.logger.Warn("refresh attempt for disabled account", "email", user.Email)
		return models.User{}, models.TokenPair{}, apperrors.ErrUserDisabled
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

// ResolveBearer turns the Authorization header of a request into an
// authenticated identity: exact "Bearer " prefix, access token validation,
// then a live user lookup so claims from an old token never outlive a
// deleted or disabled account.
func (s *AuthService) ResolveBearer(ctx context.Context, r *http.Request) (models.Identity, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return models.Identity{}, apperrors.ErrTokenMalformed
	}

	claims, err := s.tokens.ValidateAccess(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		s.logger.Debug("access token rejected", "reason", err)
		return models.Identity{}, err
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return models.Identity{}, err
	}

	if !user.Enabled {
		return models.Identity{}, apperrors.ErrUserDisabled
	}

	return models.Identity{
		UserID:  user.ID.String(),
		Email:   user.Email,
		Role:    user.Role,
		Enabled: user.Enabled,
	}, nil
}

// SetRefreshCookie writes the rotated refresh token to the response
func (s *AuthService) SetRefreshCookie(w http.ResponseWriter, pair models.TokenPair) {
	s.cookies.Write(w, pair.Refresh.Value)
}

// ClearRefreshCookie strips the refresh cookie; idempotent
func (s *AuthService) ClearRefreshCookie(w http.ResponseWriter) {
	s.cookies.Clear(w)
}

// GetRefreshToken reads the refresh token cookie from the request
func (s *AuthService) GetRefreshToken(r *http.Request) (string, error) {
	return s.cookies.Read(r)
}
