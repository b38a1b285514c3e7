package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dinesh751/hms-auth-service/internal/apperrors"
	"github.com/Dinesh751/hms-auth-service/internal/models"
)

// In memory user service stub, one user with a plain text password
type fakeUsers struct {
	user     models.User
	password string
}

func (f *fakeUsers) Register(_ context.Context, email string, _ string, role models.Role) (models.User, error) {
	if email == f.user.Email {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}

	return models.User{
		ID:      uuid.New(),
		Email:   email,
		Role:    role,
		Enabled: true,
	}, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, email string, password string) (models.User, error) {
	if email != f.user.Email || password != f.password || !f.user.Enabled {
		return models.User{}, apperrors.ErrUserNotFound
	}

	return f.user, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	if email != f.user.Email {
		return models.User{}, apperrors.ErrUserNotFound
	}

	return f.user, nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUsers) {
	t.Helper()

	tokens := newTestManager(t, TokenConfig{})
	cookies := NewCookieTransport(CookieConfig{}, tokens.RefreshTTL())
	users := &fakeUsers{
		user: models.User{
			ID:      uuid.New(),
			Email:   "patient@example.com",
			Role:    models.RolePatient,
			Enabled: true,
		},
		password: "Sup3rSecret",
	}

	service, err := NewService(tokens, cookies, users, nil)
	require.NoError(t, err)

	return service, users
}

func TestNewService(t *testing.T) {
	tokens := newTestManager(t, TokenConfig{})
	cookies := NewCookieTransport(CookieConfig{}, time.Hour)

	t.Run("nil dependencies rejected", func(t *testing.T) {
		_, err := NewService(nil, cookies, &fakeUsers{}, nil)
		require.Error(t, err)

		_, err = NewService(tokens, nil, &fakeUsers{}, nil)
		require.Error(t, err)

		_, err = NewService(tokens, cookies, nil, nil)
		require.Error(t, err)
	})

	t.Run("nil logger tolerated", func(t *testing.T) {
		_, err := NewService(tokens, cookies, &fakeUsers{}, nil)
		require.NoError(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	service, users := newTestAuthService(t)
	ctx := context.Background()

	t.Run("valid credentials issue a pair", func(t *testing.T) {
		user, pair, err := service.Login(ctx, users.user.Email, users.password)
		require.NoError(t, err)

		assert.Equal(t, users.user.ID, user.ID)
		assert.NotEmpty(t, pair.Access.Value)
		assert.NotEmpty(t, pair.Refresh.Value)
	})

	t.Run("wrong password issues nothing", func(t *testing.T) {
		_, pair, err := service.Login(ctx, users.user.Email, "wrong")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.Empty(t, pair.Access.Value)
		assert.Empty(t, pair.Refresh.Value)
	})

	t.Run("unknown user issues nothing", func(t *testing.T) {
		_, _, err := service.Login(ctx, "ghost@example.com", "whatever")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestAuthService_Register(t *testing.T) {
	service, users := newTestAuthService(t)
	ctx := context.Background()

	t.Run("new user gets a pair", func(t *testing.T) {
		user, pair, err := service.Register(ctx, "new@example.com", "Sup3rSecret", models.RoleDoctor)
		require.NoError(t, err)

		assert.Equal(t, "new@example.com", user.Email)
		assert.NotEmpty(t, pair.Access.Value)
		assert.NotEmpty(t, pair.Refresh.Value)
	})

	t.Run("duplicate registration issues nothing", func(t *testing.T) {
		_, pair, err := service.Register(ctx, users.user.Email, "Sup3rSecret", models.RolePatient)
		require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		assert.Empty(t, pair.Access.Value)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	service, users := newTestAuthService(t)
	ctx := context.Background()

	t.Run("valid refresh token rotates the pair", func(t *testing.T) {
		_, original, err := service.Login(ctx, users.user.Email, users.password)
		require.NoError(t, err)

		user, rotated, err := service.Refresh(ctx, original.Refresh.Value)
		require.NoError(t, err)

		assert.Equal(t, users.user.Email, user.Email)
		assert.NotEmpty(t, rotated.Access.Value)

		originalClaims, err := service.tokens.ValidateRefresh(original.Refresh.Value)
		require.NoError(t, err)
		rotatedClaims, err := service.tokens.ValidateRefresh(rotated.Refresh.Value)
		require.NoError(t, err)

		assert.NotEqual(t, originalClaims.ID, rotatedClaims.ID, "rotation must mint a fresh jti")
	})

	t.Run("access token rejected", func(t *testing.T) {
		_, pair, err := service.Login(ctx, users.user.Email, users.password)
		require.NoError(t, err)

		_, _, err = service.Refresh(ctx, pair.Access.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenWrongType)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, _, err := service.Refresh(ctx, "garbage")
		require.ErrorIs(t, err, apperrors.ErrTokenMalformed)
	})

	t.Run("deleted user rejected", func(t *testing.T) {
		_, pair, err := service.Login(ctx, users.user.Email, users.password)
		require.NoError(t, err)

		users.user.Email = "renamed@example.com"
		defer func() { users.user.Email = "patient@example.com" }()

		_, _, err = service.Refresh(ctx, pair.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("disabled user rejected", func(t *testing.T) {
		_, pair, err := service.Login(ctx, users.user.Email, users.password)
		require.NoError(t, err)

		users.user.Enabled = false
		defer func() { users.user.Enabled = true }()

		_, _, err = service.Refresh(ctx, pair.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrUserDisabled)
	})
}

func TestAuthService_ResolveBearer(t *testing.T) {
	service, users := newTestAuthService(t)
	ctx := context.Background()

	login := func(t *testing.T) models.TokenPair {
		t.Helper()
		_, pair, err := service.Login(ctx, users.user.Email, users.password)
		require.NoError(t, err)
		return pair
	}

	requestWithHeader := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/profile/v1", nil)
		if value != "" {
			req.Header.Set("Authorization", value)
		}
		return req
	}

	t.Run("valid bearer token resolves identity", func(t *testing.T) {
		pair := login(t)

		identity, err := service.ResolveBearer(ctx, requestWithHeader("Bearer "+pair.Access.Value))
		require.NoError(t, err)

		assert.Equal(t, users.user.ID.String(), identity.UserID)
		assert.Equal(t, users.user.Email, identity.Email)
		assert.Equal(t, models.RolePatient, identity.Role)
		assert.True(t, identity.Enabled)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := service.ResolveBearer(ctx, requestWithHeader(""))
		require.ErrorIs(t, err, apperrors.ErrTokenMalformed)
	})

	t.Run("prefix is case sensitive", func(t *testing.T) {
		pair := login(t)

		_, err := service.ResolveBearer(ctx, requestWithHeader("bearer "+pair.Access.Value))
		require.ErrorIs(t, err, apperrors.ErrTokenMalformed)
	})

	t.Run("refresh token rejected as bearer", func(t *testing.T) {
		pair := login(t)

		_, err := service.ResolveBearer(ctx, requestWithHeader("Bearer "+pair.Refresh.Value))
		require.ErrorIs(t, err, apperrors.ErrTokenWrongType)
	})

	t.Run("disabled account rejected despite valid token", func(t *testing.T) {
		pair := login(t)

		users.user.Enabled = false
		defer func() { users.user.Enabled = true }()

		_, err := service.ResolveBearer(ctx, requestWithHeader("Bearer "+pair.Access.Value))
		require.ErrorIs(t, err, apperrors.ErrUserDisabled)
	})
}

func TestAuthService_CookieHelpers(t *testing.T) {
	service, users := newTestAuthService(t)
	ctx := context.Background()

	_, pair, err := service.Login(ctx, users.user.Email, users.password)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	service.SetRefreshCookie(rec, pair)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, pair.Refresh.Value, cookies[0].Value)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/v1/refresh-token", nil)
	req.AddCookie(cookies[0])

	read, err := service.GetRefreshToken(req)
	require.NoError(t, err)
	assert.Equal(t, pair.Refresh.Value, read)

	cleared := httptest.NewRecorder()
	service.ClearRefreshCookie(cleared)
	for _, cookie := range cleared.Result().Cookies() {
		assert.Empty(t, cookie.Value)
	}
}
