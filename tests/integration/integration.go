package integration

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/Dinesh751/hms-auth-service/internal/handlers"
	"github.com/Dinesh751/hms-auth-service/internal/handlers/middleware"
	"github.com/Dinesh751/hms-auth-service/internal/repository/postgres"
	"github.com/Dinesh751/hms-auth-service/internal/service/auth"
	"github.com/Dinesh751/hms-auth-service/internal/service/user"
	"github.com/Dinesh751/hms-auth-service/internal/testutil"
)

// Token lifetimes used by the integration stack
const (
	AccessTTL  = 5 * time.Minute
	RefreshTTL = time.Hour

	// SecretKey is shared so tests can mint tokens with custom lifetimes
	SecretKey = "integration-secret-key-0123456789abcdef"
)

// Services assembled for a single integration test run
type Services struct {
	UserService *user.UserService
	AuthService *auth.AuthService
	Tokens      *auth.TokenManager
}

// RunTx builds the full service stack on a rolled back transaction and
// serves the production router from a test server. DB changes made inside
// fn never leak between tests.
func RunTx(pool *pgxpool.Pool, t *testing.T, fn func(srvURL string, s Services)) {
	t.Helper()

	testutil.WithTx(pool, t, func(tx pgx.Tx) {
		userRepo := &postgres.UserRepo{DB: tx}
		userService := user.NewService(nil, userRepo, nil)

		tokens, err := auth.NewTokenManager(auth.TokenConfig{
			SecretKey:  SecretKey,
			AccessTTL:  AccessTTL,
			RefreshTTL: RefreshTTL,
		})
		require.NoError(t, err)

		cookies := auth.NewCookieTransport(auth.CookieConfig{}, tokens.RefreshTTL())

		authService, err := auth.NewService(tokens, cookies, userService, nil)
		require.NoError(t, err)

		router := handlers.NewRouter(
			handlers.NewAuth(authService, nil),
			userService,
			middleware.Authenticator(authService, nil, nil),
			func(next http.Handler) http.Handler { return next },
		)

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, Services{
			UserService: userService,
			AuthService: authService,
			Tokens:      tokens,
		})
	})
}
