package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dinesh751/hms-auth-service/internal/db"
	"github.com/Dinesh751/hms-auth-service/internal/handlers"
	"github.com/Dinesh751/hms-auth-service/internal/handlers/middleware"
	"github.com/Dinesh751/hms-auth-service/internal/logger"
	"github.com/Dinesh751/hms-auth-service/internal/repository/postgres"
	"github.com/Dinesh751/hms-auth-service/internal/service/auth"
	"github.com/Dinesh751/hms-auth-service/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger. Err: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repository
	userRepo := &postgres.UserRepo{DB: pool}

	// Initialize services
	// Corrupt key material aborts startup here instead of per request
	tokenManager, err := auth.NewTokenManager(auth.TokenConfig{
		SecretKey:  c.SecretKey,
		AccessTTL:  time.Duration(c.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(c.RefreshTTLSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	cookies := auth.NewCookieTransport(auth.CookieConfig{
		Name:     c.CookieName,
		Path:     c.CookiePath,
		Domain:   c.CookieDomain,
		Secure:   c.CookieSecure,
		SameSite: c.CookieSameSite,
	}, tokenManager.RefreshTTL())

	userService := user.NewService(user.DefaultHasher, userRepo, log)
	authService, err := auth.NewService(tokenManager, cookies, userService, log)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	// Initialize handlers and middlewares
	authHandler := handlers.NewAuth(authService, log)
	authenticator := middleware.Authenticator(authService, c.PublicPaths, log)

	mux := handlers.NewRouter(
		authHandler,
		userService,
		authenticator,
		middleware.Logger(log),
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close connections gracefully
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
