package repository

import (
	"context"

	"github.com/Dinesh751/hms-auth-service/internal/models"
)

// User storage interface consumed by the auth and user services.
// Emails are expected to be normalized (lowercase) by the caller.
type UserRepo interface {
	// Create user with already hashed password
	// If user with same email exists must return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email string, hashedPassword string, role models.Role) (models.User, error)

	// Get user by normalized email regardless of enabled flag
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Check user with normalized email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Set the enabled flag of the user account
	// If user not found must return apperrors.ErrUserNotFound
	SetEnabled(ctx context.Context, email string, enabled bool) (models.User, error)

	// Replace the stored password hash
	// If user not found must return apperrors.ErrUserNotFound
	UpdatePassword(ctx context.Context, email string, hashedPassword string) (models.User, error)

	// Count hooks exposed for dashboards and metrics
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	CountEnabled(ctx context.Context) (int64, error)
}
