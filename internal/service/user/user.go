package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"github.com/Dinesh751/hms-auth-service/internal/apperrors"
	"github.com/Dinesh751/hms-auth-service/internal/logger"
	"github.com/Dinesh751/hms-auth-service/internal/models"
	"github.com/Dinesh751/hms-auth-service/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// dummyHash is compared against when no user is found, so lookup misses and
// password mismatches take comparable time
var dummyHash = func() string {
	h, _ := DefaultHasher.Hash("timing-equalizer")
	return h
}()

type UserService struct {
	hasher   PasswordHasher
	userRepo repository.UserRepo
	logger   logger.Logger
}

func NewService(hasher PasswordHasher, userRepo repository.UserRepo, l logger.Logger) *UserService {
	if hasher == nil {
		hasher = DefaultHasher
	}
	if l == nil {
		l = logger.NewNoOp()
	}

	return &UserService{
		hasher:   hasher,
		userRepo: userRepo,
		logger:   l,
	}
}

// Register validates email format, password strength and uniqueness, then
// stores the user with a hashed password. Email is normalized to lowercase
// before any comparison or storage.
func (s *UserService) Register(ctx context.Context, email string, password string, role models.Role) (models.User, error) {
	var user models.User

	email = models.NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return user, apperrors.ErrInvalidEmail
	}

	if !isStrongPassword(password) {
		return user, apperrors.ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return user, fmt.Errorf("can't check user exists. Err: %w", err)
	}
	if exists {
		return user, apperrors.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err = s.userRepo.CreateUser(ctx, email, hash, role)
	if err != nil {
		return user, err
	}

	s.logger.Info("user registered", "email", user.Email, "role", user.Role)
	return user, nil
}

// Authenticate looks up an enabled user by normalized email and compares the
// password against the stored hash. Returns apperrors.ErrUserNotFound both
// when no enabled user exists and when the password does not match, so the
// two cases are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email string, password string) (models.User, error) {
	var user models.User

	user, err := s.userRepo.GetUserByEmail(ctx, models.NormalizeEmail(email))
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Burn a hash comparison anyway so the response time does not
		// reveal whether the account exists
		_ = s.hasher.Compare(dummyHash, password)
		return models.User{}, apperrors.ErrUserNotFound
	case err != nil:
		return models.User{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	if !user.Enabled {
		s.logger.Warn("login attempt for disabled account", "email", user.Email)
		return models.User{}, apperrors.ErrUserNotFound
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, apperrors.ErrUserNotFound
	}

	return user, nil
}

// GetByEmail returns the user by normalized email regardless of enabled flag
func (s *UserService) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.userRepo.GetUserByEmail(ctx, models.NormalizeEmail(email))
}

func (s *UserService) Enable(ctx context.Context, email string) (models.User, error) {
	return s.userRepo.SetEnabled(ctx, models.NormalizeEmail(email), true)
}

func (s *UserService) Disable(ctx context.Context, email string) (models.User, error) {
	return s.userRepo.SetEnabled(ctx, models.NormalizeEmail(email), false)
}

// UpdatePassword replaces a user's password, applying the same strength
// policy as registration
func (s *UserService) UpdatePassword(ctx context.Context, email string, password string) (models.User, error) {
	if !isStrongPassword(password) {
		return models.User{}, apperrors.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, models.NormalizeEmail(email), hash)
}

func (s *UserService) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return s.userRepo.CountByRole(ctx, role)
}

func (s *UserService) CountEnabled(ctx context.Context) (int64, error) {
	return s.userRepo.CountEnabled(ctx)
}

// isStrongPassword requires at least 8 characters with one uppercase, one
// lowercase letter and one digit
func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	return hasUpper && hasLower && hasDigit
}
