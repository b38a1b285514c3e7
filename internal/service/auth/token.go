package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Dinesh751/hms-auth-service/internal/apperrors"
	"github.com/Dinesh751/hms-auth-service/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSigningMethod   = "HS512"

	// Minimum secret length for the HMAC-SHA-512 class algorithms
	minSecretLen = 32
)

// Claims carried by issued tokens. Access tokens fill UserID, Role and
// Enabled; refresh tokens fill UserID and the jti (RegisteredClaims.ID).
// Subject is always the normalized user email.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID    string           `json:"userId,omitempty"`
	Role      models.Role      `json:"role,omitempty"`
	Enabled   bool             `json:"enabled,omitempty"`
	TokenType models.TokenType `json:"tokenType"`
}

// Token manager with sensible defaults
type TokenConfig struct {
	// Secret key used for both signing and verification
	// Required, minimum 32 bytes
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set then default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager issues and validates signed tokens. Stateless: every token is
// self describing and independently verifiable, no per request state is
// kept. Safe for concurrent use.
type TokenManager struct {
	key        []byte
	alg        jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if len(cfg.SecretKey) < minSecretLen {
		return nil, fmt.Errorf("secret key must be at least %d bytes", minSecretLen)
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method: %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:        []byte(cfg.SecretKey),
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// IssueAccess builds a short lived token embedding user id, role and the
// enabled flag at issuance time
func (m *TokenManager) IssueAccess(user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(m.alg, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    user.ID.String(),
		Role:      user.Role,
		Enabled:   user.Enabled,
		TokenType: models.TokenTypeAccess,
	})

	signed, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// IssueRefresh builds a long lived token with a freshly generated jti.
// The jti exists so a future revocation mechanism can target individual
// refresh tokens; nothing in this service stores it.
func (m *TokenManager) IssueRefresh(user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.refreshTTL)

	token := jwt.NewWithClaims(m.alg, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    user.ID.String(),
		TokenType: models.TokenTypeRefresh,
	})

	signed, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// GeneratePair issues a fresh access and refresh token pair
func (m *TokenManager) GeneratePair(user models.User) (models.TokenPair, error) {
	access, err := m.IssueAccess(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.IssueRefresh(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Validate verifies signature and expiry and requires the tokenType claim to
// match expected. No clock skew leeway is applied: a token is expired at its
// expiration instant.
func (m *TokenManager) Validate(tokenString string, expected models.TokenType) (TokenClaims, error) {
	claims := TokenClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (any, error) { return m.key, nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return TokenClaims{}, classifyParseError(err)
	}

	if claims.TokenType != expected {
		return TokenClaims{}, apperrors.ErrTokenWrongType
	}

	return claims, nil
}

// ValidateAccess verifies an access token and rejects refresh tokens
func (m *TokenManager) ValidateAccess(tokenString string) (TokenClaims, error) {
	return m.Validate(tokenString, models.TokenTypeAccess)
}

// ValidateRefresh verifies a refresh token and rejects access tokens
func (m *TokenManager) ValidateRefresh(tokenString string) (TokenClaims, error) {
	return m.Validate(tokenString, models.TokenTypeRefresh)
}

// ExtractClaim decodes a single raw claim without checking token type or
// expiry. The signature is still verified: extraction never succeeds on a
// token that does not verify.
func (m *TokenManager) ExtractClaim(tokenString string, name string) (any, error) {
	claims := jwt.MapClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return m.key, nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}

	value, ok := claims[name]
	if !ok {
		return nil, fmt.Errorf("claim %q not present", name)
	}

	return value, nil
}

// classifyParseError maps jwt parse failures to the internal rejection
// reasons. Anything unrecognized counts as malformed.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.ErrTokenExpired
	default:
		return apperrors.ErrTokenMalformed
	}
}
