package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

// defaultTokenTTL applies when a caller issues a token without an explicit
// lifetime.
const defaultTokenTTL = 15 * time.Minute

// TokenManager signs and verifies the self-contained credentials used by
// every request. Tokens are stateless, so each decode is independently
// verifiable and no server-side session store exists.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 180 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Claims describes the JWT payload. IsSuperuser is a pointer so a decoded
// refresh token can be checked for the flag's presence, not just its value.
type Claims struct {
	UserID      string `json:"id,omitempty"`
	Role        string `json:"role,omitempty"`
	IsSuperuser *bool  `json:"is_superuser,omitempty"`
	Email       string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueInput captures the identity embedded in a token.
type IssueInput struct {
	UserID      string
	Role        domain.Role
	IsSuperuser bool
	Email       string
}

// Issue signs a token for the subject with expiry now+ttl. A non-positive
// ttl falls back to the 15 minute default.
func (tm *TokenManager) Issue(input IssueInput, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	superuser := input.IsSuperuser
	claims := &Claims{
		UserID:      input.UserID,
		Role:        string(input.Role),
		IsSuperuser: &superuser,
		Email:       input.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// IssueAccess signs a token with the access lifetime.
func (tm *TokenManager) IssueAccess(input IssueInput) (string, time.Time, error) {
	return tm.Issue(input, tm.accessTTL)
}

// IssueRefresh signs a token with the refresh lifetime.
func (tm *TokenManager) IssueRefresh(input IssueInput) (string, time.Time, error) {
	return tm.Issue(input, tm.refreshTTL)
}

// IssuePair signs an access/refresh pair for the same identity.
func (tm *TokenManager) IssuePair(input IssueInput) (domain.TokenPair, error) {
	access, _, err := tm.IssueAccess(input)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, _, err := tm.IssueRefresh(input)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

// Decode verifies signature and expiry and returns the claims. Any
// structural, signature, or expiry failure fails closed as unauthorized.
func (tm *TokenManager) Decode(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperrors.NewUnauthorized("invalid token claims")
	}
	return claims, nil
}

// RequireUserID returns the numeric subject id or fails as a malformed
// token when the claim is absent.
func (c *Claims) RequireUserID() (int64, error) {
	if c.UserID == "" {
		return 0, apperrors.NewMalformedToken("token must have key id")
	}
	id, err := strconv.ParseInt(c.UserID, 10, 64)
	if err != nil {
		return 0, apperrors.NewMalformedToken("token must have numeric id")
	}
	return id, nil
}

// RequireRole returns the role claim or fails as a malformed token.
func (c *Claims) RequireRole() (domain.Role, error) {
	if c.Role == "" {
		return "", apperrors.NewMalformedToken("token must have key role")
	}
	role, ok := domain.ParseRole(c.Role)
	if !ok {
		return "", apperrors.NewMalformedToken("token has unknown role")
	}
	return role, nil
}

// RequireEmail returns the email claim or fails as a malformed token.
func (c *Claims) RequireEmail() (string, error) {
	if c.Email == "" {
		return "", apperrors.NewMalformedToken("token must have key email")
	}
	return c.Email, nil
}

// HasSuperuserFlag reports whether the is_superuser claim was present.
func (c *Claims) HasSuperuserFlag() bool {
	return c.IsSuperuser != nil
}

// Superuser returns the flag value, defaulting to false when absent.
func (c *Claims) Superuser() bool {
	return c.IsSuperuser != nil && *c.IsSuperuser
}
