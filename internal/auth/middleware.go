package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

// ClaimsKey is the Locals key under which decoded claims are stored for
// the rest of the request, including websocket handlers after upgrade.
const ClaimsKey = "auth_claims"

// BearerToken extracts the credential from an Authorization header.
// The header must be exactly "Bearer <token>"; a missing header, another
// scheme, or extra space-separated parts are all unauthorized.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.NewUnauthorized("missing authorization header")
	}
	parts := strings.Split(header, " ")
	if parts[0] != "Bearer" {
		return "", apperrors.NewUnauthorized("authorization scheme must be Bearer")
	}
	if len(parts) != 2 {
		return "", apperrors.NewUnauthorized("credentials string should not contain spaces")
	}
	return parts[1], nil
}

// AuthMiddleware validates bearer tokens at the request boundary.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes. The decoded claims
// are scoped to this request only; nothing is cached across calls.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := BearerToken(c.Get("Authorization"))
	if err != nil {
		return err
	}

	claims, err := m.tokens.Decode(token)
	if err != nil {
		return err
	}

	if err := CheckPermission(claims, []domain.Role{domain.RoleUser, domain.RoleAdministrator}, false); err != nil {
		return err
	}

	c.Locals(ClaimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the authenticated claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(ClaimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
