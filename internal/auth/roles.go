package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

// CheckPermission evaluates decoded claims against a role set. With
// exclude=false the claims pass iff their role is in allowed; with
// exclude=true the predicate is negated. Pure function over claims.
func CheckPermission(claims *Claims, allowed []domain.Role, exclude bool) error {
	member := false
	for _, role := range allowed {
		if claims.Role == string(role) {
			member = true
			break
		}
	}
	if member == exclude {
		return apperrors.NewForbidden("permission denied")
	}
	return nil
}

// RequireRoles builds a handler enforcing role membership for HTTP routes.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := CheckPermission(claims, allowed, false); err != nil {
			return err
		}
		return c.Next()
	}
}
