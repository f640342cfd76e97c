package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
	apperrors "github.com/spec-kit/bcm-risk-service/pkg/util"
)

// RequireRole ensures the principal has one of the allowed roles.
// Create/update routes allow {ADMIN, DEPARTMENT_USER}; delete, lock,
// unlock and export routes allow ADMIN only. Denials surface as 403 and
// are recorded by the error middleware.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("you do not have permission to access this page")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
