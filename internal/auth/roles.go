package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/correspondence-service/internal/domain"
	apperrors "github.com/spec-kit/correspondence-service/pkg/errorutil"
)

// RequireRoles gates a route on the caller's role. Workflow actions are not
// gated here: the transition validator owns that matrix and reports
// ROLE_NOT_PERMITTED itself.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Role.Valid() {
			return apperrors.NewForbidden(fmt.Sprintf("unknown role %q", principal.Role))
		}
		if len(allowed) == 0 || hasRole(allowed, principal.Role) {
			return c.Next()
		}
		return apperrors.NewForbidden(fmt.Sprintf("role %s may not access this resource", principal.Role))
	}
}

// RequireAnyRole admits every authenticated caller holding a known role,
// Seguimiento included.
func RequireAnyRole() fiber.Handler {
	return RequireRoles()
}

func hasRole(roles []domain.Role, role domain.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}
