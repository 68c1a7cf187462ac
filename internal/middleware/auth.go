package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

// Roles understood by the admin API.
const (
	AuthRoleAny   = "any"
	AuthRoleAdmin = "admin"
	AuthRoleStaff = "staff"
)

// roleImplies lists, per role, the other roles it satisfies in WithAuth.
var roleImplies = map[string][]string{
	AuthRoleAdmin: {AuthRoleStaff},
}

// AuthOptions configures WithAuth.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// RequireRole lets the request through when the caller holds one of roles exactly.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make([]string, 0, len(roles))
	for _, role := range roles {
		if normalized := normalizeRole(role); normalized != "" {
			allowed = append(allowed, normalized)
		}
	}

	return func(c *fiber.Ctx) error {
		current := roleFromLocals(c)
		for _, role := range allowed {
			if current == role {
				return c.Next()
			}
		}
		return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", fiber.Map{"required_roles": allowed})
	}
}

// WithAuth guards a single handler. Any role other than AuthRoleAny implies RequireUser.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	wanted := normalizeRole(opts.Role)
	if wanted == "" {
		wanted = AuthRoleAny
	}
	requireUser := opts.RequireUser || wanted != AuthRoleAny

	return func(c *fiber.Ctx) error {
		if requireUser && c.Locals("user_id") == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if wanted != AuthRoleAny && !hasRole(roleFromLocals(c), wanted) {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		return handler(c)
	}
}

func hasRole(current, wanted string) bool {
	if current == wanted {
		return true
	}
	for _, implied := range roleImplies[current] {
		if implied == wanted {
			return true
		}
	}
	return false
}

func roleFromLocals(c *fiber.Ctx) string {
	switch v := c.Locals("user_role").(type) {
	case nil:
		return ""
	case string:
		return normalizeRole(v)
	case fmt.Stringer:
		return normalizeRole(v.String())
	default:
		return normalizeRole(fmt.Sprintf("%v", v))
	}
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
