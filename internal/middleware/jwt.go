package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/edutrack-admin-api/internal/utils"
)

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID uint
	Role   string
	Name   string
}

// JWTProtected validates HMAC signed bearer tokens and exposes the caller
// through the user_id, user_role and user_name locals.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	key := func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}

	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, key); err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		identity := identityFromClaims(claims)
		if identity.UserID != 0 {
			c.Locals("user_id", identity.UserID)
		}
		if identity.Role != "" {
			c.Locals("user_role", identity.Role)
		}
		if identity.Name != "" {
			c.Locals("user_name", identity.Name)
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
		return "", false
	}
	return fields[1], true
}

func identityFromClaims(claims jwt.MapClaims) Identity {
	var identity Identity
	for _, key := range []string{"sub", "user_id", "id"} {
		if id, ok := claimUint(claims[key]); ok {
			identity.UserID = id
			break
		}
	}
	for _, key := range []string{"role", "roles"} {
		if role := claimRole(claims[key]); role != "" {
			identity.Role = role
			break
		}
	}
	for _, key := range []string{"name", "preferred_username", "email"} {
		if value, ok := claims[key].(string); ok && strings.TrimSpace(value) != "" {
			identity.Name = strings.TrimSpace(value)
			break
		}
	}
	return identity
}

func claimUint(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case float64:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil || parsed == 0 {
			return 0, false
		}
		return uint(parsed), true
	default:
		return 0, false
	}
}

// claimRole accepts a single role or the first non-empty entry of a role list.
func claimRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return normalizeRole(v)
	case []interface{}:
		for _, item := range v {
			if role, ok := item.(string); ok && normalizeRole(role) != "" {
				return normalizeRole(role)
			}
		}
	}
	return ""
}
