package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityLocalKey is the fiber locals key holding the caller Identity.
const IdentityLocalKey = "identity"

// Identity is the authenticated caller: a user acting for one organisation.
type Identity struct {
	Subject string
	OrgID   string
}

// Claims are the token claims the register relies on.
type Claims struct {
	OrgID string `json:"org"`
	jwt.RegisteredClaims
}

// IdentityConfig configures token verification. Tokens are issued by the
// surrounding identity service and only verified here.
type IdentityConfig struct {
	Secret []byte
	// Issuer is checked against the iss claim when set.
	Issuer string
}

// NewIdentity verifies an HS256 bearer token and stores the caller under
// IdentityLocalKey. Requests without a valid token fail with 401.
func NewIdentity(cfg IdentityConfig) fiber.Handler {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return cfg.Secret, nil }

	return func(c *fiber.Ctx) error {
		raw, ok := bearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		var claims Claims
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return fiber.NewError(fiber.StatusUnauthorized, "token expired")
			}
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		if claims.Subject == "" || claims.OrgID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "token lacks sub or org")
		}

		c.Locals(IdentityLocalKey, Identity{Subject: claims.Subject, OrgID: claims.OrgID})
		return c.Next()
	}
}

// IdentityFrom returns the caller stored by NewIdentity.
func IdentityFrom(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(IdentityLocalKey).(Identity)
	return id, ok
}

func bearer(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}
