package middleware

import (
	stdErrors "errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/pkg/jwt"
)

// Echo context keys set by EchoAuth
const (
	ClaimsContextKey  = "claims"
	SubjectContextKey = "subject"
)

// EchoAuth returns an Echo middleware that validates the bearer JWT and sets
// "claims" (*jwt.Claims) and "subject" (string) into the Echo context
func EchoAuth(manager *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request())
			if token == "" {
				return errors.ErrUnauthenticated()
			}

			claims, err := manager.ValidateAccessToken(token)
			if err != nil {
				if stdErrors.Is(err, jwt.ErrTokenExpired) {
					return errors.ErrTokenExpired()
				}
				return errors.ErrInvalidToken().WithDetail("reason", err.Error())
			}

			c.Set(ClaimsContextKey, claims)
			c.Set(SubjectContextKey, claims.Subject)

			return next(c)
		}
	}
}

// RequireRole rejects requests whose token carries none of roles.
// It must run after EchoAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := GetClaims(c)
			if !ok {
				return errors.ErrUnauthenticated()
			}

			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}

			return errors.ErrPermissionDenied("requires one of roles " + strings.Join(roles, ","))
		}
	}
}

// GetClaims retrieves the token claims from the Echo context
func GetClaims(c echo.Context) (*jwt.Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*jwt.Claims)
	return claims, ok
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}
