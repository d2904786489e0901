package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const principalKey contextKey = "principal"

// Role values carried in token claims.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Principal is the verified identity of the acting user. Every authenticated
// handler derives the actor from it, never from request fields.
type Principal struct {
	ID   uuid.UUID
	Role string
}

// IsDoctor reports whether the principal acts as a doctor.
func (p Principal) IsDoctor() bool { return p.Role == RoleDoctor }

// IsPatient reports whether the principal acts as a patient.
func (p Principal) IsPatient() bool { return p.Role == RolePatient }

// Claims is the JWT payload issued at login.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// JWTConfig configures bearer token verification.
type JWTConfig struct {
	Secret []byte
	// Skipper returns true for requests that do not require authentication.
	Skipper func(c echo.Context) bool
}

// JWTMiddleware verifies the Authorization bearer token and injects the
// resulting Principal into the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := ParseToken(cfg.Secret, parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			uid, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}
			if claims.Role != RolePatient && claims.Role != RoleDoctor {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token role")
			}

			ctx := context.WithValue(c.Request().Context(), principalKey, Principal{ID: uid, Role: claims.Role})
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// PrincipalFromContext retrieves the verified principal from context. The
// second return value is false when the request was not authenticated.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// WithPrincipal returns a context carrying the given principal. Used by
// tests and internal callers.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PathSkipper returns a Skipper that bypasses authentication for the given
// path prefixes.
func PathSkipper(prefixes ...string) func(c echo.Context) bool {
	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
}
