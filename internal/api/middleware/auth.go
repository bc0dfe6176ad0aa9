package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/tenantcore/platform/internal/core/domain"
	"github.com/tenantcore/platform/internal/core/tenancy"
)

// UserKey is the echo context key holding the *domain.UserContext.
const UserKey = "user"

// UserLookup re-fetches the user a token refers to.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth validates the bearer JWT (HS256 signature and expiry), then re-reads
// the referenced user so that deleted accounts are rejected even while their
// tokens are still valid. Identity comes from the stored user, not the claims.
func Auth(jwtSecret string, users UserLookup) echo.MiddlewareFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request())
			if err != nil {
				return err
			}

			claims := &jwt.RegisteredClaims{}
			tkn, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := users.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "user no longer exists")
				}
				return err
			}

			uc := user.Context()
			c.Set(UserKey, uc)
			c.SetRequest(c.Request().WithContext(tenancy.WithUser(c.Request().Context(), uc)))
			return next(c)
		}
	}
}

// CurrentUser returns the identity attached by Auth, or nil.
func CurrentUser(c echo.Context) *domain.UserContext {
	uc, _ := c.Get(UserKey).(*domain.UserContext)
	return uc
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
