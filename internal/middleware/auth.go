package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pthv11/-pension-fund/internal/model"
	"github.com/pthv11/-pension-fund/internal/store"
	"github.com/pthv11/-pension-fund/pkg/jwtutil"
	"github.com/pthv11/-pension-fund/pkg/logger"
	"github.com/pthv11/-pension-fund/prometheus"
)

// userContextKey is where the resolved user is attached to the request
const userContextKey = "user"

// Auth validates the bearer token from the Authorization header and resolves
// the acting user against the credential store. A missing token yields 401,
// an invalid or expired token 403, and a token for a deleted account 401.
func Auth(jwt *jwtutil.JWT, st *store.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "access token required"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Debug("Token validation failed", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusForbidden, echo.Map{"message": "invalid or expired token"})
			}

			user, err := st.GetUserByID(c.Request().Context(), claims.UserID)
			if err != nil {
				log.Error("Failed to resolve user from token", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
			}
			if user == nil {
				prometheus.RecordAuthError("user_not_found")
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "user not found"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// RequireAdmin rejects requests whose resolved user lacks the admin flag.
// Must be composed after Auth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := UserFromContext(c)
		if user == nil || !user.IsAdmin {
			prometheus.RecordAuthError("admin_required")
			return c.JSON(http.StatusForbidden, echo.Map{"message": "admin privileges required"})
		}
		return next(c)
	}
}

// UserFromContext returns the user attached by Auth, or nil
func UserFromContext(c echo.Context) *model.User {
	user, ok := c.Get(userContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}
