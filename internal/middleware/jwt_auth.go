package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/wingit/backend/internal/auth"
	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PrincipalKey is the echo context key holding the authenticated *Principal.
const PrincipalKey = "principal"

// Principal is the request-scoped identity set by JWTAuth.
type Principal struct {
	UserID   uint
	Username string
	Role     string
	Claims   *auth.Claims
	Token    string
	User     *models.User
}

func (p *Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// UserLoader resolves the account behind a token.
type UserLoader interface {
	GetUserByID(id uint) (*models.User, error)
}

// JWTAuth authenticates the request from its bearer token. WebSocket
// upgrades may pass the token as the "token" query parameter instead.
func JWTAuth(tokens *auth.TokenService, users UserLoader, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, ok := extractToken(c)
			if !ok {
				log.Debug("missing bearer token", zap.String("path", c.Path()))
				metrics.RecordAuthRejection("missing")
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			claims, err := tokens.Parse(c.Request().Context(), tokenStr)
			if err != nil {
				reason, msg := rejection(err)
				log.Warn("rejected bearer token",
					zap.String("reason", reason),
					zap.String("path", c.Path()),
					zap.String("remote_ip", c.RealIP()),
				)
				metrics.RecordAuthRejection(reason)
				if reason == "error" {
					return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, msg)
			}

			user, err := users.GetUserByID(claims.UserID)
			if err != nil || user.Username != claims.Subject {
				log.Warn("token subject no longer valid", zap.Uint("user_id", claims.UserID))
				metrics.RecordAuthRejection("unknown_user")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(PrincipalKey, &Principal{
				UserID:   user.ID,
				Username: user.Username,
				Role:     user.Role.Name,
				Claims:   claims,
				Token:    tokenStr,
				User:     user,
			})
			return next(c)
		}
	}
}

// CurrentUser returns the principal set by JWTAuth, or nil on public routes.
func CurrentUser(c echo.Context) *Principal {
	p, _ := c.Get(PrincipalKey).(*Principal)
	return p
}

// BearerToken returns the token from the Authorization header, if any.
func BearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func extractToken(c echo.Context) (string, bool) {
	if token, ok := BearerToken(c); ok {
		return token, true
	}
	if strings.EqualFold(c.Request().Header.Get(echo.HeaderUpgrade), "websocket") {
		if token := c.QueryParam("token"); token != "" {
			return token, true
		}
	}
	return "", false
}

func rejection(err error) (reason, message string) {
	switch {
	case errors.Is(err, auth.ErrExpired):
		return "expired", "Token expired"
	case errors.Is(err, auth.ErrRevoked):
		return "revoked", "Token revoked"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "signature", "Invalid token"
	case errors.Is(err, auth.ErrInvalidIssuer):
		return "issuer", "Invalid token"
	case errors.Is(err, auth.ErrMalformed):
		return "malformed", "Invalid token"
	default:
		return "error", ""
	}
}
