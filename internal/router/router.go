package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anonto42/wingit/backend/internal/auth"
	"github.com/anonto42/wingit/backend/internal/handlers"
	"github.com/anonto42/wingit/backend/internal/middleware"
	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/notifier"
	"github.com/anonto42/wingit/backend/internal/realtime"
	"github.com/anonto42/wingit/backend/pkg/config"
	"github.com/anonto42/wingit/backend/pkg/firebase"
	"github.com/anonto42/wingit/backend/pkg/metrics"
	"github.com/anonto42/wingit/backend/pkg/storage"
	"github.com/anonto42/wingit/backend/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// bodyLimit leaves room for multipart framing around a MaxMediaSize upload.
const bodyLimit = "21M"

// Deps is everything SetupRoutes wires into the handlers.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       handlers.Pinger
	Repos    *handlers.Repositories
	Tokens   *auth.TokenService
	Firebase firebase.TokenVerifier // nil disables Firebase login
	Hub      *realtime.Hub
	Notifier *notifier.Notifier
	Storage  storage.Storage
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config, log *zap.Logger) {
	e.HTTPErrorHandler = ErrorHandler(log)
	e.Validator = validators.NewValidator()

	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(eMiddleware.CORSWithConfig(cfg.CORSConfig()))
	e.Use(eMiddleware.BodyLimit(bodyLimit))
	e.Use(metrics.Middleware())
	log.Debug("global middleware configured")
}

// ErrorHandler renders every error as {"error": status text, "message": detail}.
// Unexpected 500s are logged and answered with a generic message.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "internal server error"
		var internal error = err

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Internal != nil {
				internal = he.Internal
			}
			if code != http.StatusInternalServerError {
				if s, ok := he.Message.(string); ok {
					message = s
				} else {
					message = fmt.Sprint(he.Message)
				}
			}
		}

		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.Int("status", code),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(internal),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{
				"error":   http.StatusText(code),
				"message": message,
			})
		}
		if err != nil {
			log.Warn("failed to write error response", zap.Error(err))
		}
	}
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	cfg, log, repos := d.Config, d.Log, d.Repos

	handlers.NewHealthHandler(d.DB, log).RegisterHealthRoutes(e)

	if local, ok := d.Storage.(*storage.LocalStorage); ok && strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		e.Static(cfg.Storage.PublicURL, local.BasePath())
	}

	jwt := middleware.JWTAuth(d.Tokens, repos.Users, log)

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(repos.Users, d.Tokens, d.Firebase, log)
	authHandler.RegisterAuthRoutes(e.Group("/api/auth"), middleware.AuthRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst))
	authHandler.RegisterSessionRoutes(e.Group("/api/auth", jwt))

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api", jwt)

	handlers.NewUserHandler(repos, d.Tokens, log).RegisterUserRoutes(api)
	handlers.NewLookupHandler(repos).RegisterLookupRoutes(api)
	handlers.NewPostHandler(repos, d.Notifier, d.Storage, log).RegisterPostRoutes(api)
	handlers.NewFeedHandler(repos).RegisterFeedRoutes(api)
	handlers.NewCommentHandler(repos, d.Notifier, log).RegisterCommentRoutes(api)
	handlers.NewReactionHandler(repos, d.Notifier, log).RegisterReactionRoutes(api)
	handlers.NewBookmarkHandler(repos).RegisterBookmarkRoutes(api)
	handlers.NewFriendshipHandler(repos, d.Notifier, log).RegisterFriendshipRoutes(api)
	handlers.NewFollowHandler(repos, d.Notifier).RegisterFollowRoutes(api)
	handlers.NewBlockHandler(repos, log).RegisterBlockRoutes(api)
	handlers.NewChatHandler(repos, d.Hub, log).RegisterChatRoutes(api)
	handlers.NewNotificationHandler(repos, d.Notifier).RegisterNotificationRoutes(api)

	reportHandler := handlers.NewReportHandler(repos, log)
	reportHandler.RegisterReportRoutes(api)
	reportHandler.RegisterAdminRoutes(api.Group("/admin", middleware.RequireRole(models.RoleAdmin)))

	e.GET("/ws", handlers.NewWebSocketHandler(d.Hub, log).Connect, jwt)

	log.Info("routes configured", zap.Int("count", len(e.Routes())))
}
