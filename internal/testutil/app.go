package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/wingit/backend/internal/auth"
	"github.com/anonto42/wingit/backend/internal/handlers"
	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/notifier"
	"github.com/anonto42/wingit/backend/internal/realtime"
	"github.com/anonto42/wingit/backend/internal/router"
	"github.com/anonto42/wingit/backend/pkg/config"
	"github.com/anonto42/wingit/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is a fully wired server backed by in-memory SQLite.
type App struct {
	Echo      *echo.Echo
	DB        *gorm.DB
	Config    *config.Config
	Repos     *handlers.Repositories
	Tokens    *auth.TokenService
	Blacklist *auth.MemoryBlacklist
	Hub       *realtime.Hub
	Storage   *storage.LocalStorage
}

// NewApp wires the routes the same way main does, minus Firebase, Redis
// and MongoDB.
func NewApp(t *testing.T) *App {
	t.Helper()
	db := SetupTestDB(t)
	log := zap.NewNop()

	cfg := &config.Config{
		Env:                "test",
		CORSAllowedOrigins: "http://localhost:3000",
		JWT: config.JWTConfig{
			Secret:     "test-secret",
			Expiration: time.Hour,
			Issuer:     "wingit-test",
		},
		Storage: config.StorageConfig{
			Driver:    "local",
			LocalDir:  t.TempDir(),
			PublicURL: "/uploads",
		},
		AuthRateLimit: 1000,
		AuthRateBurst: 1000,
	}

	store, err := storage.NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.PublicURL)
	require.NoError(t, err)

	repos := handlers.NewRepositories(db, nil)
	blacklist := auth.NewMemoryBlacklist()
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.Issuer, blacklist)
	hub := realtime.NewHub(realtime.Config{AllowedOrigins: cfg.AllowedOrigins()}, log)
	t.Cleanup(hub.Close)

	e := echo.New()
	router.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, router.Deps{
		Config:   cfg,
		Log:      log,
		DB:       pinger{db},
		Repos:    repos,
		Tokens:   tokens,
		Hub:      hub,
		Notifier: notifier.New(repos.Notifications, repos.Users, hub, log),
		Storage:  store,
	})

	return &App{
		Echo:      e,
		DB:        db,
		Config:    cfg,
		Repos:     repos,
		Tokens:    tokens,
		Blacklist: blacklist,
		Hub:       hub,
		Storage:   store,
	}
}

// Token issues a bearer token for user.
func (a *App) Token(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := a.Tokens.Generate(user)
	require.NoError(t, err)
	return token
}

// Do sends a request through the router. body is JSON encoded unless it is
// already an io.Reader; token is sent as a bearer token when non-empty.
func (a *App) Do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON unmarshals the whole response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}

// DecodeData unmarshals the "data" member of a success envelope into v.
func DecodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	DecodeJSON(t, rec, &envelope)
	require.True(t, envelope.Success, "body: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

// RequireStatus fails the test with the body when the status differs.
func RequireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, "%s: %s", http.StatusText(rec.Code), rec.Body.String())
}

type pinger struct{ db *gorm.DB }

func (p pinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
