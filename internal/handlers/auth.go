package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/wingit/backend/internal/auth"
	"github.com/anonto42/wingit/backend/internal/middleware"
	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/anonto42/wingit/backend/pkg/firebase"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         *auth.TokenService
	firebaseAuth   firebase.TokenVerifier
	log            *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, in
// which case Firebase login answers 503.
func NewAuthHandler(userRepo repositories.UserRepository, tokens *auth.TokenService, firebaseAuth firebase.TokenVerifier, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		firebaseAuth:   firebaseAuth,
		log:            log,
	}
}

// RegisterAuthRoutes registers the public authentication routes. limiter
// guards the credential checking endpoints.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, limiter echo.MiddlewareFunc) {
	g.POST("/register", h.Register, limiter)
	g.POST("/login", h.Login, limiter)
	g.POST("/firebase-login", h.FirebaseLogin, limiter)
	g.POST("/logout", h.Logout)
}

// RegisterSessionRoutes registers the routes that need an authenticated user.
func (h *AuthHandler) RegisterSessionRoutes(g *echo.Group) {
	g.GET("/me", h.Me)
	g.PUT("/password", h.ChangePassword)
}

// LoginResponse is returned by every route that issues a token.
type LoginResponse struct {
	Token     string         `json:"token"`
	TokenType string         `json:"tokenType"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      models.UserDTO `json:"user"`
}

// Register creates a local account with a bcrypt password.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := h.userRepository.UsernameExists(req.Username)
	if err != nil {
		return internalError(err)
	}
	if exists {
		return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
	}
	if _, err := h.userRepository.GetUserByEmail(email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Email is already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return internalError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return internalError(err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}
	user := &models.User{
		Username: req.Username,
		Email:    email,
		Password: hash,
		Profile:  models.UserData{DisplayName: displayName},
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return conflictOr(err, "Username or email is already taken")
	}

	h.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return c.JSON(http.StatusCreated, user.ToDTO())
}

// Login checks a username (or email) and password and issues a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByLogin(strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return internalError(err)
	}
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		h.log.Info("failed login", zap.String("login", req.Username), zap.String("remote_ip", c.RealIP()))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	return h.issueToken(c, user)
}

// Logout revokes the bearer token when one is sent. It always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	if token, ok := middleware.BearerToken(c); ok {
		if err := h.tokens.Revoke(c.Request().Context(), token); err != nil {
			h.log.Error("failed to revoke token", zap.Error(err))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return c.JSON(http.StatusOK, p.User.ToDTO())
}

// ChangePassword replaces the password and revokes the token used for the call.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !auth.CheckPassword(p.User.Password, req.CurrentPassword) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return internalError(err)
	}
	user := *p.User
	user.Password = hash
	if err := h.userRepository.UpdateUser(&user); err != nil {
		return internalError(err)
	}
	if err := h.tokens.Revoke(c.Request().Context(), p.Token); err != nil {
		h.log.Error("failed to revoke token", zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully"})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin handles Firebase ID token verification and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
	}

	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.firebaseAuth.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		h.log.Info("rejected firebase id token", zap.Error(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	name, _ := token.Claims["name"].(string)

	// Try to find user by Firebase UID, then link an existing account by email
	user, err := h.userRepository.GetUserByFirebaseUID(firebaseUID)
	switch {
	case err == nil:
	case !errors.Is(err, repositories.ErrNotFound):
		return internalError(err)
	case email == "":
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase account has no email address")
	default:
		user, err = h.userRepository.GetUserByEmail(email)
		switch {
		case err == nil:
			user.FirebaseUID = &firebaseUID
			if err := h.userRepository.UpdateUser(user); err != nil {
				return internalError(err)
			}
		case errors.Is(err, repositories.ErrNotFound):
			user, err = h.createFirebaseUser(firebaseUID, email, name)
			if err != nil {
				return internalError(err)
			}
		default:
			return internalError(err)
		}
	}

	return h.issueToken(c, user)
}

func (h *AuthHandler) createFirebaseUser(firebaseUID, email, name string) (*models.User, error) {
	username, err := h.uniqueUsername(strings.SplitN(email, "@", 2)[0])
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = username
	}
	user := &models.User{
		Username:    username,
		Email:       email,
		FirebaseUID: &firebaseUID,
		Profile:     models.UserData{DisplayName: name},
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return nil, err
	}
	h.log.Info("user created from firebase", zap.Uint("user_id", user.ID), zap.String("username", username))
	return user, nil
}

var usernameStrip = regexp.MustCompile(`[^A-Za-z0-9_]`)

// uniqueUsername turns an email local part into a free, valid username.
func (h *AuthHandler) uniqueUsername(seed string) (string, error) {
	base := usernameStrip.ReplaceAllString(seed, "")
	if len(base) < 3 {
		base = "user" + base
	}
	if len(base) > 40 {
		base = base[:40]
	}
	candidate := base
	for i := 1; i <= 50; i++ {
		exists, err := h.userRepository.UsernameExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8], nil
}

func (h *AuthHandler) issueToken(c echo.Context, user *models.User) error {
	token, expiresAt, err := h.tokens.Generate(user)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      user.ToDTO(),
	})
}
