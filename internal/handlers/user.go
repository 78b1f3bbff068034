package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/wingit/backend/internal/auth"
	"github.com/anonto42/wingit/backend/internal/middleware"
	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const searchLimit = 20

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository    repositories.UserRepository
	messageRepository repositories.MessageRepository
	tokens            *auth.TokenService
	log               *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(repos *Repositories, tokens *auth.TokenService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userRepository:    repos.Users,
		messageRepository: repos.Messages,
		tokens:            tokens,
		log:               log,
	}
}

// RegisterUserRoutes registers user profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/me", h.GetProfile)
	g.PUT("/users/me", h.UpdateProfile)
	g.DELETE("/users/me", h.DeleteAccount)
	g.GET("/users/:id", h.GetUser)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(id)
	if err != nil {
		return notFoundOr(err, "User not found")
	}
	return success(c, http.StatusOK, user.ToDTO())
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	return success(c, http.StatusOK, middleware.CurrentUser(c).User.ToDTO())
}

// SearchUsers matches username, display name or email, case-insensitively.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	users, err := h.userRepository.SearchUsers(query, searchLimit)
	if err != nil {
		return internalError(err)
	}

	results := make([]models.UserDTO, len(users))
	for i := range users {
		results[i] = users[i].ToDTO()
	}
	return success(c, http.StatusOK, echo.Map{"users": results})
}

// UpdateProfile applies the fields present in the request to the caller's profile.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	p := middleware.CurrentUser(c)

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user := *p.User
	profile := user.Profile
	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.ProfilePicture != nil {
		profile.ProfilePicture = *req.ProfilePicture
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(models.DateLayout, *req.DateOfBirth)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "dateOfBirth must use YYYY-MM-DD")
		}
		if dob.After(time.Now()) {
			return echo.NewHTTPError(http.StatusBadRequest, "dateOfBirth cannot be in the future")
		}
		profile.DateOfBirth = &dob
	}
	profile.UserID = user.ID

	if err := h.userRepository.UpdateProfile(&profile); err != nil {
		return internalError(err)
	}
	user.Profile = profile
	return success(c, http.StatusOK, user.ToDTO())
}

// DeleteAccount removes the caller, their chat messages and everything else
// they own, then revokes the token used for the call.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	p := middleware.CurrentUser(c)
	// messages may live outside the relational store, so they go first
	if err := h.messageRepository.DeleteBySender(c.Request().Context(), p.UserID); err != nil {
		return internalError(err)
	}
	if err := h.userRepository.DeleteUser(p.UserID); err != nil {
		return notFoundOr(err, "User not found")
	}
	if err := h.tokens.Revoke(c.Request().Context(), p.Token); err != nil {
		h.log.Error("failed to revoke token", zap.Error(err))
	}
	h.log.Info("user deleted", zap.Uint("user_id", p.UserID))
	return success(c, http.StatusOK, echo.Map{"deleted": true})
}
