package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/notifier"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	relations        relations
	notifier         *notifier.Notifier
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(repos *Repositories, n *notifier.Notifier) *FollowHandler {
	return &FollowHandler{
		followRepository: repos.Follows,
		userRepository:   repos.Users,
		relations:        repos.relations(),
		notifier:         n,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/follow-stats", h.GetFollowStats)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	targetID, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}
	if _, err := h.userRepository.GetUserByID(targetID); err != nil {
		return notFoundOr(err, "User not found")
	}

	blocked, err := h.relations.blocked(currentUserID, targetID)
	if err != nil {
		return internalError(err)
	}
	if blocked {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot follow this user")
	}

	if err := h.followRepository.CreateFollow(&models.Follow{FollowerID: currentUserID, FollowingID: targetID}); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "Already following this user")
		}
		return internalError(err)
	}

	h.notifier.Emit(models.Notification{
		Type:        models.NotificationFollow,
		ActorID:     currentUserID,
		RecipientID: targetID,
		TargetID:    strconv.FormatUint(uint64(currentUserID), 10),
		TargetType:  "user",
		Message:     displayName(c) + " started following you",
	})

	return success(c, http.StatusOK, echo.Map{"following": true})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.followRepository.DeleteFollow(getUserIDFromContext(c), targetID); err != nil {
		return notFoundOr(err, "You are not following this user")
	}
	return success(c, http.StatusOK, echo.Map{"following": false})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := h.loadUserID(c)
	if err != nil {
		return err
	}
	users, err := h.followRepository.GetFollowers(userID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"users": compactUsers(users)})
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := h.loadUserID(c)
	if err != nil {
		return err
	}
	users, err := h.followRepository.GetFollowing(userID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"users": compactUsers(users)})
}

// GetFollowStats returns the user's follower counts and whether the caller
// follows them.
func (h *FollowHandler) GetFollowStats(c echo.Context) error {
	userID, err := h.loadUserID(c)
	if err != nil {
		return err
	}

	var stats models.FollowStats
	if stats.Followers, err = h.followRepository.GetFollowersCount(userID); err != nil {
		return internalError(err)
	}
	if stats.Following, err = h.followRepository.GetFollowingCount(userID); err != nil {
		return internalError(err)
	}
	if stats.IsFollowing, err = h.followRepository.IsFollowing(getUserIDFromContext(c), userID); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, stats)
}

func (h *FollowHandler) loadUserID(c echo.Context) (uint, error) {
	userID, err := parseID(c, "id", "user")
	if err != nil {
		return 0, err
	}
	if _, err := h.userRepository.GetUserByID(userID); err != nil {
		return 0, notFoundOr(err, "User not found")
	}
	return userID, nil
}

func compactUsers(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
