package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BlockHandler handles user blocking
type BlockHandler struct {
	blockRepository repositories.BlockRepository
	userRepository  repositories.UserRepository
	log             *zap.Logger
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(repos *Repositories, log *zap.Logger) *BlockHandler {
	return &BlockHandler{blockRepository: repos.Blocks, userRepository: repos.Users, log: log}
}

// RegisterBlockRoutes registers block routes
func (h *BlockHandler) RegisterBlockRoutes(g *echo.Group) {
	g.GET("/blocks", h.GetBlockedUsers)
	g.POST("/blocks/:userId", h.BlockUser)
	g.DELETE("/blocks/:userId", h.UnblockUser)
	g.GET("/blocks/:userId/status", h.GetBlockStatus)
}

// BlockedUserView is one entry of the caller's block list.
type BlockedUserView struct {
	ID        uint               `json:"id"`
	BlockedAt time.Time          `json:"blockedAt"`
	User      models.UserCompact `json:"user"`
}

// BlockUser blocks a user, ending any friendship, follows and pending
// requests between the two.
func (h *BlockHandler) BlockUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	targetID, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}
	if targetID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot block yourself")
	}
	if _, err := h.userRepository.GetUserByID(targetID); err != nil {
		return notFoundOr(err, "User not found")
	}

	block, err := h.blockRepository.CreateBlock(currentUserID, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "User is already blocked")
		}
		return internalError(err)
	}

	h.log.Info("user blocked", zap.Uint("blocker_id", currentUserID), zap.Uint("blocked_id", targetID))
	return success(c, http.StatusCreated, block)
}

func (h *BlockHandler) UnblockUser(c echo.Context) error {
	targetID, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}
	if err := h.blockRepository.DeleteBlock(getUserIDFromContext(c), targetID); err != nil {
		return notFoundOr(err, "User is not blocked")
	}
	return success(c, http.StatusOK, echo.Map{"blocked": false})
}

func (h *BlockHandler) GetBlockedUsers(c echo.Context) error {
	blocks, err := h.blockRepository.GetBlockedUsers(getUserIDFromContext(c))
	if err != nil {
		return internalError(err)
	}
	views := make([]BlockedUserView, len(blocks))
	for i, b := range blocks {
		views[i] = BlockedUserView{ID: b.ID, BlockedAt: b.CreatedAt, User: b.Blocked.ToCompact()}
	}
	return success(c, http.StatusOK, echo.Map{"blocks": views})
}

// GetBlockStatus reports both directions of the block relation.
func (h *BlockHandler) GetBlockStatus(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	targetID, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}

	var status models.BlockStatus
	if status.Blocked, err = h.blockRepository.IsBlocked(currentUserID, targetID); err != nil {
		return internalError(err)
	}
	if status.BlockedBy, err = h.blockRepository.IsBlocked(targetID, currentUserID); err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, status)
}
