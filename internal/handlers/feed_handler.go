package handlers

import (
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository repositories.PostRepository
	views          postViews
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(repos *Repositories) *FeedHandler {
	return &FeedHandler{postRepository: repos.Posts, views: repos.postViews()}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns posts by the caller, their friends and the users they
// follow, newest first. Users on either side of a block are left out.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, limit := pagination(c)

	posts, total, err := h.postRepository.GetFeed(currentUserID, page, limit)
	if err != nil {
		return internalError(err)
	}

	views, err := h.views.build(currentUserID, posts)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"posts": views}, page, limit, total)
}
