package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// BookmarkHandler handles saved post HTTP requests
type BookmarkHandler struct {
	bookmarkRepository repositories.BookmarkRepository
	postRepository     repositories.PostRepository
	views              postViews
}

// NewBookmarkHandler creates a new BookmarkHandler
func NewBookmarkHandler(repos *Repositories) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkRepository: repos.Bookmarks,
		postRepository:     repos.Posts,
		views:              repos.postViews(),
	}
}

// RegisterBookmarkRoutes registers bookmark routes
func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group) {
	g.POST("/posts/:id/bookmark", h.SavePost)
	g.DELETE("/posts/:id/bookmark", h.UnsavePost)
	g.GET("/bookmarks", h.GetBookmarks)
}

// BookmarkView is a saved post with the time it was saved.
type BookmarkView struct {
	ID      uint            `json:"id"`
	SavedAt time.Time       `json:"savedAt"`
	Post    models.PostView `json:"post"`
}

func (h *BookmarkHandler) SavePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	if _, err := h.postRepository.GetPostByID(postID); err != nil {
		return notFoundOr(err, "Post not found")
	}

	saved, err := h.bookmarkRepository.IsBookmarked(currentUserID, postID)
	if err != nil {
		return internalError(err)
	}
	if saved {
		return echo.NewHTTPError(http.StatusConflict, "Post is already bookmarked")
	}

	bookmark := &models.Bookmark{UserID: currentUserID, PostID: postID}
	if err := h.bookmarkRepository.SaveBookmark(bookmark); err != nil {
		return conflictOr(err, "Post is already bookmarked")
	}
	return success(c, http.StatusCreated, bookmark)
}

func (h *BookmarkHandler) UnsavePost(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	if err := h.bookmarkRepository.RemoveBookmark(getUserIDFromContext(c), postID); err != nil {
		return notFoundOr(err, "Bookmark not found")
	}
	return success(c, http.StatusOK, echo.Map{"bookmarked": false})
}

// GetBookmarks lists the caller's saved posts, most recently saved first.
func (h *BookmarkHandler) GetBookmarks(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, limit := pagination(c)

	bookmarks, total, err := h.bookmarkRepository.GetBookmarksByUser(currentUserID, page, limit)
	if err != nil {
		return internalError(err)
	}

	postIDs := make([]uint, len(bookmarks))
	for i, b := range bookmarks {
		postIDs[i] = b.PostID
	}
	posts, err := h.postRepository.GetPostsByIDs(postIDs)
	if err != nil {
		return internalError(err)
	}
	views, err := h.views.build(currentUserID, posts)
	if err != nil {
		return internalError(err)
	}
	byID := make(map[uint]models.PostView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	result := make([]BookmarkView, 0, len(bookmarks))
	for _, b := range bookmarks {
		if view, ok := byID[b.PostID]; ok {
			result = append(result, BookmarkView{ID: b.ID, SavedAt: b.CreatedAt, Post: view})
		}
	}
	return paged(c, echo.Map{"bookmarks": result}, page, limit, total)
}
