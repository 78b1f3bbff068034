package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/notifier"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/anonto42/wingit/backend/pkg/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MaxMediaSize is the largest accepted media upload.
const MaxMediaSize = 20 << 20

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository   repositories.PostRepository
	lookupRepository repositories.LookupRepository
	views            postViews
	relations        relations
	notifier         *notifier.Notifier
	storage          storage.Storage
	log              *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(repos *Repositories, n *notifier.Notifier, store storage.Storage, log *zap.Logger) *PostHandler {
	return &PostHandler{
		postRepository:   repos.Posts,
		lookupRepository: repos.Lookups,
		views:            repos.postViews(),
		relations:        repos.relations(),
		notifier:         n,
		storage:          store,
		log:              log,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/media", h.UploadMedia)
}

// CreatePost creates a new post and tells the author's friends and followers.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.checkPostType(req.PostTypeID); err != nil {
		return err
	}

	post := &models.Post{
		UserID:     currentUserID,
		PostTypeID: req.PostTypeID,
		Content:    strings.TrimSpace(req.Content),
	}
	if err := h.postRepository.CreatePost(post); err != nil {
		return internalError(err)
	}

	created, err := h.postRepository.GetPostByID(post.ID)
	if err != nil {
		return internalError(err)
	}

	if audience, err := h.relations.audience(currentUserID); err != nil {
		h.log.Warn("failed to load post audience", zap.Uint("post_id", post.ID), zap.Error(err))
	} else {
		h.notifier.Fanout(models.Notification{
			Type:       models.NotificationFriendPost,
			ActorID:    currentUserID,
			TargetID:   strconv.FormatUint(uint64(post.ID), 10),
			TargetType: "post",
			Message:    created.User.Profile.DisplayName + " shared a new post",
		}, audience)
	}

	view, err := h.views.one(currentUserID, created)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusCreated, view)
}

// GetPosts lists every post, or one user's posts with ?user_id=.
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, limit := pagination(c)

	var (
		posts []models.Post
		total int64
		err   error
	)
	if raw := c.QueryParam("user_id"); raw != "" {
		userID, perr := strconv.ParseUint(raw, 10, 32)
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
		}
		posts, total, err = h.postRepository.GetPostsByUserID(uint(userID), page, limit)
	} else {
		posts, total, err = h.postRepository.GetAllPosts(page, limit)
	}
	if err != nil {
		return internalError(err)
	}

	views, err := h.views.build(getUserIDFromContext(c), posts)
	if err != nil {
		return internalError(err)
	}
	return paged(c, echo.Map{"posts": views}, page, limit, total)
}

func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.loadPost(c)
	if err != nil {
		return err
	}
	view, err := h.views.one(getUserIDFromContext(c), post)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, view)
}

// UpdatePost edits the content or type of the caller's own post.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	post, err := h.loadPost(c)
	if err != nil {
		return err
	}
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own posts")
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Content != nil {
		post.Content = strings.TrimSpace(*req.Content)
	}
	if req.PostTypeID != nil {
		if err := h.checkPostType(*req.PostTypeID); err != nil {
			return err
		}
		post.PostTypeID = *req.PostTypeID
	}

	if err := h.postRepository.UpdatePost(post); err != nil {
		return internalError(err)
	}

	updated, err := h.postRepository.GetPostByID(post.ID)
	if err != nil {
		return internalError(err)
	}
	view, err := h.views.one(currentUserID, updated)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, view)
}

// DeletePost removes the caller's post, its dependent rows and stored media.
func (h *PostHandler) DeletePost(c echo.Context) error {
	post, err := h.loadPost(c)
	if err != nil {
		return err
	}
	if post.UserID != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own posts")
	}

	if err := h.postRepository.DeletePost(post.ID); err != nil {
		return notFoundOr(err, "Post not found")
	}

	for _, m := range post.Media {
		if m.StorageKey == "" {
			continue
		}
		if err := h.storage.Delete(c.Request().Context(), m.StorageKey); err != nil {
			h.log.Warn("failed to delete media object", zap.String("key", m.StorageKey), zap.Error(err))
		}
	}

	return success(c, http.StatusOK, echo.Map{"deleted": true})
}

// UploadMedia attaches an image or video from the multipart "file" field.
func (h *PostHandler) UploadMedia(c echo.Context) error {
	post, err := h.loadPost(c)
	if err != nil {
		return err
	}
	if post.UserID != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only add media to your own posts")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "File is required")
	}
	if file.Size > MaxMediaSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File exceeds the 20MB limit")
	}

	contentType := file.Header.Get(echo.HeaderContentType)
	mediaType := mediaTypeOf(contentType)
	if mediaType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Only image and video uploads are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return internalError(err)
	}
	defer src.Close()

	key := fmt.Sprintf("posts/%d/%s%s", post.ID, uuid.NewString(), strings.ToLower(filepath.Ext(file.Filename)))
	url, err := h.storage.Put(c.Request().Context(), key, src, file.Size, contentType)
	if err != nil {
		return internalError(err)
	}

	media := &models.PostMedia{
		PostID:     post.ID,
		MediaURL:   url,
		MediaType:  mediaType,
		StorageKey: key,
	}
	if err := h.postRepository.AddMedia(media); err != nil {
		if derr := h.storage.Delete(c.Request().Context(), key); derr != nil {
			h.log.Warn("failed to clean up media object", zap.String("key", key), zap.Error(derr))
		}
		return internalError(err)
	}

	h.log.Info("media uploaded", zap.Uint("post_id", post.ID), zap.String("key", key), zap.Int64("size", file.Size))
	return success(c, http.StatusCreated, media)
}

func mediaTypeOf(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return ""
	}
}

func (h *PostHandler) loadPost(c echo.Context) (*models.Post, error) {
	id, err := parseID(c, "id", "post")
	if err != nil {
		return nil, err
	}
	post, err := h.postRepository.GetPostByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Post not found")
	}
	return post, nil
}

func (h *PostHandler) checkPostType(id uint) error {
	if _, err := h.lookupRepository.GetPostType(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown post type")
		}
		return internalError(err)
	}
	return nil
}
