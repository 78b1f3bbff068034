package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/notifier"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository  repositories.CommentRepository
	postRepository     repositories.PostRepository
	reactionRepository repositories.ReactionRepository
	owners             ownerNotifier
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(repos *Repositories, n *notifier.Notifier, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentRepository:  repos.Comments,
		postRepository:     repos.Posts,
		reactionRepository: repos.Reactions,
		owners:             ownerNotifier{relations: repos.relations(), notifier: n, log: log},
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a comment, or a reply when parentId is set.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(postID)
	if err != nil {
		return notFoundOr(err, "Post not found")
	}

	if req.ParentID != nil {
		parent, err := h.commentRepository.GetCommentByID(*req.ParentID)
		if err != nil {
			return notFoundOr(err, "Parent comment not found")
		}
		if parent.PostID != postID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to another post")
		}
	}

	comment := &models.Comment{
		PostID:   postID,
		UserID:   currentUserID,
		ParentID: req.ParentID,
		Content:  strings.TrimSpace(req.Content),
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return internalError(err)
	}

	created, err := h.commentRepository.GetCommentByID(comment.ID)
	if err != nil {
		return internalError(err)
	}

	h.owners.notify(models.Notification{
		Type:        models.NotificationComment,
		ActorID:     currentUserID,
		RecipientID: post.UserID,
		TargetID:    strconv.FormatUint(uint64(post.ID), 10),
		TargetType:  "post",
		Message:     created.User.Profile.DisplayName + " commented on your post",
	})

	return success(c, http.StatusCreated, commentView(*created, nil))
}

// GetCommentsByPostID returns the post's comments oldest first, with replies
// nested under their parent.
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	if _, err := h.postRepository.GetPostByID(postID); err != nil {
		return notFoundOr(err, "Post not found")
	}

	comments, err := h.commentRepository.GetCommentsByPostID(postID)
	if err != nil {
		return internalError(err)
	}

	ids := make([]uint, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
	}
	counts, err := h.reactionRepository.CountCommentReactions(ids)
	if err != nil {
		return internalError(err)
	}

	return success(c, http.StatusOK, echo.Map{
		"comments": buildCommentTree(comments, counts),
		"total":    len(comments),
	})
}

// UpdateComment edits the caller's own comment.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	comment, err := h.loadComment(c)
	if err != nil {
		return err
	}
	if comment.UserID != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own comments")
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment.Content = strings.TrimSpace(req.Content)
	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return internalError(err)
	}

	return success(c, http.StatusOK, commentView(*comment, nil))
}

// DeleteComment removes a comment and its replies. The comment author and
// the post owner may delete.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	comment, err := h.loadComment(c)
	if err != nil {
		return err
	}

	if comment.UserID != currentUserID {
		post, err := h.postRepository.GetPostByID(comment.PostID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return internalError(err)
		}
		if post == nil || post.UserID != currentUserID {
			return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments")
		}
	}

	if err := h.commentRepository.DeleteComment(comment.ID); err != nil {
		return notFoundOr(err, "Comment not found")
	}
	return success(c, http.StatusOK, echo.Map{"deleted": true})
}

func (h *CommentHandler) loadComment(c echo.Context) (*models.Comment, error) {
	id, err := parseID(c, "id", "comment")
	if err != nil {
		return nil, err
	}
	comment, err := h.commentRepository.GetCommentByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found")
	}
	return comment, nil
}

func commentView(cm models.Comment, counts map[string]int64) models.CommentView {
	if counts == nil {
		counts = map[string]int64{}
	}
	return models.CommentView{
		Comment:        cm,
		Author:         cm.User.ToCompact(),
		ReactionCounts: counts,
		Replies:        []models.CommentView{},
	}
}

// buildCommentTree nests replies under their parents, keeping the input
// (oldest first) order at every level. Replies whose parent is missing are
// returned at the top level.
func buildCommentTree(comments []models.Comment, counts map[uint]map[string]int64) []models.CommentView {
	present := make(map[uint]bool, len(comments))
	for _, cm := range comments {
		present[cm.ID] = true
	}
	children := make(map[uint][]models.Comment)
	var roots []models.Comment
	for _, cm := range comments {
		if cm.ParentID != nil && present[*cm.ParentID] {
			children[*cm.ParentID] = append(children[*cm.ParentID], cm)
		} else {
			roots = append(roots, cm)
		}
	}

	var build func(cm models.Comment) models.CommentView
	build = func(cm models.Comment) models.CommentView {
		view := commentView(cm, counts[cm.ID])
		for _, child := range children[cm.ID] {
			view.Replies = append(view.Replies, build(child))
		}
		return view
	}

	tree := make([]models.CommentView, 0, len(roots))
	for _, cm := range roots {
		tree = append(tree, build(cm))
	}
	return tree
}
