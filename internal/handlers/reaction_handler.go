package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/notifier"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReactionHandler handles reactions on posts and comments
type ReactionHandler struct {
	reactionRepository repositories.ReactionRepository
	postRepository     repositories.PostRepository
	commentRepository  repositories.CommentRepository
	lookupRepository   repositories.LookupRepository
	owners             ownerNotifier
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(repos *Repositories, n *notifier.Notifier, log *zap.Logger) *ReactionHandler {
	return &ReactionHandler{
		reactionRepository: repos.Reactions,
		postRepository:     repos.Posts,
		commentRepository:  repos.Comments,
		lookupRepository:   repos.Lookups,
		owners:             ownerNotifier{relations: repos.relations(), notifier: n, log: log},
	}
}

// RegisterReactionRoutes registers reaction routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.GET("/posts/:id/reactions", h.GetPostReactions)
	g.PUT("/posts/:id/reactions", h.ReactToPost)
	g.DELETE("/posts/:id/reactions", h.RemovePostReaction)
	g.PUT("/comments/:id/reactions", h.ReactToComment)
	g.DELETE("/comments/:id/reactions", h.RemoveCommentReaction)
}

// ReactionSummary is the response of every reaction route.
type ReactionSummary struct {
	Counts map[string]int64 `json:"counts"`
	Mine   *string          `json:"mine"`
}

// ReactToPost sets the caller's reaction, replacing any previous type. Only
// a first reaction notifies the post owner.
func (h *ReactionHandler) ReactToPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	post, err := h.loadPost(c)
	if err != nil {
		return err
	}

	reactionType, err := h.bindReactionType(c)
	if err != nil {
		return err
	}

	created, err := h.reactionRepository.SetPostReaction(post.ID, currentUserID, reactionType.ID)
	if err != nil {
		return internalError(err)
	}
	if created {
		h.owners.notify(models.Notification{
			Type:        models.NotificationReaction,
			ActorID:     currentUserID,
			RecipientID: post.UserID,
			TargetID:    strconv.FormatUint(uint64(post.ID), 10),
			TargetType:  "post",
			Message:     displayName(c) + " reacted to your post",
		})
	}

	return h.postSummary(c, post.ID, currentUserID)
}

func (h *ReactionHandler) RemovePostReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	post, err := h.loadPost(c)
	if err != nil {
		return err
	}
	if err := h.reactionRepository.DeletePostReaction(post.ID, currentUserID); err != nil {
		return notFoundOr(err, "Reaction not found")
	}
	return h.postSummary(c, post.ID, currentUserID)
}

// GetPostReactions returns the per-type counts and the caller's reaction.
func (h *ReactionHandler) GetPostReactions(c echo.Context) error {
	post, err := h.loadPost(c)
	if err != nil {
		return err
	}
	return h.postSummary(c, post.ID, getUserIDFromContext(c))
}

func (h *ReactionHandler) ReactToComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	comment, err := h.loadComment(c)
	if err != nil {
		return err
	}

	reactionType, err := h.bindReactionType(c)
	if err != nil {
		return err
	}

	created, err := h.reactionRepository.SetCommentReaction(comment.ID, currentUserID, reactionType.ID)
	if err != nil {
		return internalError(err)
	}
	if created {
		h.owners.notify(models.Notification{
			Type:        models.NotificationReaction,
			ActorID:     currentUserID,
			RecipientID: comment.UserID,
			TargetID:    strconv.FormatUint(uint64(comment.ID), 10),
			TargetType:  "comment",
			Message:     displayName(c) + " reacted to your comment",
		})
	}

	mine := reactionType.Name
	return h.commentSummary(c, comment.ID, &mine)
}

func (h *ReactionHandler) RemoveCommentReaction(c echo.Context) error {
	comment, err := h.loadComment(c)
	if err != nil {
		return err
	}
	if err := h.reactionRepository.DeleteCommentReaction(comment.ID, getUserIDFromContext(c)); err != nil {
		return notFoundOr(err, "Reaction not found")
	}
	return h.commentSummary(c, comment.ID, nil)
}

func (h *ReactionHandler) bindReactionType(c echo.Context) (*models.ReactionType, error) {
	var req models.ReactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	reactionType, err := h.lookupRepository.GetReactionType(req.ReactionTypeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Unknown reaction type")
		}
		return nil, internalError(err)
	}
	return reactionType, nil
}

func (h *ReactionHandler) postSummary(c echo.Context, postID, userID uint) error {
	counts, err := h.reactionRepository.CountPostReactions([]uint{postID})
	if err != nil {
		return internalError(err)
	}
	summary := ReactionSummary{Counts: counts[postID]}
	if summary.Counts == nil {
		summary.Counts = map[string]int64{}
	}

	mine, err := h.reactionRepository.GetUserPostReaction(postID, userID)
	switch {
	case err == nil:
		summary.Mine = &mine.ReactionType.Name
	case !errors.Is(err, repositories.ErrNotFound):
		return internalError(err)
	}
	return success(c, http.StatusOK, summary)
}

func (h *ReactionHandler) commentSummary(c echo.Context, commentID uint, mine *string) error {
	counts, err := h.reactionRepository.CountCommentReactions([]uint{commentID})
	if err != nil {
		return internalError(err)
	}
	summary := ReactionSummary{Counts: counts[commentID], Mine: mine}
	if summary.Counts == nil {
		summary.Counts = map[string]int64{}
	}
	return success(c, http.StatusOK, summary)
}

func (h *ReactionHandler) loadPost(c echo.Context) (*models.Post, error) {
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

func (h *ReactionHandler) loadComment(c echo.Context) (*models.Comment, error) {
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
