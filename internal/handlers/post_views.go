package handlers

import (
	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/repositories"
)

// postViews enriches posts for a viewer with batched count queries.
type postViews struct {
	reactions repositories.ReactionRepository
	comments  repositories.CommentRepository
	bookmarks repositories.BookmarkRepository
}

func (v postViews) build(viewerID uint, posts []models.Post) ([]models.PostView, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	reactionCounts, err := v.reactions.CountPostReactions(ids)
	if err != nil {
		return nil, err
	}
	commentCounts, err := v.comments.CountByPostIDs(ids)
	if err != nil {
		return nil, err
	}
	mine, err := v.reactions.GetUserPostReactions(viewerID, ids)
	if err != nil {
		return nil, err
	}
	saved, err := v.bookmarks.GetBookmarkedPostIDs(viewerID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		view := models.PostView{
			Post:           p,
			Author:         p.User.ToCompact(),
			ReactionCounts: reactionCounts[p.ID],
			CommentCount:   commentCounts[p.ID],
			IsBookmarked:   saved[p.ID],
		}
		if view.ReactionCounts == nil {
			view.ReactionCounts = map[string]int64{}
		}
		if view.Media == nil {
			view.Media = []models.PostMedia{}
		}
		if name, ok := mine[p.ID]; ok {
			view.MyReaction = &name
		}
		views[i] = view
	}
	return views, nil
}

func (v postViews) one(viewerID uint, post *models.Post) (*models.PostView, error) {
	views, err := v.build(viewerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
