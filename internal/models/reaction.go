package models

import "time"

// PostReaction is one user's reaction to a post. A user has at most one per post.
type PostReaction struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	PostID         uint         `json:"postId" gorm:"uniqueIndex:idx_post_user_reaction"`
	UserID         uint         `json:"userId" gorm:"uniqueIndex:idx_post_user_reaction;index"`
	ReactionTypeID uint         `json:"reactionTypeId"`
	ReactionType   ReactionType `json:"reactionType"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// CommentReaction is one user's reaction to a comment.
type CommentReaction struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	CommentID      uint         `json:"commentId" gorm:"uniqueIndex:idx_comment_user_reaction"`
	UserID         uint         `json:"userId" gorm:"uniqueIndex:idx_comment_user_reaction;index"`
	ReactionTypeID uint         `json:"reactionTypeId"`
	ReactionType   ReactionType `json:"reactionType"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type ReactRequest struct {
	ReactionTypeID uint `json:"reactionTypeId" validate:"required"`
}
