package models

import "time"

// Comment on a post. ParentID is set for replies.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"postId" gorm:"index"`
	UserID    uint      `json:"userId" gorm:"index"`
	User      User      `json:"-"`
	ParentID  *uint     `json:"parentId" gorm:"index"`
	Content   string    `json:"content" gorm:"size:1000"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,notblank,max=1000"`
	ParentID *uint  `json:"parentId"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,notblank,max=1000"`
}

// CommentView is a comment with its author, reaction counts and nested replies.
type CommentView struct {
	Comment
	Author         UserCompact      `json:"author"`
	ReactionCounts map[string]int64 `json:"reactionCounts"`
	Replies        []CommentView    `json:"replies"`
}
