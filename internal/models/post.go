package models

import "time"

type Post struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	UserID     uint        `json:"userId" gorm:"index"`
	User       User        `json:"-"`
	PostTypeID uint        `json:"postTypeId"`
	PostType   PostType    `json:"postType"`
	Content    string      `json:"content" gorm:"type:text"`
	Media      []PostMedia `json:"media"`
	CreatedAt  time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// PostMedia is an uploaded image or video attached to a post.
type PostMedia struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PostID     uint      `json:"postId" gorm:"index"`
	MediaURL   string    `json:"mediaUrl"`
	MediaType  string    `json:"mediaType" gorm:"size:20"` // image, video
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreatePostRequest struct {
	Content    string `json:"content" validate:"required,notblank,max=2000"`
	PostTypeID uint   `json:"postTypeId" validate:"required"`
}

type UpdatePostRequest struct {
	Content    *string `json:"content" validate:"omitempty,notblank,max=2000"`
	PostTypeID *uint   `json:"postTypeId" validate:"omitempty,min=1"`
}

// PostView is a post enriched for a viewer.
type PostView struct {
	Post
	Author         UserCompact      `json:"author"`
	ReactionCounts map[string]int64 `json:"reactionCounts"`
	CommentCount   int64            `json:"commentCount"`
	MyReaction     *string          `json:"myReaction"`
	IsBookmarked   bool             `json:"isBookmarked"`
}
