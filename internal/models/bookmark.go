package models

import "time"

// Bookmark is a post saved by a user.
type Bookmark struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"index;uniqueIndex:idx_user_post_bookmark"`
	PostID    uint      `json:"postId" gorm:"index;uniqueIndex:idx_user_post_bookmark"`
	CreatedAt time.Time `json:"createdAt"`
}
