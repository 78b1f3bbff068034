package models

import "time"

const (
	NotificationFriendPost    = "FRIEND_POST"
	NotificationComment       = "COMMENT"
	NotificationReaction      = "REACTION"
	NotificationFollow        = "FOLLOW"
	NotificationFriendRequest = "FRIEND_REQUEST"
	NotificationFriendAccept  = "FRIEND_ACCEPT"
)

// Notification represents a user notification
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     uint      `json:"actorId" gorm:"index"`
	RecipientID uint      `json:"recipientId" gorm:"index"`
	TargetID    string    `json:"targetId"`                   // post ID, comment ID, etc.
	TargetType  string    `json:"targetType" gorm:"size:20"` // post, comment, user, friend_request
	Message     string    `json:"message"`
	IsRead      bool      `json:"isRead" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}

type CreateNotificationRequest struct {
	RecipientID uint   `json:"recipientId" validate:"required"`
	Type        string `json:"type" validate:"required,max=30"`
	Message     string `json:"message" validate:"required,max=500"`
	TargetID    string `json:"targetId" validate:"omitempty,max=64"`
	TargetType  string `json:"targetType" validate:"omitempty,max=20"`
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	Notification
	Actor UserCompact `json:"actor"`
}
