package models

import "time"

const (
	FriendRequestPending  = "PENDING"
	FriendRequestAccepted = "ACCEPTED"
	FriendRequestDeclined = "DECLINED"
	FriendRequestBlocked  = "BLOCKED"
)

// FriendRequest represents a friend request between two users
type FriendRequest struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	SenderID     uint       `json:"senderId" gorm:"index"`
	Sender       User       `json:"-"`
	ReceiverID   uint       `json:"receiverId" gorm:"index"`
	Receiver     User       `json:"-"`
	Status       string     `json:"status" gorm:"size:20;index"`
	ResponseDate *time.Time `json:"responseDate"`
	CreatedAt    time.Time  `json:"requestDate"`
}

// Friend is an accepted friendship. User1ID is always the smaller id.
type Friend struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	User1ID        uint      `json:"user1Id" gorm:"uniqueIndex:idx_friend_pair"`
	User2ID        uint      `json:"user2Id" gorm:"uniqueIndex:idx_friend_pair;index"`
	FriendshipDate time.Time `json:"friendshipDate"`
}

// OrderedPair returns a and b with the smaller id first.
func OrderedPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

type CreateFriendRequest struct {
	ReceiverID uint `json:"receiverId" validate:"required"`
}

type FriendRequestView struct {
	FriendRequest
	Sender   UserCompact `json:"sender"`
	Receiver UserCompact `json:"receiver"`
}

type FriendView struct {
	ID             uint      `json:"id"`
	FriendshipDate time.Time `json:"friendshipDate"`
	Friend         UserDTO   `json:"friend"`
}
