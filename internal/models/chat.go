package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRoom is a conversation. A private room has exactly two members at
// creation and never admits anyone else.
type ChatRoom struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	RoomName    string     `json:"roomName" gorm:"size:100"`
	CreatorID   uint       `json:"creatorId"`
	IsGroupChat bool       `json:"isGroupChat" gorm:"not null;default:false;index"`
	Members     []RoomUser `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// RoomUser is a chat room membership.
type RoomUser struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ChatRoomID uint      `json:"chatRoomId" gorm:"uniqueIndex:idx_room_member"`
	UserID     uint      `json:"userId" gorm:"uniqueIndex:idx_room_member;index"`
	User       User      `json:"-"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// Message IDs are uuids so the same value works as a SQL key and a Mongo _id.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	ChatRoomID uint      `json:"chatRoomId" gorm:"index" bson:"chat_room_id"`
	SenderID   uint      `json:"senderId" bson:"sender_id"`
	Content    string    `json:"content" gorm:"size:2000" bson:"content"`
	SentAt     time.Time `json:"sentAt" gorm:"index" bson:"sent_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	m.Prepare()
	return nil
}

// Prepare assigns the id and timestamp if they are unset.
func (m *Message) Prepare() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
}

type CreateChatRoomRequest struct {
	RoomName       string `json:"roomName" validate:"omitempty,max=100"`
	ParticipantIDs []uint `json:"participantIds" validate:"required,min=1,dive,required"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,notblank,max=2000"`
}

type MessageView struct {
	Message
	Sender UserCompact `json:"sender"`
}

type ChatRoomView struct {
	ChatRoom
	Participants []UserCompact `json:"participants"`
	LastMessage  *MessageView  `json:"lastMessage"`
}
