package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/realtime"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	defaultMessagePage = 50
	maxMessagePage     = 100
)

// Broadcaster pushes an event to every open connection of the given users.
type Broadcaster interface {
	SendToUsers(userIDs []uint, eventType string, data interface{})
}

// ChatHandler handles chat rooms and their messages
type ChatHandler struct {
	chatRepository    repositories.ChatRepository
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
	relations         relations
	push              Broadcaster
	log               *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(repos *Repositories, push Broadcaster, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatRepository:    repos.Chats,
		messageRepository: repos.Messages,
		userRepository:    repos.Users,
		relations:         repos.relations(),
		push:              push,
		log:               log,
	}
}

// RegisterChatRoutes registers chat routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.POST("/chatrooms", h.CreateRoom)
	g.POST("/chatrooms/private/:userId", h.OpenPrivateChat)
	g.GET("/chatrooms", h.GetRooms)
	g.GET("/chatrooms/:id", h.GetRoom)
	g.POST("/chatrooms/:id/join", h.JoinRoom)
	g.POST("/chatrooms/:id/leave", h.LeaveRoom)
	g.GET("/chatrooms/:id/messages", h.GetMessages)
	g.POST("/chatrooms/:id/messages", h.SendMessage)
}

// CreateRoom opens a room between the caller and the participants. A single
// participant gives a private chat, reusing the pair's existing one.
func (h *ChatHandler) CreateRoom(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	var req models.CreateChatRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	seen := map[uint]bool{currentUserID: true}
	var participants []uint
	for _, id := range req.ParticipantIDs {
		if !seen[id] {
			seen[id] = true
			participants = append(participants, id)
		}
	}
	if len(participants) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "participantIds must include another user")
	}
	return h.openRoom(c, strings.TrimSpace(req.RoomName), participants)
}

// OpenPrivateChat finds or creates the caller's private chat with :userId.
func (h *ChatHandler) OpenPrivateChat(c echo.Context) error {
	otherID, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}
	if otherID == getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot open a chat with yourself")
	}
	return h.openRoom(c, "", []uint{otherID})
}

func (h *ChatHandler) openRoom(c echo.Context, name string, participants []uint) error {
	currentUserID := getUserIDFromContext(c)

	users, err := h.userRepository.GetUsersByIDs(participants)
	if err != nil {
		return internalError(err)
	}
	for _, id := range participants {
		if _, ok := users[id]; !ok {
			return echo.NewHTTPError(http.StatusNotFound, "User "+strconv.FormatUint(uint64(id), 10)+" not found")
		}
		blocked, err := h.relations.blocked(currentUserID, id)
		if err != nil {
			return internalError(err)
		}
		if blocked {
			return echo.NewHTTPError(http.StatusForbidden, "Cannot start a chat with a blocked user")
		}
	}

	group := len(participants) > 1
	if !group {
		existing, err := h.chatRepository.FindPrivateRoom(currentUserID, participants[0])
		switch {
		case err == nil:
			return success(c, http.StatusOK, roomView(*existing, nil))
		case !errors.Is(err, repositories.ErrNotFound):
			return internalError(err)
		}
	}

	room := &models.ChatRoom{RoomName: name, CreatorID: currentUserID, IsGroupChat: group}
	if err := h.chatRepository.CreateRoom(room, append([]uint{currentUserID}, participants...)); err != nil {
		return internalError(err)
	}

	created, err := h.chatRepository.GetRoomByID(room.ID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusCreated, roomView(*created, nil))
}

// GetRooms lists the caller's rooms, most recently active first.
func (h *ChatHandler) GetRooms(c echo.Context) error {
	rooms, err := h.chatRepository.GetRoomsByUser(getUserIDFromContext(c))
	if err != nil {
		return internalError(err)
	}

	ids := make([]uint, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	last, err := h.messageRepository.GetLastMessages(c.Request().Context(), ids)
	if err != nil {
		return internalError(err)
	}

	lastMessages := make([]models.Message, 0, len(last))
	for _, m := range last {
		lastMessages = append(lastMessages, m)
	}
	messageViews, err := h.messageViews(lastMessages)
	if err != nil {
		return internalError(err)
	}
	byRoom := make(map[uint]*models.MessageView, len(messageViews))
	for i := range messageViews {
		byRoom[messageViews[i].ChatRoomID] = &messageViews[i]
	}

	views := make([]models.ChatRoomView, len(rooms))
	for i, r := range rooms {
		views[i] = roomView(r, byRoom[r.ID])
	}
	return success(c, http.StatusOK, echo.Map{"chatRooms": views})
}

func (h *ChatHandler) GetRoom(c echo.Context) error {
	room, err := h.loadRoom(c)
	if err != nil {
		return err
	}
	if err := h.requireMember(room.ID, getUserIDFromContext(c)); err != nil {
		return err
	}
	return success(c, http.StatusOK, roomView(*room, nil))
}

// JoinRoom adds the caller to a group chat. Private chats are closed, and so
// is any room where the caller and a member have blocked each other.
func (h *ChatHandler) JoinRoom(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	room, err := h.loadRoom(c)
	if err != nil {
		return err
	}
	if !room.IsGroupChat {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot join a private chat")
	}
	for _, m := range room.Members {
		if m.UserID == currentUserID {
			continue
		}
		blocked, err := h.relations.blocked(currentUserID, m.UserID)
		if err != nil {
			return internalError(err)
		}
		if blocked {
			return echo.NewHTTPError(http.StatusForbidden, "Cannot join a chat with a blocked user")
		}
	}
	if err := h.chatRepository.AddMember(room.ID, currentUserID); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "Already a member of this chat room")
		}
		return internalError(err)
	}

	joined, err := h.chatRepository.GetRoomByID(room.ID)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, roomView(*joined, nil))
}

func (h *ChatHandler) LeaveRoom(c echo.Context) error {
	room, err := h.loadRoom(c)
	if err != nil {
		return err
	}
	if err := h.chatRepository.RemoveMember(room.ID, getUserIDFromContext(c)); err != nil {
		return notFoundOr(err, "Not a member of this chat room")
	}
	return success(c, http.StatusOK, echo.Map{"left": true})
}

// GetMessages returns a page of messages oldest first. ?before= (RFC 3339)
// pages back from that instant, ?limit= caps the page (default 50, max 100).
func (h *ChatHandler) GetMessages(c echo.Context) error {
	room, err := h.loadRoom(c)
	if err != nil {
		return err
	}
	if err := h.requireMember(room.ID, getUserIDFromContext(c)); err != nil {
		return err
	}

	var before time.Time
	if raw := c.QueryParam("before"); raw != "" {
		if before, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "before must be an RFC 3339 timestamp")
		}
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > maxMessagePage {
		limit = defaultMessagePage
	}

	messages, err := h.messageRepository.GetMessages(c.Request().Context(), room.ID, before, limit)
	if err != nil {
		return internalError(err)
	}
	views, err := h.messageViews(messages)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"messages": views})
}

// SendMessage stores a message and pushes it to the other members.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	room, err := h.loadRoom(c)
	if err != nil {
		return err
	}
	if err := h.requireMember(room.ID, currentUserID); err != nil {
		return err
	}

	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg := &models.Message{ChatRoomID: room.ID, SenderID: currentUserID, Content: req.Content}
	if err := h.messageRepository.CreateMessage(c.Request().Context(), msg); err != nil {
		return internalError(err)
	}
	views, err := h.messageViews([]models.Message{*msg})
	if err != nil {
		return internalError(err)
	}

	memberIDs, err := h.chatRepository.GetMemberIDs(room.ID)
	if err != nil {
		h.log.Warn("failed to load room members", zap.Uint("room_id", room.ID), zap.Error(err))
	} else {
		others := make([]uint, 0, len(memberIDs))
		for _, id := range memberIDs {
			if id != currentUserID {
				others = append(others, id)
			}
		}
		h.push.SendToUsers(others, realtime.EventMessage, views[0])
	}

	return success(c, http.StatusCreated, views[0])
}

func (h *ChatHandler) loadRoom(c echo.Context) (*models.ChatRoom, error) {
	id, err := parseID(c, "id", "chat room")
	if err != nil {
		return nil, err
	}
	room, err := h.chatRepository.GetRoomByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Chat room not found")
	}
	return room, nil
}

func (h *ChatHandler) requireMember(roomID, userID uint) error {
	member, err := h.chatRepository.IsMember(roomID, userID)
	if err != nil {
		return internalError(err)
	}
	if !member {
		return echo.NewHTTPError(http.StatusForbidden, "You are not a member of this chat room")
	}
	return nil
}

func (h *ChatHandler) messageViews(messages []models.Message) ([]models.MessageView, error) {
	ids := make([]uint, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.SenderID)
	}
	senders, err := h.userRepository.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.MessageView, len(messages))
	for i, m := range messages {
		views[i] = models.MessageView{Message: m}
		if sender, ok := senders[m.SenderID]; ok {
			views[i].Sender = sender.ToCompact()
		}
	}
	return views, nil
}

// roomView lists the members as participants.
func roomView(room models.ChatRoom, last *models.MessageView) models.ChatRoomView {
	participants := make([]models.UserCompact, len(room.Members))
	for i, m := range room.Members {
		participants[i] = m.User.ToCompact()
	}
	return models.ChatRoomView{
		ChatRoom:     room,
		Participants: participants,
		LastMessage:  last,
	}
}
