package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/notifier"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	friendshipRepository repositories.FriendshipRepository
	userRepository       repositories.UserRepository
	relations            relations
	notifier             *notifier.Notifier
	log                  *zap.Logger
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(repos *Repositories, n *notifier.Notifier, log *zap.Logger) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipRepository: repos.Friendships,
		userRepository:       repos.Users,
		relations:            repos.relations(),
		notifier:             n,
		log:                  log,
	}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/requests", h.SendFriendRequest)
	g.GET("/friends/requests/received", h.GetReceivedRequests)
	g.GET("/friends/requests/sent", h.GetSentRequests)
	g.PUT("/friends/requests/:id/accept", h.AcceptFriendRequest)
	g.PUT("/friends/requests/:id/reject", h.RejectFriendRequest)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:userId", h.DeleteFriend)
}

// SendFriendRequest handles sending a friend request
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	var req models.CreateFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.ReceiverID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot send a friend request to yourself")
	}

	if _, err := h.userRepository.GetUserByID(req.ReceiverID); err != nil {
		return notFoundOr(err, "Receiver user not found")
	}

	blocked, err := h.relations.blocked(currentUserID, req.ReceiverID)
	if err != nil {
		return internalError(err)
	}
	if blocked {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot send a friend request to this user")
	}

	friends, err := h.friendshipRepository.AreFriends(currentUserID, req.ReceiverID)
	if err != nil {
		return internalError(err)
	}
	if friends {
		return echo.NewHTTPError(http.StatusConflict, "You are already friends")
	}

	pending, err := h.friendshipRepository.HasPendingRequestBetween(currentUserID, req.ReceiverID)
	if err != nil {
		return internalError(err)
	}
	if pending {
		return echo.NewHTTPError(http.StatusConflict, "A pending friend request already exists")
	}

	friendRequest := &models.FriendRequest{
		SenderID:   currentUserID,
		ReceiverID: req.ReceiverID,
	}
	if err := h.friendshipRepository.CreateFriendRequest(friendRequest); err != nil {
		return internalError(err)
	}

	h.notifier.Emit(models.Notification{
		Type:        models.NotificationFriendRequest,
		ActorID:     currentUserID,
		RecipientID: req.ReceiverID,
		TargetID:    strconv.FormatUint(uint64(friendRequest.ID), 10),
		TargetType:  "friend_request",
		Message:     displayName(c) + " sent you a friend request",
	})

	return h.requestResponse(c, http.StatusCreated, friendRequest.ID)
}

// GetReceivedRequests lists requests sent to the caller. Only pending ones
// are returned unless ?status= asks otherwise (ALL for every status).
func (h *FriendshipHandler) GetReceivedRequests(c echo.Context) error {
	status, err := requestStatusFilter(c)
	if err != nil {
		return err
	}
	requests, err := h.friendshipRepository.GetReceivedRequests(getUserIDFromContext(c), status)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"requests": requestViews(requests)})
}

func (h *FriendshipHandler) GetSentRequests(c echo.Context) error {
	status, err := requestStatusFilter(c)
	if err != nil {
		return err
	}
	requests, err := h.friendshipRepository.GetSentRequests(getUserIDFromContext(c), status)
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"requests": requestViews(requests)})
}

// AcceptFriendRequest accepts a pending request addressed to the caller.
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	req, err := h.loadPendingForReceiver(c)
	if err != nil {
		return err
	}

	friend, err := h.friendshipRepository.AcceptFriendRequest(req)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "Friend request is no longer pending")
		}
		return internalError(err)
	}

	h.notifier.Emit(models.Notification{
		Type:        models.NotificationFriendAccept,
		ActorID:     req.ReceiverID,
		RecipientID: req.SenderID,
		TargetID:    strconv.FormatUint(uint64(req.ID), 10),
		TargetType:  "friend_request",
		Message:     displayName(c) + " accepted your friend request",
	})

	return success(c, http.StatusOK, echo.Map{
		"request":    requestViews([]models.FriendRequest{*req})[0],
		"friendship": friend,
	})
}

func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	req, err := h.loadPendingForReceiver(c)
	if err != nil {
		return err
	}
	if err := h.friendshipRepository.UpdateFriendRequestStatus(req.ID, models.FriendRequestDeclined); err != nil {
		return internalError(err)
	}
	return h.requestResponse(c, http.StatusOK, req.ID)
}

// GetFriends lists the caller's friends, most recent friendship first.
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	friends, err := h.friendshipRepository.GetFriends(currentUserID)
	if err != nil {
		return internalError(err)
	}

	otherIDs := make([]uint, len(friends))
	for i, f := range friends {
		otherIDs[i] = otherSide(f, currentUserID)
	}
	users, err := h.userRepository.GetUsersByIDs(otherIDs)
	if err != nil {
		return internalError(err)
	}

	views := make([]models.FriendView, 0, len(friends))
	for _, f := range friends {
		user, ok := users[otherSide(f, currentUserID)]
		if !ok {
			continue
		}
		views = append(views, models.FriendView{
			ID:             f.ID,
			FriendshipDate: f.FriendshipDate,
			Friend:         user.ToDTO(),
		})
	}
	return success(c, http.StatusOK, echo.Map{"friends": views})
}

// DeleteFriend ends a friendship
func (h *FriendshipHandler) DeleteFriend(c echo.Context) error {
	friendID, err := parseID(c, "userId", "user")
	if err != nil {
		return err
	}
	if err := h.friendshipRepository.DeleteFriendship(getUserIDFromContext(c), friendID); err != nil {
		return notFoundOr(err, "You are not friends with this user")
	}
	return success(c, http.StatusOK, echo.Map{"deleted": true})
}

func (h *FriendshipHandler) loadPendingForReceiver(c echo.Context) (*models.FriendRequest, error) {
	id, err := parseID(c, "id", "friend request")
	if err != nil {
		return nil, err
	}
	req, err := h.friendshipRepository.GetFriendRequestByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Friend request not found")
	}
	if req.ReceiverID != getUserIDFromContext(c) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Only the receiver can respond to this request")
	}
	if req.Status != models.FriendRequestPending {
		return nil, echo.NewHTTPError(http.StatusConflict, "Friend request is no longer pending")
	}
	return req, nil
}

func (h *FriendshipHandler) requestResponse(c echo.Context, status int, id uint) error {
	req, err := h.friendshipRepository.GetFriendRequestByID(id)
	if err != nil {
		return internalError(err)
	}
	return success(c, status, requestViews([]models.FriendRequest{*req})[0])
}

func requestStatusFilter(c echo.Context) (string, error) {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	switch status {
	case "":
		return models.FriendRequestPending, nil
	case "ALL":
		return "", nil
	case models.FriendRequestPending, models.FriendRequestAccepted, models.FriendRequestDeclined, models.FriendRequestBlocked:
		return status, nil
	default:
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid status filter")
	}
}

func requestViews(requests []models.FriendRequest) []models.FriendRequestView {
	views := make([]models.FriendRequestView, len(requests))
	for i, r := range requests {
		views[i] = models.FriendRequestView{
			FriendRequest: r,
			Sender:        r.Sender.ToCompact(),
			Receiver:      r.Receiver.ToCompact(),
		}
	}
	return views
}

func otherSide(f models.Friend, userID uint) uint {
	if f.User1ID == userID {
		return f.User2ID
	}
	return f.User1ID
}
