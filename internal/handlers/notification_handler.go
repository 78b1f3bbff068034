package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/notifier"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
	notifier               *notifier.Notifier
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(repos *Repositories, n *notifier.Notifier) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: repos.Notifications,
		userRepository:         repos.Users,
		notifier:               n,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.POST("/notifications", h.CreateNotification)
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.GET("/notifications/:id", h.GetNotification)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// CreateNotification sends a notification from the caller to another user.
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req models.CreateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if _, err := h.userRepository.GetUserByID(req.RecipientID); err != nil {
		return notFoundOr(err, "Recipient not found")
	}

	enriched, err := h.notifier.Notify(&models.Notification{
		Type:        req.Type,
		ActorID:     getUserIDFromContext(c),
		RecipientID: req.RecipientID,
		TargetID:    req.TargetID,
		TargetType:  req.TargetType,
		Message:     req.Message,
	})
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusCreated, enriched)
}

// GetNotifications returns paginated notifications, newest first. ?unread=true
// keeps only unread ones.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	page, limit := pagination(c)
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))

	notifications, total, err := h.notificationRepository.GetByRecipientID(currentUserID, unreadOnly, page, limit)
	if err != nil {
		return internalError(err)
	}

	return paged(c, echo.Map{"notifications": h.notifier.Enrich(notifications)}, page, limit, total)
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	today, yesterday, thisWeek, older, err := h.notificationRepository.GetGrouped(currentUserID, time.Now())
	if err != nil {
		return internalError(err)
	}
	unreadCount, err := h.notificationRepository.GetUnreadCount(currentUserID)
	if err != nil {
		return internalError(err)
	}

	return success(c, http.StatusOK, echo.Map{
		"notifications": echo.Map{
			"today":     h.notifier.Enrich(today),
			"yesterday": h.notifier.Enrich(yesterday),
			"thisWeek":  h.notifier.Enrich(thisWeek),
			"older":     h.notifier.Enrich(older),
		},
		"unreadCount": unreadCount,
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notificationRepository.GetUnreadCount(getUserIDFromContext(c))
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"count": count})
}

func (h *NotificationHandler) GetNotification(c echo.Context) error {
	id, err := parseID(c, "id", "notification")
	if err != nil {
		return err
	}
	n, err := h.notificationRepository.GetByID(id, getUserIDFromContext(c))
	if err != nil {
		return notFoundOr(err, "Notification not found")
	}
	return success(c, http.StatusOK, h.notifier.Enrich([]models.Notification{*n})[0])
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := parseID(c, "id", "notification")
	if err != nil {
		return err
	}
	if err := h.notificationRepository.MarkAsRead(id, getUserIDFromContext(c)); err != nil {
		return notFoundOr(err, "Notification not found")
	}
	return success(c, http.StatusOK, echo.Map{"read": true})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	updated, err := h.notificationRepository.MarkAllAsRead(getUserIDFromContext(c))
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, echo.Map{"updated": updated})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	id, err := parseID(c, "id", "notification")
	if err != nil {
		return err
	}
	if err := h.notificationRepository.Delete(id, getUserIDFromContext(c)); err != nil {
		return notFoundOr(err, "Notification not found")
	}
	return success(c, http.StatusOK, echo.Map{"deleted": true})
}
