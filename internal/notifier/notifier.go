package notifier

import (
	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/realtime"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"go.uber.org/zap"
)

// Pusher delivers an event to a user's open connections.
type Pusher interface {
	SendToUser(userID uint, eventType string, data interface{})
}

// UserLookup loads the actors shown next to notifications.
type UserLookup interface {
	GetUsersByIDs(ids []uint) (map[uint]models.User, error)
}

// Notifier persists notifications and pushes them to the recipient.
type Notifier struct {
	repo  repositories.NotificationRepository
	users UserLookup
	push  Pusher
	log   *zap.Logger
}

func New(repo repositories.NotificationRepository, users UserLookup, push Pusher, log *zap.Logger) *Notifier {
	return &Notifier{repo: repo, users: users, push: push, log: log}
}

// Notify stores the notification and pushes the enriched copy.
func (n *Notifier) Notify(notification *models.Notification) (*models.EnrichedNotification, error) {
	if err := n.repo.CreateNotification(notification); err != nil {
		return nil, err
	}
	enriched := n.Enrich([]models.Notification{*notification})[0]
	if n.push != nil {
		n.push.SendToUser(notification.RecipientID, realtime.EventNotification, enriched)
	}
	return &enriched, nil
}

// Emit is Notify for side effects of other actions: failures are logged
// and never returned. Self-notifications are skipped.
func (n *Notifier) Emit(notification models.Notification) {
	if notification.RecipientID == 0 || notification.RecipientID == notification.ActorID {
		return
	}
	if _, err := n.Notify(&notification); err != nil {
		n.log.Error("failed to create notification",
			zap.String("type", notification.Type),
			zap.Uint("recipient_id", notification.RecipientID),
			zap.Error(err),
		)
	}
}

// Fanout emits a copy of the notification to each distinct recipient.
func (n *Notifier) Fanout(template models.Notification, recipients []uint) {
	seen := make(map[uint]bool, len(recipients))
	for _, id := range recipients {
		if seen[id] {
			continue
		}
		seen[id] = true
		notification := template
		notification.RecipientID = id
		n.Emit(notification)
	}
}

// Enrich attaches the actor of each notification, loading every actor in
// one query.
func (n *Notifier) Enrich(notifications []models.Notification) []models.EnrichedNotification {
	enriched := make([]models.EnrichedNotification, len(notifications))
	ids := make([]uint, 0, len(notifications))
	for _, item := range notifications {
		ids = append(ids, item.ActorID)
	}
	actors, err := n.users.GetUsersByIDs(ids)
	if err != nil {
		n.log.Warn("failed to load notification actors", zap.Error(err))
	}
	for i, item := range notifications {
		enriched[i] = models.EnrichedNotification{Notification: item}
		if actor, ok := actors[item.ActorID]; ok {
			enriched[i].Actor = actor.ToCompact()
		}
	}
	return enriched
}
