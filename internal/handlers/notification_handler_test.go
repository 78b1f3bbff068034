package handlers_test

import (
	"net/http"
	"testing"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationPage struct {
	Notifications []models.EnrichedNotification `json:"notifications"`
}

func TestNotifications_ScopedToRecipient(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	bob := testutil.CreateUser(t, app.DB, "bob")
	aliceToken, bobToken := app.Token(t, alice), app.Token(t, bob)

	rec := app.Do(t, http.MethodPost, "/api/notifications", map[string]any{
		"recipientId": bob.ID,
		"type":        "MENTION",
		"message":     "alice mentioned you",
		"targetId":    "42",
		"targetType":  "post",
	}, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusCreated)
	var created models.EnrichedNotification
	testutil.DecodeData(t, rec, &created)
	assert.Equal(t, alice.ID, created.ActorID)
	assert.Equal(t, "alice", created.Actor.Username)
	assert.False(t, created.IsRead)

	rec = app.Do(t, http.MethodGet, "/api/notifications", nil, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var page notificationPage
	testutil.DecodeData(t, rec, &page)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, "alice mentioned you", page.Notifications[0].Message)

	var meta struct {
		Meta struct {
			TotalItems  int64 `json:"totalItems"`
			CurrentPage int   `json:"currentPage"`
		} `json:"meta"`
	}
	testutil.DecodeJSON(t, rec, &meta)
	assert.Equal(t, int64(1), meta.Meta.TotalItems)
	assert.Equal(t, 1, meta.Meta.CurrentPage)

	rec = app.Do(t, http.MethodGet, "/api/notifications", nil, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	testutil.DecodeData(t, rec, &page)
	assert.Empty(t, page.Notifications)

	id := created.ID
	testutil.RequireStatus(t, app.Do(t, http.MethodGet, path("/api/notifications/%d", id), nil, aliceToken), http.StatusNotFound)
	testutil.RequireStatus(t, app.Do(t, http.MethodPut, path("/api/notifications/%d/read", id), nil, aliceToken), http.StatusNotFound)
	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, path("/api/notifications/%d", id), nil, aliceToken), http.StatusNotFound)

	var count struct {
		Count int64 `json:"count"`
	}
	rec = app.Do(t, http.MethodGet, "/api/notifications/unread-count", nil, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	testutil.DecodeData(t, rec, &count)
	assert.Equal(t, int64(1), count.Count)

	testutil.RequireStatus(t, app.Do(t, http.MethodPut, path("/api/notifications/%d/read", id), nil, bobToken), http.StatusOK)

	rec = app.Do(t, http.MethodGet, "/api/notifications/unread-count", nil, bobToken)
	testutil.DecodeData(t, rec, &count)
	assert.Equal(t, int64(0), count.Count)

	rec = app.Do(t, http.MethodGet, "/api/notifications?unread=true", nil, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	testutil.DecodeData(t, rec, &page)
	assert.Empty(t, page.Notifications)

	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, path("/api/notifications/%d", id), nil, bobToken), http.StatusOK)
	testutil.RequireStatus(t, app.Do(t, http.MethodGet, path("/api/notifications/%d", id), nil, bobToken), http.StatusNotFound)
}

func TestCreateNotification_Validation(t *testing.T) {
	app := testutil.NewApp(t)
	token := app.Token(t, testutil.CreateUser(t, app.DB, "alice"))

	rec := app.Do(t, http.MethodPost, "/api/notifications", map[string]any{
		"recipientId": 999,
		"type":        "MENTION",
		"message":     "hello",
	}, token)
	testutil.RequireStatus(t, rec, http.StatusNotFound)

	rec = app.Do(t, http.MethodPost, "/api/notifications", map[string]any{"type": "MENTION"}, token)
	testutil.RequireStatus(t, rec, http.StatusBadRequest)
}

func TestNotifications_GroupedAndReadAll(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	bob := testutil.CreateUser(t, app.DB, "bob")
	for i := 0; i < 3; i++ {
		require.NoError(t, app.Repos.Notifications.CreateNotification(&models.Notification{
			Type:        models.NotificationFollow,
			ActorID:     alice.ID,
			RecipientID: bob.ID,
			Message:     "alice started following you",
		}))
	}
	token := app.Token(t, bob)

	rec := app.Do(t, http.MethodGet, "/api/notifications/grouped", nil, token)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var grouped struct {
		Notifications struct {
			Today     []models.EnrichedNotification `json:"today"`
			Yesterday []models.EnrichedNotification `json:"yesterday"`
			ThisWeek  []models.EnrichedNotification `json:"thisWeek"`
			Older     []models.EnrichedNotification `json:"older"`
		} `json:"notifications"`
		UnreadCount int64 `json:"unreadCount"`
	}
	testutil.DecodeData(t, rec, &grouped)
	assert.Len(t, grouped.Notifications.Today, 3)
	assert.Empty(t, grouped.Notifications.Older)
	assert.Equal(t, int64(3), grouped.UnreadCount)

	rec = app.Do(t, http.MethodPut, "/api/notifications/read-all", nil, token)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var updated struct {
		Updated int64 `json:"updated"`
	}
	testutil.DecodeData(t, rec, &updated)
	assert.Equal(t, int64(3), updated.Updated)
}
