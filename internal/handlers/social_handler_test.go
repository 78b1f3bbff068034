package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestList struct {
	Requests []models.FriendRequestView `json:"requests"`
}

func TestFriendRequestFlow(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	bob := testutil.CreateUser(t, app.DB, "bob")
	aliceToken, bobToken := app.Token(t, alice), app.Token(t, bob)

	testutil.RequireStatus(t, app.Do(t, http.MethodPost, "/api/friends/requests",
		map[string]any{"receiverId": alice.ID}, aliceToken), http.StatusBadRequest)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, "/api/friends/requests",
		map[string]any{"receiverId": 999}, aliceToken), http.StatusNotFound)

	rec := app.Do(t, http.MethodPost, "/api/friends/requests", map[string]any{"receiverId": bob.ID}, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusCreated)
	var sent models.FriendRequestView
	testutil.DecodeData(t, rec, &sent)
	assert.Equal(t, models.FriendRequestPending, sent.Status)
	assert.Equal(t, "alice", sent.Sender.Username)
	assert.Equal(t, "bob", sent.Receiver.Username)

	testutil.RequireStatus(t, app.Do(t, http.MethodPost, "/api/friends/requests",
		map[string]any{"receiverId": alice.ID}, bobToken), http.StatusConflict)

	rec = app.Do(t, http.MethodGet, "/api/friends/requests/received", nil, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var received requestList
	testutil.DecodeData(t, rec, &received)
	require.Len(t, received.Requests, 1)
	assert.Equal(t, sent.ID, received.Requests[0].ID)

	acceptPath := path("/api/friends/requests/%d/accept", sent.ID)
	testutil.RequireStatus(t, app.Do(t, http.MethodPut, acceptPath, nil, aliceToken), http.StatusForbidden)
	testutil.RequireStatus(t, app.Do(t, http.MethodPut, acceptPath, nil, bobToken), http.StatusOK)
	testutil.RequireStatus(t, app.Do(t, http.MethodPut, acceptPath, nil, bobToken), http.StatusConflict)

	rec = app.Do(t, http.MethodGet, "/api/friends", nil, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var friends struct {
		Friends []models.FriendView `json:"friends"`
	}
	testutil.DecodeData(t, rec, &friends)
	require.Len(t, friends.Friends, 1)
	assert.Equal(t, "bob", friends.Friends[0].Friend.Username)

	rec = app.Do(t, http.MethodGet, "/api/friends/requests/sent", nil, aliceToken)
	testutil.DecodeData(t, rec, &received)
	assert.Empty(t, received.Requests, "accepted requests are hidden by default")
	rec = app.Do(t, http.MethodGet, "/api/friends/requests/sent?status=ALL", nil, aliceToken)
	testutil.DecodeData(t, rec, &received)
	require.Len(t, received.Requests, 1)
	assert.Equal(t, models.FriendRequestAccepted, received.Requests[0].Status)
	testutil.RequireStatus(t, app.Do(t, http.MethodGet, "/api/friends/requests/sent?status=bogus", nil, aliceToken), http.StatusBadRequest)

	notifications, _, err := app.Repos.Notifications.GetByRecipientID(alice.ID, false, 1, 20)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationFriendAccept, notifications[0].Type)

	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, path("/api/friends/%d", bob.ID), nil, aliceToken), http.StatusOK)
	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, path("/api/friends/%d", bob.ID), nil, aliceToken), http.StatusNotFound)
}

func TestRejectFriendRequest(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	bob := testutil.CreateUser(t, app.DB, "bob")
	bobToken := app.Token(t, bob)

	rec := app.Do(t, http.MethodPost, "/api/friends/requests", map[string]any{"receiverId": bob.ID}, app.Token(t, alice))
	var sent models.FriendRequestView
	testutil.DecodeData(t, rec, &sent)

	rec = app.Do(t, http.MethodPut, path("/api/friends/requests/%d/reject", sent.ID), nil, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var rejected models.FriendRequestView
	testutil.DecodeData(t, rec, &rejected)
	assert.Equal(t, models.FriendRequestDeclined, rejected.Status)
	assert.NotNil(t, rejected.ResponseDate)
}

func TestFollowStats(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	bob := testutil.CreateUser(t, app.DB, "bob")
	aliceToken := app.Token(t, alice)

	followPath := path("/api/users/%d/follow", bob.ID)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, path("/api/users/%d/follow", alice.ID), nil, aliceToken), http.StatusBadRequest)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, followPath, nil, aliceToken), http.StatusOK)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, followPath, nil, aliceToken), http.StatusConflict)

	rec := app.Do(t, http.MethodGet, path("/api/users/%d/follow-stats", bob.ID), nil, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var stats models.FollowStats
	testutil.DecodeData(t, rec, &stats)
	assert.Equal(t, models.FollowStats{Followers: 1, Following: 0, IsFollowing: true}, stats)

	rec = app.Do(t, http.MethodGet, path("/api/users/%d/followers", bob.ID), nil, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var followers struct {
		Users []models.UserCompact `json:"users"`
	}
	testutil.DecodeData(t, rec, &followers)
	require.Len(t, followers.Users, 1)
	assert.Equal(t, "alice", followers.Users[0].Username)

	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, followPath, nil, aliceToken), http.StatusOK)
	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, followPath, nil, aliceToken), http.StatusNotFound)
}

func TestBlocks(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	bob := testutil.CreateUser(t, app.DB, "bob")
	aliceToken, bobToken := app.Token(t, alice), app.Token(t, bob)

	blockPath := path("/api/blocks/%d", bob.ID)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, path("/api/blocks/%d", alice.ID), nil, aliceToken), http.StatusBadRequest)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, blockPath, nil, aliceToken), http.StatusCreated)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, blockPath, nil, aliceToken), http.StatusConflict)

	rec := app.Do(t, http.MethodGet, path("/api/blocks/%d/status", alice.ID), nil, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var status models.BlockStatus
	testutil.DecodeData(t, rec, &status)
	assert.Equal(t, models.BlockStatus{Blocked: false, BlockedBy: true}, status)

	testutil.RequireStatus(t, app.Do(t, http.MethodPost, "/api/friends/requests",
		map[string]any{"receiverId": alice.ID}, bobToken), http.StatusForbidden)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, path("/api/users/%d/follow", alice.ID), nil, bobToken), http.StatusForbidden)

	rec = app.Do(t, http.MethodGet, "/api/blocks", nil, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), `"bob"`)

	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, blockPath, nil, aliceToken), http.StatusOK)
	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, blockPath, nil, aliceToken), http.StatusNotFound)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, path("/api/users/%d/follow", alice.ID), nil, bobToken), http.StatusOK)
}

func TestUserProfile(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	alfred := testutil.CreateUser(t, app.DB, "alfred")
	token := app.Token(t, alice)

	rec := app.Do(t, http.MethodPut, "/api/users/me", map[string]any{
		"displayName": "Alice A.",
		"bio":         "hello",
		"dateOfBirth": "1990-04-01",
	}, token)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var dto models.UserDTO
	testutil.DecodeData(t, rec, &dto)
	assert.Equal(t, "Alice A.", dto.DisplayName)
	require.NotNil(t, dto.DateOfBirth)
	assert.Equal(t, "1990-04-01", *dto.DateOfBirth)

	rec = app.Do(t, http.MethodGet, path("/api/users/%d", alice.ID), nil, token)
	testutil.RequireStatus(t, rec, http.StatusOK)
	testutil.DecodeData(t, rec, &dto)
	assert.Equal(t, "hello", dto.Bio)

	rec = app.Do(t, http.MethodGet, "/api/users/search?q=AL", nil, token)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var found struct {
		Users []models.UserDTO `json:"users"`
	}
	testutil.DecodeData(t, rec, &found)
	assert.Len(t, found.Users, 2)

	testutil.RequireStatus(t, app.Do(t, http.MethodGet, "/api/users/search", nil, token), http.StatusBadRequest)
	testutil.RequireStatus(t, app.Do(t, http.MethodGet, "/api/users/999", nil, token), http.StatusNotFound)

	rec = app.Do(t, http.MethodPost, "/api/chatrooms", map[string]any{"participantIds": []uint{alfred.ID}}, token)
	testutil.RequireStatus(t, rec, http.StatusCreated)
	var room models.ChatRoomView
	testutil.DecodeData(t, rec, &room)
	messagesPath := path("/api/chatrooms/%d/messages", room.ID)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, messagesPath, map[string]any{"content": "from alice"}, token), http.StatusCreated)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, messagesPath, map[string]any{"content": "from alfred"}, app.Token(t, alfred)), http.StatusCreated)

	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, "/api/users/me", nil, token), http.StatusOK)
	testutil.RequireStatus(t, app.Do(t, http.MethodGet, "/api/auth/me", nil, token), http.StatusUnauthorized)

	left, err := app.Repos.Messages.GetMessages(context.Background(), room.ID, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, alfred.ID, left[0].SenderID)
}
