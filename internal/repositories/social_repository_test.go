package repositories_test

import (
	"testing"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/anonto42/wingit/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRequestLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repositories.NewPostgresFriendshipRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	req := &models.FriendRequest{SenderID: bob.ID, ReceiverID: alice.ID}
	require.NoError(t, repo.CreateFriendRequest(req))
	assert.Equal(t, models.FriendRequestPending, req.Status)

	pending, err := repo.HasPendingRequestBetween(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, pending)

	received, err := repo.GetReceivedRequests(alice.ID, models.FriendRequestPending)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "bob", received[0].Sender.Username)

	friend, err := repo.AcceptFriendRequest(req)
	require.NoError(t, err)
	assert.Less(t, friend.User1ID, friend.User2ID)
	assert.NotNil(t, req.ResponseDate)

	_, err = repo.AcceptFriendRequest(req)
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)

	ok, err := repo.AreFriends(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := repo.GetFriendIDs(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)

	sent, err := repo.GetSentRequests(bob.ID, "")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, models.FriendRequestAccepted, sent[0].Status)

	require.NoError(t, repo.DeleteFriendship(alice.ID, bob.ID))
	assert.ErrorIs(t, repo.DeleteFriendship(alice.ID, bob.ID), repositories.ErrNotFound)
}

func TestFollows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repositories.NewPostgresFollowRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}))
	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: carol.ID, FollowingID: alice.ID}))
	assert.ErrorIs(t, repo.CreateFollow(&models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}), repositories.ErrAlreadyExists)

	followers, err := repo.GetFollowers(alice.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].Username)

	following, err := repo.GetFollowing(bob.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, alice.ID, following[0].ID)

	n, err := repo.GetFollowersCount(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	ids, err := repo.GetFollowerIDs(alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{bob.ID, carol.ID}, ids)

	require.NoError(t, repo.DeleteFollow(bob.ID, alice.ID))
	assert.ErrorIs(t, repo.DeleteFollow(bob.ID, alice.ID), repositories.ErrNotFound)
}

func TestCreateBlock_SeversRelations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	blocks := repositories.NewPostgresBlockRepository(db)
	friends := repositories.NewPostgresFriendshipRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	accepted := &models.FriendRequest{SenderID: alice.ID, ReceiverID: bob.ID}
	require.NoError(t, friends.CreateFriendRequest(accepted))
	_, err := friends.AcceptFriendRequest(accepted)
	require.NoError(t, err)
	pending := &models.FriendRequest{SenderID: bob.ID, ReceiverID: alice.ID}
	require.NoError(t, friends.CreateFriendRequest(pending))
	require.NoError(t, follows.CreateFollow(&models.Follow{FollowerID: alice.ID, FollowingID: bob.ID}))
	require.NoError(t, follows.CreateFollow(&models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}))

	_, err = blocks.CreateBlock(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = blocks.CreateBlock(alice.ID, bob.ID)
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)

	ok, err := friends.AreFriends(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = follows.IsFollowing(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	req, err := friends.GetFriendRequestByID(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestBlocked, req.Status)
	req, err = friends.GetFriendRequestByID(accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestAccepted, req.Status)

	either, err := blocks.IsBlockedEither(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, either)
	byBob, err := blocks.IsBlocked(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, byBob)

	list, err := blocks.GetBlockedUsers(alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Blocked.Username)

	require.NoError(t, blocks.DeleteBlock(alice.ID, bob.ID))
	assert.ErrorIs(t, blocks.DeleteBlock(alice.ID, bob.ID), repositories.ErrNotFound)
}
