package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/anonto42/wingit/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRooms(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repositories.NewPostgresChatRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	room := &models.ChatRoom{RoomName: "general", CreatorID: alice.ID}
	require.NoError(t, repo.CreateRoom(room, []uint{alice.ID, bob.ID, bob.ID}))

	loaded, err := repo.GetRoomByID(room.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Members, 2)
	assert.Equal(t, "alice", loaded.Members[0].User.Username)

	rooms, err := repo.GetRoomsByUser(bob.ID)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	rooms, err = repo.GetRoomsByUser(carol.ID)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	require.NoError(t, repo.AddMember(room.ID, carol.ID))
	assert.ErrorIs(t, repo.AddMember(room.ID, carol.ID), repositories.ErrAlreadyExists)

	ids, err := repo.GetMemberIDs(room.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{alice.ID, bob.ID, carol.ID}, ids)

	require.NoError(t, repo.RemoveMember(room.ID, carol.ID))
	assert.ErrorIs(t, repo.RemoveMember(room.ID, carol.ID), repositories.ErrNotFound)
	member, err := repo.IsMember(room.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestMessages_PagedOldestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	chats := repositories.NewPostgresChatRepository(db)
	repo := repositories.NewPostgresMessageRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	room := &models.ChatRoom{RoomName: "solo", CreatorID: alice.ID}
	require.NoError(t, chats.CreateRoom(room, []uint{alice.ID}))

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	var sent []*models.Message
	for i := 0; i < 5; i++ {
		msg := &models.Message{ChatRoomID: room.ID, SenderID: alice.ID, Content: "m", SentAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.CreateMessage(ctx, msg))
		assert.NotEmpty(t, msg.ID)
		sent = append(sent, msg)
	}

	latest, err := repo.GetMessages(ctx, room.ID, time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, sent[3].ID, latest[0].ID)
	assert.Equal(t, sent[4].ID, latest[1].ID)

	earlier, err := repo.GetMessages(ctx, room.ID, latest[0].SentAt, 10)
	require.NoError(t, err)
	require.Len(t, earlier, 3)
	assert.Equal(t, sent[0].ID, earlier[0].ID)

	last, err := repo.GetLastMessages(ctx, []uint{room.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, sent[4].ID, last[room.ID].ID)
	_, ok := last[9999]
	assert.False(t, ok)
}
