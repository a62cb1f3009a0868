package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/kestrelgames/gamestore/pkg/config"
	"github.com/kestrelgames/gamestore/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := database.Open(&config.DatabaseConfig{
		Mode: config.DatabaseModeEmbedded,
		Type: "sqlite",
		Embedded: &config.EmbeddedDBConfig{
			Path: ":memory:",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	s, err := Open(conn)
	require.NoError(t, err)
	return s
}

func TestCreateAndAuthenticatePlayer(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreatePlayer(ctx, "alice", "hashedpw", "alice@example.com")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = s.CreatePlayer(ctx, "alice", "otherhash", "")
	assert.ErrorIs(t, err, ErrDuplicate)

	p, err := s.GetPlayerByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hashedpw", p.PasswordHash)
}

func TestPlayerSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreatePlayer(ctx, "bob", "hash", "")
	require.NoError(t, err)

	require.NoError(t, s.CreatePlayerSession(ctx, id, "tok-1", time.Hour))

	p, err := s.ValidatePlayerSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Username)

	require.NoError(t, s.DeletePlayerSession(ctx, "tok-1"))
	_, err = s.ValidatePlayerSession(ctx, "tok-1")
	assert.Error(t, err)
}

func TestGameLifecycleAndDownloads(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	devID, err := s.CreateDeveloper(ctx, "dev1", "hash", "")
	require.NoError(t, err)
	playerID, err := s.CreatePlayer(ctx, "player1", "hash", "")
	require.NoError(t, err)

	gameID, err := s.CreateGame(ctx, "Chess", "a game", devID, "1.0.0", 2, 2, "cli")
	require.NoError(t, err)

	_, err = s.AddGameVersion(ctx, gameID, "1.0.0", "Initial release", "games/1/1.0.0/game_package.zip", 1024, "deadbeef")
	require.NoError(t, err)

	require.NoError(t, s.RecordDownload(ctx, gameID, playerID, "1.0.0"))

	game, err := s.GetGame(ctx, gameID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, game.DownloadCount)

	games, err := s.ListActiveGames(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestReviewUpsertRecomputesAverage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	devID, _ := s.CreateDeveloper(ctx, "dev2", "hash", "")
	p1, _ := s.CreatePlayer(ctx, "p1", "hash", "")
	p2, _ := s.CreatePlayer(ctx, "p2", "hash", "")
	gameID, err := s.CreateGame(ctx, "Go Fish", "", devID, "1.0.0", 2, 4, "cli")
	require.NoError(t, err)

	require.NoError(t, s.UpsertReview(ctx, gameID, p1, 5, "great"))
	require.NoError(t, s.UpsertReview(ctx, gameID, p2, 3, "ok"))

	game, err := s.GetGame(ctx, gameID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, game.RatingCount)
	assert.InDelta(t, 4.0, game.AverageRating, 0.001)

	require.NoError(t, s.UpsertReview(ctx, gameID, p1, 1, "changed my mind"))
	game, err = s.GetGame(ctx, gameID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, game.RatingCount)
	assert.InDelta(t, 2.0, game.AverageRating, 0.001)
}

func TestRoomJoinLeaveAndExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	devID, _ := s.CreateDeveloper(ctx, "dev3", "hash", "")
	host, _ := s.CreatePlayer(ctx, "host", "hash", "")
	guest, _ := s.CreatePlayer(ctx, "guest", "hash", "")
	gameID, err := s.CreateGame(ctx, "Uno", "", devID, "1.0.0", 2, 4, "cli")
	require.NoError(t, err)

	room, err := s.CreateRoom(ctx, gameID, host, "Room 1", 4)
	require.NoError(t, err)
	assert.Len(t, room.RoomCode, 8)

	require.NoError(t, s.JoinRoom(ctx, room.ID, guest))
	players, err := s.GetRoomPlayers(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, players, 2)

	require.NoError(t, s.LeaveRoom(ctx, room.ID, guest))
	players, err = s.GetRoomPlayers(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, players, 1)

	active, err := s.ListActiveRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
