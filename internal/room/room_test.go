package room

import (
	"context"
	"testing"

	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/pkg/config"
	"github.com/kestrelgames/gamestore/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct {
	updates []int64
	started []int64
}

func (f *fakeBroadcaster) BroadcastRoomUpdate(roomID int64, currentPlayers int, usernames []string) {
	f.updates = append(f.updates, roomID)
}

func (f *fakeBroadcaster) BroadcastGameStarted(roomID int64, gamePort int, gameName string) {
	f.started = append(f.started, roomID)
}

func newTestManager(t *testing.T) (*Manager, *catalog.Store, *fakeBroadcaster) {
	t.Helper()
	conn, err := database.Open(&config.DatabaseConfig{
		Mode:     config.DatabaseModeEmbedded,
		Type:     "sqlite",
		Embedded: &config.EmbeddedDBConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store, err := catalog.Open(conn)
	require.NoError(t, err)

	bcast := &fakeBroadcaster{}
	return NewManager(store, bcast), store, bcast
}

func seedGame(t *testing.T, store *catalog.Store) (gameID, host, guest int64) {
	t.Helper()
	ctx := context.Background()
	dev, err := store.CreateDeveloper(ctx, "dev", "hash", "")
	require.NoError(t, err)
	host, err = store.CreatePlayer(ctx, "host", "hash", "")
	require.NoError(t, err)
	guest, err = store.CreatePlayer(ctx, "guest", "hash", "")
	require.NoError(t, err)
	gameID, err = store.CreateGame(ctx, "Connect4", "", dev, "1.0.0", 2, 2, "cli")
	require.NoError(t, err)
	return gameID, host, guest
}

func TestJoinFullRoomFails(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager(t)
	gameID, host, guest := seedGame(t, store)

	r, err := m.Create(ctx, gameID, host, "Room", 1)
	require.NoError(t, err)

	_, err = m.Join(ctx, r.ID, guest)
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinAlreadyMemberIsIdempotentError(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager(t)
	gameID, host, _ := seedGame(t, store)

	r, err := m.Create(ctx, gameID, host, "Room", 4)
	require.NoError(t, err)

	_, err = m.Join(ctx, r.ID, host)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestLeaveByHostClosesRoom(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager(t)
	gameID, host, guest := seedGame(t, store)

	r, err := m.Create(ctx, gameID, host, "Room", 4)
	require.NoError(t, err)
	_, err = m.Join(ctx, r.ID, guest)
	require.NoError(t, err)

	require.NoError(t, m.Leave(ctx, r.ID, host))

	updated, err := store.GetRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusClosed), updated.Status)
}

func TestStartGameRequiresHost(t *testing.T) {
	ctx := context.Background()
	m, store, bcast := newTestManager(t)
	gameID, host, guest := seedGame(t, store)

	r, err := m.Create(ctx, gameID, host, "Room", 4)
	require.NoError(t, err)
	_, err = m.Join(ctx, r.ID, guest)
	require.NoError(t, err)

	err = m.StartGame(ctx, r.ID, guest, 9001, "Connect4")
	assert.ErrorIs(t, err, ErrNotHost)

	require.NoError(t, m.StartGame(ctx, r.ID, host, 9001, "Connect4"))
	assert.Len(t, bcast.started, 1)

	updated, err := store.GetRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusPlaying), updated.Status)
	require.NotNil(t, updated.GamePort)
	assert.Equal(t, 9001, *updated.GamePort)
}
