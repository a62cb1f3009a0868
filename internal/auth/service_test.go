package auth

import (
	"context"
	"testing"
	"time"

	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/pkg/config"
	"github.com/kestrelgames/gamestore/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
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

	return NewService(store, NewTokenIssuer("test-secret"), "test-salt", time.Hour)
}

func TestHashPasswordIsReproducible(t *testing.T) {
	a := HashPassword("hunter2", "salt")
	b := HashPassword("hunter2", "salt")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, HashPassword("hunter2", "othersalt"))
}

func TestRegisterAndAuthenticatePlayer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.RegisterPlayer(ctx, "alice", "hunter2", "alice@example.com")
	require.NoError(t, err)

	token, id, err := svc.AuthenticatePlayer(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotZero(t, id)

	_, err = svc.AuthenticatePlayer(ctx, "alice", "wrongpassword")
	assert.Error(t, err)

	player, err := svc.ValidatePlayerToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", player.Username)

	require.NoError(t, svc.LogoutPlayer(ctx, token))
	_, err = svc.ValidatePlayerToken(ctx, token)
	assert.Error(t, err)
}

func TestDeveloperCannotUsePlayerToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.RegisterPlayer(ctx, "bob", "pw", "")
	require.NoError(t, err)
	token, _, err := svc.AuthenticatePlayer(ctx, "bob", "pw")
	require.NoError(t, err)

	_, err = svc.ValidateDeveloperToken(ctx, token)
	assert.Error(t, err)
}
