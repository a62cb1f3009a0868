package lobby

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/kestrelgames/gamestore/internal/artifact"
	"github.com/kestrelgames/gamestore/internal/auth"
	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/internal/protocol"
	"github.com/kestrelgames/gamestore/internal/supervisor"
	"github.com/kestrelgames/gamestore/pkg/config"
	"github.com/kestrelgames/gamestore/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
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

	artifacts, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)

	authSvc := auth.NewService(store, auth.NewTokenIssuer("secret"), "salt", time.Hour)
	sup := supervisor.New("python3", t.TempDir(), 9500, testLogger(), nil)

	return NewServer(store, authSvc, artifacts, sup, testLogger())
}

func pipeSession(srv *Server) (client *protocol.Conn, stop func()) {
	serverConn, clientConn := net.Pipe()
	sess := &session{srv: srv, conn: protocol.NewConn(serverConn), log: testLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	go sess.run(ctx)
	return protocol.NewConn(clientConn), func() {
		cancel()
		clientConn.Close()
	}
}

func TestRegisterAndAuthenticateOverConnection(t *testing.T) {
	srv := newTestServer(t)
	client, stop := pipeSession(srv)
	defer stop()

	reg, err := protocol.NewMessage(protocol.RegisterRequest, map[string]string{
		"username": "alice", "password": "hunter2",
	})
	require.NoError(t, err)
	require.NoError(t, client.Write(reg))

	resp, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.RegisterResponse, resp.Type)

	authMsg, err := protocol.NewMessage(protocol.AuthRequest, map[string]string{
		"username": "alice", "password": "hunter2",
	})
	require.NoError(t, err)
	require.NoError(t, client.Write(authMsg))

	authResp, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.AuthResponse, authResp.Type)

	var body struct {
		Success      bool   `json:"success"`
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, authResp.Decode(&body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.SessionToken)
}

func TestUnknownMessageTypeReturnsError(t *testing.T) {
	srv := newTestServer(t)
	client, stop := pipeSession(srv)
	defer stop()

	msg, err := protocol.NewMessage(protocol.Type(0x9999), nil)
	require.NoError(t, err)
	require.NoError(t, client.Write(msg))

	resp, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrorType, resp.Type)
}
