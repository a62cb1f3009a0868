package developer

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/kestrelgames/gamestore/internal/artifact"
	"github.com/kestrelgames/gamestore/internal/auth"
	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/internal/protocol"
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

	return NewServer(store, authSvc, artifacts, t.TempDir(), testLogger())
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

func registerAndAuth(t *testing.T, client *protocol.Conn, username string) string {
	t.Helper()
	reg, err := protocol.NewMessage(protocol.RegisterRequest, map[string]string{
		"username": username, "password": "hunter2", "email": username + "@example.com",
	})
	require.NoError(t, err)
	require.NoError(t, client.Write(reg))
	_, err = client.Read()
	require.NoError(t, err)

	authMsg, err := protocol.NewMessage(protocol.AuthRequest, map[string]string{
		"username": username, "password": "hunter2",
	})
	require.NoError(t, err)
	require.NoError(t, client.Write(authMsg))

	resp, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.AuthResponse, resp.Type)

	var body struct {
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, resp.Decode(&body))
	return body.SessionToken
}

func TestRegisterAndAuthenticateDeveloper(t *testing.T) {
	srv := newTestServer(t)
	client, stop := pipeSession(srv)
	defer stop()

	token := registerAndAuth(t, client, "devalice")
	assert.NotEmpty(t, token)
}

func TestUploadStartChunkCompleteCreatesGame(t *testing.T) {
	srv := newTestServer(t)
	client, stop := pipeSession(srv)
	defer stop()

	registerAndAuth(t, client, "devbob")

	payload := []byte("not a real zip but good enough for a checksum test")
	checksum, err := sumHex(payload)
	require.NoError(t, err)

	start, err := protocol.NewMessage(protocol.UploadStart, map[string]any{
		"name":         "Tunnel Crawler",
		"description":  "A short roguelike",
		"version":      "1.0.0",
		"min_players":  1,
		"max_players":  4,
		"game_type":    "cli",
		"file_size":    len(payload),
		"checksum":     checksum,
	})
	require.NoError(t, err)
	require.NoError(t, client.Write(start))

	ready, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.UploadReady, ready.Type)

	chunk, err := protocol.NewMessage(protocol.UploadChunk, map[string]any{
		"offset": 0,
		"data":   hex.EncodeToString(payload),
	})
	require.NoError(t, err)
	require.NoError(t, client.Write(chunk))

	chunkResp, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.Success, chunkResp.Type)

	complete, err := protocol.NewMessage(protocol.UploadComplete, nil)
	require.NoError(t, err)
	require.NoError(t, client.Write(complete))

	done, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.UploadSuccess, done.Type)

	var body struct {
		GameID int64 `json:"game_id"`
	}
	require.NoError(t, done.Decode(&body))
	assert.NotZero(t, body.GameID)
}

func TestUploadCompleteRejectsChecksumMismatch(t *testing.T) {
	srv := newTestServer(t)
	client, stop := pipeSession(srv)
	defer stop()

	registerAndAuth(t, client, "devcarol")

	payload := []byte("payload bytes")

	start, err := protocol.NewMessage(protocol.UploadStart, map[string]any{
		"name":      "Bad Checksum Game",
		"version":   "1.0.0",
		"file_size": len(payload),
		"checksum":  "0000000000000000000000000000000000000000000000000000000000000000",
	})
	require.NoError(t, err)
	require.NoError(t, client.Write(start))
	_, err = client.Read()
	require.NoError(t, err)

	chunk, err := protocol.NewMessage(protocol.UploadChunk, map[string]any{
		"offset": 0,
		"data":   hex.EncodeToString(payload),
	})
	require.NoError(t, err)
	require.NoError(t, client.Write(chunk))
	_, err = client.Read()
	require.NoError(t, err)

	complete, err := protocol.NewMessage(protocol.UploadComplete, nil)
	require.NoError(t, err)
	require.NoError(t, client.Write(complete))

	resp, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrorType, resp.Type)
}

func TestUploadChunkRejectsSizeOverflow(t *testing.T) {
	srv := newTestServer(t)
	client, stop := pipeSession(srv)
	defer stop()

	registerAndAuth(t, client, "deverin")

	payload := []byte("this payload is longer than the declared file size")

	start, err := protocol.NewMessage(protocol.UploadStart, map[string]any{
		"name":      "Overflow Game",
		"version":   "1.0.0",
		"file_size": 4,
		"checksum":  "0000000000000000000000000000000000000000000000000000000000000000",
	})
	require.NoError(t, err)
	require.NoError(t, client.Write(start))
	_, err = client.Read()
	require.NoError(t, err)

	chunk, err := protocol.NewMessage(protocol.UploadChunk, map[string]any{
		"offset": 0,
		"data":   hex.EncodeToString(payload),
	})
	require.NoError(t, err)
	require.NoError(t, client.Write(chunk))

	resp, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrorType, resp.Type)

	complete, err := protocol.NewMessage(protocol.UploadComplete, nil)
	require.NoError(t, err)
	require.NoError(t, client.Write(complete))

	completeResp, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrorType, completeResp.Type)
}

func TestRemoveGameRequiresOwnership(t *testing.T) {
	srv := newTestServer(t)
	client, stop := pipeSession(srv)
	defer stop()

	registerAndAuth(t, client, "devdana")

	remove, err := protocol.NewMessage(protocol.RemoveGame, map[string]any{"game_id": 999})
	require.NoError(t, err)
	require.NoError(t, client.Write(remove))

	resp, err := client.Read()
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrorType, resp.Type)
}

func sumHex(data []byte) (string, error) {
	f, err := os.CreateTemp("", "checksum-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", err
	}
	f.Close()
	return artifact.Checksum(f.Name())
}
