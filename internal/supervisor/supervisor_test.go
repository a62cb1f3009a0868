package supervisor

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeFakeGameServer drops in a tiny script the configured interpreter can
// run and exit from immediately, so Spawn has something real to execute.
func writeFakeGameServer(t *testing.T, gamesDir string, gameID int64) string {
	t.Helper()
	dir := filepath.Join(gamesDir, "1", "current")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "game_server.py")
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/env python3\nimport sys, time\nsys.exit(0)\n"), 0o755))
	return path
}

func TestPortAllocationIsMonotonicAndNeverReused(t *testing.T) {
	s := New("python3", t.TempDir(), 9000, testLogger(), nil)
	a := s.allocatePort()
	b := s.allocatePort()
	c := s.allocatePort()
	assert.Equal(t, 9000, a)
	assert.Equal(t, 9001, b)
	assert.Equal(t, 9002, c)
}

func TestSpawnMissingGameServerFails(t *testing.T) {
	s := New("python3", t.TempDir(), 9000, testLogger(), nil)
	_, err := s.Spawn(context.Background(), 1, 1, "NoSuchGame", "current", []string{"alice"})
	assert.Error(t, err)
}

func TestSpawnAndMonitorCallsOnExit(t *testing.T) {
	if _, err := os.Stat("/usr/bin/python3"); err != nil && runtime.GOOS != "linux" {
		t.Skip("python3 not available")
	}
	gamesDir := t.TempDir()
	writeFakeGameServer(t, gamesDir, 1)

	exited := make(chan int64, 1)
	s := New("python3", gamesDir, 9000, testLogger(), func(roomID int64, exitErr error) {
		exited <- roomID
	})

	port, err := s.Spawn(context.Background(), 42, 1, "TestGame", "current", []string{"alice", "bob"})
	if err != nil {
		t.Skipf("python3 unavailable in this environment: %v", err)
	}
	assert.Equal(t, 9000, port)

	select {
	case roomID := <-exited:
		assert.EqualValues(t, 42, roomID)
	case <-time.After(3 * time.Second):
		t.Fatal("onExit was not called")
	}
}
