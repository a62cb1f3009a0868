package supervisorctl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/kestrelgames/gamestore/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthReportsNoRunningChildren(t *testing.T) {
	sup := supervisor.New("python3", t.TempDir(), 9000, testLogger(), nil)
	svc := NewService(sup, testLogger())

	resp, err := svc.Health(context.Background(), &HealthRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Healthy)
	assert.Zero(t, resp.RunningCount)
}

func TestListRunningIsEmptyBeforeAnySpawn(t *testing.T) {
	sup := supervisor.New("python3", t.TempDir(), 9000, testLogger(), nil)
	svc := NewService(sup, testLogger())

	resp, err := svc.ListRunning(context.Background(), &ListRunningRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
}

func TestStopRoomReportsFailureForUnknownRoom(t *testing.T) {
	sup := supervisor.New("python3", t.TempDir(), 9000, testLogger(), nil)
	svc := NewService(sup, testLogger())

	resp, err := svc.StopRoom(context.Background(), &StopRoomRequest{RoomID: 999})
	require.NoError(t, err)
	assert.False(t, resp.Stopped)
	assert.NotEmpty(t, resp.Error)
}
