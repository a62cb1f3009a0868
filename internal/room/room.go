// Package room implements the room lifecycle state machine and the
// broadcast fan-out for ROOM_UPDATE/GAME_STARTED notifications. Grounded on
// spec.md §4.6 and the LOBBY_SERVER room handlers in
// original_source/.../lobby_server.py.
package room

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/pkg/metrics"
)

// Status mirrors the catalog's rooms.status column.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusClosed  Status = "closed"
)

// Broadcaster delivers a ROOM_UPDATE or GAME_STARTED notification to every
// player currently seated in a room. The lobby package supplies the
// concrete implementation backed by its client registry; room never learns
// about net.Conn or protocol.Message directly.
type Broadcaster interface {
	BroadcastRoomUpdate(roomID int64, currentPlayers int, usernames []string)
	BroadcastGameStarted(roomID int64, gamePort int, gameName string)
}

// Manager coordinates room transitions against the catalog store and fans
// out notifications through a Broadcaster.
type Manager struct {
	store   *catalog.Store
	bcast   Broadcaster
	metrics *metrics.RoomMetrics
}

// NewManager builds a Manager.
func NewManager(store *catalog.Store, bcast Broadcaster) *Manager {
	return &Manager{store: store, bcast: bcast}
}

// SetMetrics attaches a metrics registry; nil (the default) disables
// instrumentation so tests can construct a Manager without a registry.
func (m *Manager) SetMetrics(rm *metrics.RoomMetrics) {
	m.metrics = rm
}

// ErrRoomFull is returned when a room has no open seats.
var ErrRoomFull = fmt.Errorf("room: room is full")

// ErrNotWaiting is returned when an operation requires status=waiting.
var ErrNotWaiting = fmt.Errorf("room: room is not waiting")

// ErrAlreadyMember is returned by Join when the player already holds a
// seat; spec.md §4.6 treats this as an idempotent error.
var ErrAlreadyMember = fmt.Errorf("room: already a member")

// ErrNotHost is returned when a host-only operation is attempted by a
// non-host player.
var ErrNotHost = fmt.Errorf("room: caller is not the host")

// Create makes a new room and seats the host.
func (m *Manager) Create(ctx context.Context, gameID, hostID int64, name string, maxPlayers int) (*catalog.Room, error) {
	r, err := m.store.CreateRoom(ctx, gameID, hostID, name, maxPlayers)
	if err == nil && m.metrics != nil {
		m.metrics.RoomsCreatedTotal.WithLabelValues(strconv.FormatInt(gameID, 10)).Inc()
		m.metrics.RoomsActive.Inc()
	}
	return r, err
}

// Join seats a player in a room, broadcasting ROOM_UPDATE to every member
// afterward. The caller is expected to send ROOM_JOINED to the joiner
// before broadcasting begins, per spec.md §4.6 — Join returns control to
// the caller synchronously and does not itself send anything to the
// joiner.
func (m *Manager) Join(ctx context.Context, roomID, playerID int64) (*catalog.Room, error) {
	r, err := m.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r.Status != string(StatusWaiting) {
		m.countJoinFailure("not_waiting")
		return nil, ErrNotWaiting
	}

	players, err := m.store.GetRoomPlayers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(players) >= r.MaxPlayers {
		m.countJoinFailure("room_full")
		return nil, ErrRoomFull
	}
	for _, p := range players {
		if p.PlayerID == playerID {
			m.countJoinFailure("already_member")
			return nil, ErrAlreadyMember
		}
	}

	if err := m.store.JoinRoom(ctx, roomID, playerID); err != nil {
		if err == catalog.ErrDuplicate {
			m.countJoinFailure("already_member")
			return nil, ErrAlreadyMember
		}
		return nil, err
	}
	return r, nil
}

func (m *Manager) countJoinFailure(reason string) {
	if m.metrics != nil {
		m.metrics.RoomJoinFailures.WithLabelValues(reason).Inc()
	}
}

// BroadcastUpdate fans out the current membership of a room to all of its
// members. Callers invoke this after Join/Leave complete, separately from
// the synchronous response to the requester.
func (m *Manager) BroadcastUpdate(ctx context.Context, roomID int64) error {
	players, err := m.store.GetRoomPlayers(ctx, roomID)
	if err != nil {
		return err
	}
	usernames := make([]string, len(players))
	for i, p := range players {
		usernames[i] = p.Username
	}
	m.bcast.BroadcastRoomUpdate(roomID, len(players), usernames)
	return nil
}

// Leave removes a player from a room. If the leaver is the host, the room
// is closed (spec.md §4.6: "LEAVE_ROOM by host" → closed). The caller is
// responsible for calling BroadcastUpdate afterward.
func (m *Manager) Leave(ctx context.Context, roomID, playerID int64) error {
	r, err := m.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	if err := m.store.LeaveRoom(ctx, roomID, playerID); err != nil {
		return err
	}

	if playerID == r.HostID && r.Status == string(StatusWaiting) {
		if err := m.store.UpdateRoomStatus(ctx, roomID, string(StatusClosed), nil); err != nil {
			return err
		}
		if m.metrics != nil {
			m.metrics.RoomsClosedTotal.WithLabelValues("host_left").Inc()
			m.metrics.RoomsActive.Dec()
		}
	}
	return nil
}

// StartGame transitions a room to playing once the supervisor has returned
// a port, and broadcasts GAME_STARTED to every member.
func (m *Manager) StartGame(ctx context.Context, roomID, requesterID int64, gamePort int, gameName string) error {
	r, err := m.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if requesterID != r.HostID {
		return ErrNotHost
	}
	if r.Status != string(StatusWaiting) {
		return ErrNotWaiting
	}

	port := gamePort
	if err := m.store.UpdateRoomStatus(ctx, roomID, string(StatusPlaying), &port); err != nil {
		return err
	}

	m.bcast.BroadcastGameStarted(roomID, gamePort, gameName)
	return nil
}

// CloseOnChildExit closes a playing room whose supervised child process has
// exited, per spec.md §4.7's monitoring contract.
func (m *Manager) CloseOnChildExit(ctx context.Context, roomID int64) error {
	r, err := m.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if r.Status != string(StatusPlaying) {
		return nil
	}
	if err := m.store.UpdateRoomStatus(ctx, roomID, string(StatusClosed), nil); err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.RoomsClosedTotal.WithLabelValues("child_exit").Inc()
		m.metrics.RoomsActive.Dec()
	}
	return nil
}

// List returns the currently active rooms (waiting within 10 minutes, or
// playing).
func (m *Manager) List(ctx context.Context) ([]*catalog.Room, error) {
	return m.store.ListActiveRooms(ctx)
}
