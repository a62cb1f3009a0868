package lobby

import (
	"context"
	"strings"

	"github.com/kestrelgames/gamestore/internal/protocol"
	"github.com/kestrelgames/gamestore/internal/room"
)

type createRoomPayload struct {
	GameID     int64  `json:"game_id"`
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
}

func (s *session) handleCreateRoom(ctx context.Context, msg *protocol.Message) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}
	var p createRoomPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}

	r, err := s.srv.rooms.Create(ctx, p.GameID, s.playerID, p.Name, p.MaxPlayers)
	if err != nil {
		return protocol.NewErrorMessage("failed to create room", 500)
	}

	resp, _ := protocol.NewMessage(protocol.RoomCreated, map[string]any{
		"room_id":     r.ID,
		"room_code":   r.RoomCode,
		"name":        r.Name,
		"max_players": r.MaxPlayers,
	})
	return resp
}

type joinRoomPayload struct {
	RoomID   int64  `json:"room_id"`
	RoomCode string `json:"room_code"`
}

func (s *session) handleJoinRoom(ctx context.Context, msg *protocol.Message) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}
	var p joinRoomPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}

	roomID := p.RoomID
	if roomID == 0 && p.RoomCode != "" {
		r, err := s.srv.store.GetRoomByCode(ctx, strings.ToUpper(p.RoomCode))
		if err != nil {
			return protocol.NewErrorMessage("room not found", 404)
		}
		roomID = r.ID
	}

	r, err := s.srv.rooms.Join(ctx, roomID, s.playerID)
	if err != nil {
		return joinErrorMessage(err)
	}

	resp, _ := protocol.NewMessage(protocol.RoomJoined, map[string]any{
		"success": true,
		"room_id": r.ID,
	})

	// ROOM_JOINED is returned to the joiner synchronously before the
	// broadcast begins, per spec.md §4.6.
	go func() {
		if err := s.srv.rooms.BroadcastUpdate(context.Background(), r.ID); err != nil {
			s.log.Error("lobby: room update broadcast failed", "room_id", r.ID, "error", err)
		}
	}()

	return resp
}

func joinErrorMessage(err error) *protocol.Message {
	switch err {
	case room.ErrRoomFull:
		return protocol.NewErrorMessage("room is full", 409)
	case room.ErrNotWaiting:
		return protocol.NewErrorMessage("room is not accepting players", 409)
	case room.ErrAlreadyMember:
		return protocol.NewErrorMessage("already a member of this room", 409)
	default:
		return protocol.NewErrorMessage("room not found", 404)
	}
}

type leaveRoomPayload struct {
	RoomID int64 `json:"room_id"`
}

func (s *session) handleLeaveRoom(ctx context.Context, msg *protocol.Message) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}
	var p leaveRoomPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}

	if err := s.srv.rooms.Leave(ctx, p.RoomID, s.playerID); err != nil {
		return protocol.NewErrorMessage("failed to leave room", 500)
	}

	go func() {
		if err := s.srv.rooms.BroadcastUpdate(context.Background(), p.RoomID); err != nil {
			s.log.Error("lobby: room update broadcast failed", "room_id", p.RoomID, "error", err)
		}
	}()

	resp, _ := protocol.NewSuccessMessage(protocol.Success, map[string]any{"success": true})
	return resp
}

func (s *session) handleRoomList(ctx context.Context) *protocol.Message {
	rooms, err := s.srv.rooms.List(ctx)
	if err != nil {
		return protocol.NewErrorMessage("failed to list rooms", 500)
	}

	out := make([]map[string]any, len(rooms))
	for i, r := range rooms {
		out[i] = map[string]any{
			"room_id":     r.ID,
			"room_code":   r.RoomCode,
			"name":        r.Name,
			"game_id":     r.GameID,
			"game_name":   r.GameName,
			"host_name":   r.HostName,
			"max_players": r.MaxPlayers,
			"status":      r.Status,
		}
	}
	resp, _ := protocol.NewMessage(protocol.RoomListResponse, map[string]any{"rooms": out})
	return resp
}

type startGamePayload struct {
	RoomID int64 `json:"room_id"`
}

func (s *session) handleStartGame(ctx context.Context, msg *protocol.Message) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}
	var p startGamePayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}

	r, err := s.srv.store.GetRoom(ctx, p.RoomID)
	if err != nil {
		return protocol.NewErrorMessage("room not found", 404)
	}
	if r.HostID != s.playerID {
		return protocol.NewErrorMessage("only the host can start the game", 403)
	}

	players, err := s.srv.store.GetRoomPlayers(ctx, p.RoomID)
	if err != nil {
		return protocol.NewErrorMessage("failed to load room players", 500)
	}
	usernames := make([]string, len(players))
	for i, pl := range players {
		usernames[i] = pl.Username
	}

	game, err := s.srv.store.GetGame(ctx, r.GameID)
	if err != nil {
		return protocol.NewErrorMessage("game not found", 404)
	}

	port, err := s.srv.supervisor.Spawn(ctx, r.ID, r.GameID, game.Name, "", usernames)
	if err != nil {
		return protocol.NewErrorMessage("failed to start game server: "+err.Error(), 500)
	}

	if err := s.srv.rooms.StartGame(ctx, r.ID, s.playerID, port, game.Name); err != nil {
		return protocol.NewErrorMessage("failed to start game", 500)
	}

	resp, _ := protocol.NewSuccessMessage(protocol.Success, map[string]any{
		"game_port": port,
		"room_id":   r.ID,
	})
	return resp
}
