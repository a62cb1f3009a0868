package lobby

import (
	"context"
	"log/slog"

	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/internal/protocol"
)

// broadcaster implements room.Broadcaster over the lobby's client registry,
// looking up room membership from the catalog at broadcast time so it
// reflects the latest joins/leaves.
type broadcaster struct {
	registry *Registry
	store    *catalog.Store
	logger   *slog.Logger
}

func newBroadcaster(registry *Registry, store *catalog.Store, logger *slog.Logger) *broadcaster {
	return &broadcaster{registry: registry, store: store, logger: logger}
}

// BroadcastRoomUpdate sends ROOM_UPDATE to every connected member of
// roomID. usernames/currentPlayers are accepted from the caller so it
// doesn't need to re-derive them, but membership (who to send to) is
// re-fetched here since usernames alone don't carry player IDs.
func (b *broadcaster) BroadcastRoomUpdate(roomID int64, currentPlayers int, usernames []string) {
	ctx := context.Background()
	players, err := b.store.GetRoomPlayers(ctx, roomID)
	if err != nil {
		b.logger.Error("lobby: broadcast room update failed", "room_id", roomID, "error", err)
		return
	}

	msg, err := protocol.NewMessage(protocol.RoomUpdate, map[string]any{
		"room_id":         roomID,
		"current_players": currentPlayers,
		"players":         usernames,
	})
	if err != nil {
		b.logger.Error("lobby: encode room update failed", "error", err)
		return
	}
	for _, p := range players {
		b.registry.Send(p.PlayerID, msg)
	}
}

// BroadcastGameStarted sends GAME_STARTED to every connected member of
// roomID.
func (b *broadcaster) BroadcastGameStarted(roomID int64, gamePort int, gameName string) {
	ctx := context.Background()
	players, err := b.store.GetRoomPlayers(ctx, roomID)
	if err != nil {
		b.logger.Error("lobby: broadcast game started failed", "room_id", roomID, "error", err)
		return
	}

	msg, err := protocol.NewMessage(protocol.GameStarted, map[string]any{
		"room_id":   roomID,
		"game_port": gamePort,
		"game_name": gameName,
	})
	if err != nil {
		b.logger.Error("lobby: encode game started failed", "error", err)
		return
	}
	for _, p := range players {
		b.registry.Send(p.PlayerID, msg)
	}
}
