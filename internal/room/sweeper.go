package room

import (
	"context"
	"log/slog"
	"time"
)

// sweepInterval and waitingTimeout match spec.md §4.8: a 60-second tick
// closing waiting rooms older than 10 minutes.
const (
	sweepInterval  = 60 * time.Second
	waitingTimeout = 10 * time.Minute
)

// Sweeper periodically closes stale waiting rooms.
type Sweeper struct {
	manager *Manager
	logger  *slog.Logger
}

// NewSweeper builds a Sweeper over manager.
func NewSweeper(manager *Manager, logger *slog.Logger) *Sweeper {
	return &Sweeper{manager: manager, logger: logger}
}

// Run blocks, ticking every sweepInterval, until ctx is canceled. Errors
// from a single tick are logged and swallowed so the sweeper never exits
// early, per spec.md §4.8.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	expired, err := s.manager.store.ListExpiredWaitingRooms(ctx)
	if err != nil {
		s.logger.Error("sweeper: list expired rooms failed", "error", err)
		return
	}

	for _, r := range expired {
		if err := s.manager.store.UpdateRoomStatus(ctx, r.ID, string(StatusClosed), nil); err != nil {
			s.logger.Error("sweeper: close expired room failed", "room_id", r.ID, "error", err)
			continue
		}
		s.logger.Info("sweeper: closed expired room", "room_id", r.ID, "room_code", r.RoomCode)
		if m := s.manager.metrics; m != nil {
			m.RoomExpirySweeps.Inc()
			m.RoomsClosedTotal.WithLabelValues("expired").Inc()
			m.RoomsActive.Dec()
		}
	}
}
