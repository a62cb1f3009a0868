// Package supervisorctl is the internal, disabled-by-default gRPC admin
// surface over the game supervisor (SPEC_FULL.md §5.7.1): list running
// child processes, stop one by room, report supervisor health. It exists so
// an operator can inspect and intervene in spawned game servers without
// going through a player session.
package supervisorctl

import (
	"context"
	"log/slog"

	"github.com/kestrelgames/gamestore/internal/supervisor"
	"google.golang.org/grpc"
)

// Service implements Handler over a *supervisor.Supervisor.
type Service struct {
	sup *supervisor.Supervisor
	log *slog.Logger
}

// NewService builds a Service.
func NewService(sup *supervisor.Supervisor, log *slog.Logger) *Service {
	return &Service{sup: sup, log: log}
}

// Register attaches Service to a grpc.Server under ServiceDesc.
func Register(gs *grpc.Server, svc *Service) {
	gs.RegisterService(&ServiceDesc, svc)
}

// ListRunning reports every room currently bound to a running child.
func (s *Service) ListRunning(_ context.Context, _ *ListRunningRequest) (*ListRunningResponse, error) {
	entries := make([]RunningEntry, 0)
	for _, roomID := range s.sup.ListRunning() {
		if port, gameID, ok := s.sup.Info(roomID); ok {
			entries = append(entries, RunningEntry{RoomID: roomID, GameID: gameID, Port: port})
		}
	}
	return &ListRunningResponse{Entries: entries}, nil
}

// StopRoom force-stops the child bound to req.RoomID, if any.
func (s *Service) StopRoom(_ context.Context, req *StopRoomRequest) (*StopRoomResponse, error) {
	if err := s.sup.Stop(req.RoomID); err != nil {
		s.log.Warn("supervisorctl: stop room failed", "room_id", req.RoomID, "error", err)
		return &StopRoomResponse{Stopped: false, Error: err.Error()}, nil
	}
	return &StopRoomResponse{Stopped: true}, nil
}

// Health reports the supervisor's own liveness (it has none to fail; this
// always reports healthy while the process is up) alongside current load.
func (s *Service) Health(_ context.Context, _ *HealthRequest) (*HealthResponse, error) {
	return &HealthResponse{Healthy: true, RunningCount: len(s.sup.ListRunning())}, nil
}
