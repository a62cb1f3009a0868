package lobby

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/kestrelgames/gamestore/internal/artifact"
	"github.com/kestrelgames/gamestore/internal/auth"
	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/internal/protocol"
	"github.com/kestrelgames/gamestore/internal/room"
	"github.com/kestrelgames/gamestore/internal/supervisor"
	"github.com/kestrelgames/gamestore/pkg/metrics"
)

// Server owns the lobby listener's shared dependencies and accepts
// connections, handing each one to a new Session.
type Server struct {
	store      *catalog.Store
	auth       *auth.Service
	artifacts  *artifact.Store
	rooms      *room.Manager
	supervisor *supervisor.Supervisor
	registry   *Registry
	logger     *slog.Logger
	metrics    *metrics.Registry
}

// SetMetrics attaches a metrics registry and propagates its component
// families to auth, rooms, and the supervisor; nil (the default) disables
// instrumentation so tests can construct a Server without a registry.
func (srv *Server) SetMetrics(m *metrics.Registry) {
	srv.metrics = m
	if m == nil {
		return
	}
	srv.auth.SetMetrics(m.Auth)
	srv.rooms.SetMetrics(m.Room)
	if srv.supervisor != nil {
		srv.supervisor.SetMetrics(m.Room)
	}
}

// Rooms exposes the room manager so the owning process can wire the game
// supervisor's exit callback back into room lifecycle handling; the manager
// itself is built inside NewServer since it shares the lobby's broadcaster.
func (srv *Server) Rooms() *room.Manager {
	return srv.rooms
}

// NewServer builds a Server over the given dependencies.
func NewServer(store *catalog.Store, authSvc *auth.Service, artifacts *artifact.Store, sup *supervisor.Supervisor, logger *slog.Logger) *Server {
	registry := NewRegistry()
	bcast := newBroadcaster(registry, store, logger)
	return &Server{
		store:      store,
		auth:       authSvc,
		artifacts:  artifacts,
		rooms:      room.NewManager(store, bcast),
		supervisor: sup,
		registry:   registry,
		logger:     logger,
	}
}

// Serve accepts connections on listener until ctx is canceled.
func (srv *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		nc, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if srv.metrics != nil {
			srv.metrics.Room.ConnectionsActive.WithLabelValues("lobby").Inc()
		}
		sess := &session{
			srv:  srv,
			conn: protocol.NewConn(nc),
			log:  srv.logger.With("remote_addr", nc.RemoteAddr().String()),
		}
		go sess.run(ctx)
	}
}

// session drives one accepted connection's read-dispatch-respond loop.
type session struct {
	srv  *Server
	conn *protocol.Conn
	log  *slog.Logger

	playerID int64
	username string
	authed   bool
}

func (s *session) run(ctx context.Context) {
	defer s.conn.Close()
	defer func() {
		if s.authed {
			s.srv.registry.Remove(s.playerID, s.conn)
		}
		if s.srv.metrics != nil {
			s.srv.metrics.Room.ConnectionsActive.WithLabelValues("lobby").Dec()
		}
	}()

	for {
		msg, err := s.conn.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debug("lobby: connection closed", "error", err)
			}
			return
		}

		resp := s.dispatch(ctx, msg)
		if resp == nil {
			continue
		}
		if err := s.conn.Write(resp); err != nil {
			s.log.Debug("lobby: write failed", "error", err)
			return
		}
	}
}

// dispatch routes one request to its handler. Handlers that stream
// multiple frames themselves (download) write directly to s.conn and
// return nil so run() doesn't also send a computed response.
func (s *session) dispatch(ctx context.Context, msg *protocol.Message) *protocol.Message {
	switch msg.Type {
	case protocol.AuthRequest:
		return s.handleAuth(ctx, msg)
	case protocol.RegisterRequest:
		return s.handleRegister(ctx, msg)
	case protocol.Logout:
		return s.handleLogout(ctx)
	case protocol.GameListRequest:
		return s.handleGameList(ctx)
	case protocol.SearchGames:
		return s.handleSearchGames(ctx, msg)
	case protocol.GameDetailRequest:
		return s.handleGameDetail(ctx, msg)
	case protocol.DownloadRequest:
		s.handleDownload(ctx, msg)
		return nil
	case protocol.CheckUpdate:
		return s.handleCheckUpdate(ctx, msg)
	case protocol.CreateRoom:
		return s.handleCreateRoom(ctx, msg)
	case protocol.JoinRoom:
		return s.handleJoinRoom(ctx, msg)
	case protocol.LeaveRoom:
		return s.handleLeaveRoom(ctx, msg)
	case protocol.RoomListRequest:
		return s.handleRoomList(ctx)
	case protocol.StartGameRequest:
		return s.handleStartGame(ctx, msg)
	case protocol.SubmitReview:
		return s.handleSubmitReview(ctx, msg)
	case protocol.GetReviews:
		return s.handleGetReviews(ctx, msg)
	case protocol.Heartbeat:
		hb, _ := protocol.NewMessage(protocol.Heartbeat, nil)
		return hb
	default:
		return protocol.NewErrorMessage("unknown message type "+msg.Type.String(), 400)
	}
}

func (s *session) requireAuth() *protocol.Message {
	if !s.authed {
		return protocol.NewErrorMessage("not authenticated", 401)
	}
	return nil
}
