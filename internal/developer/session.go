// Package developer implements the developer-facing listener: account
// auth, game ownership listing, and the chunked upload/update/remove
// pipeline. Grounded on developer_server.py's DeveloperServer and
// spec.md §4.5.
package developer

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
	"github.com/kestrelgames/gamestore/pkg/metrics"
)

// Server owns the developer listener's shared dependencies.
type Server struct {
	store     *catalog.Store
	auth      *auth.Service
	artifacts *artifact.Store
	tempDir   string
	logger    *slog.Logger
	metrics   *metrics.Registry
}

// NewServer builds a Server.
func NewServer(store *catalog.Store, authSvc *auth.Service, artifacts *artifact.Store, tempDir string, logger *slog.Logger) *Server {
	return &Server{store: store, auth: authSvc, artifacts: artifacts, tempDir: tempDir, logger: logger}
}

// SetMetrics attaches a metrics registry and propagates the auth family;
// nil (the default) disables instrumentation so tests can construct a
// Server without a registry.
func (srv *Server) SetMetrics(m *metrics.Registry) {
	srv.metrics = m
	if m != nil {
		srv.auth.SetMetrics(m.Auth)
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
		sess := &session{
			srv:  srv,
			conn: protocol.NewConn(nc),
			log:  srv.logger.With("remote_addr", nc.RemoteAddr().String()),
		}
		go sess.run(ctx)
	}
}

// session drives one accepted developer connection.
type session struct {
	srv  *Server
	conn *protocol.Conn
	log  *slog.Logger

	developerID int64
	username    string
	authed      bool

	upload *uploadState
}

func (s *session) run(ctx context.Context) {
	defer s.conn.Close()
	defer s.abortUpload()

	for {
		msg, err := s.conn.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debug("developer: connection closed", "error", err)
			}
			return
		}

		resp := s.dispatch(ctx, msg)
		if resp == nil {
			continue
		}
		if err := s.conn.Write(resp); err != nil {
			s.log.Debug("developer: write failed", "error", err)
			return
		}
	}
}

func (s *session) dispatch(ctx context.Context, msg *protocol.Message) *protocol.Message {
	switch msg.Type {
	case protocol.AuthRequest:
		return s.handleAuth(ctx, msg)
	case protocol.RegisterRequest:
		return s.handleRegister(ctx, msg)
	case protocol.MyGamesRequest:
		return s.handleMyGames(ctx)
	case protocol.UploadStart:
		return s.handleUploadStart(ctx, msg)
	case protocol.UploadChunk:
		return s.handleUploadChunk(msg)
	case protocol.UploadComplete:
		return s.handleUploadComplete(ctx)
	case protocol.UpdateGame:
		return s.handleUpdateGame(ctx, msg)
	case protocol.RemoveGame:
		return s.handleRemoveGame(ctx, msg)
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
