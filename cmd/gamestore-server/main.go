// Command gamestore-server runs the lobby and developer listeners, the
// game supervisor, and the room expiry sweeper as a single process, per
// SPEC_FULL.md §8 / spec.md §6.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kestrelgames/gamestore/internal/artifact"
	"github.com/kestrelgames/gamestore/internal/auth"
	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/internal/developer"
	"github.com/kestrelgames/gamestore/internal/lobby"
	"github.com/kestrelgames/gamestore/internal/room"
	"github.com/kestrelgames/gamestore/internal/supervisor"
	"github.com/kestrelgames/gamestore/internal/supervisorctl"
	"github.com/kestrelgames/gamestore/pkg/config"
	"github.com/kestrelgames/gamestore/pkg/database"
	"github.com/kestrelgames/gamestore/pkg/logging"
	"github.com/kestrelgames/gamestore/pkg/metrics"
	"google.golang.org/grpc"
)

var (
	version   string = "dev"
	buildTime string = "unknown"
	gitCommit string = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "configs/gamestore-server.yaml", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("gamestore-server\nVersion: %s\nBuild Time: %s\nGit Commit: %s\n", version, buildTime, gitCommit)
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerBasic("gamestore-server", cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	logger.Info("starting gamestore-server")

	metricsRegistry := metrics.NewRegistry("gamestore-server", version, buildTime, gitCommit, logger)
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		go func() {
			if err := metricsRegistry.StartMetricsServer(cfg.Metrics.Port); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
		logger.Info("metrics server starting", "port", cfg.Metrics.Port)
	}

	conn, err := database.Open(cfg.Database)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	store, err := catalog.Open(conn)
	if err != nil {
		logger.Error("failed to open catalog store", "error", err)
		os.Exit(1)
	}

	artifacts, err := artifact.NewStore(cfg.GamesDir)
	if err != nil {
		logger.Error("failed to open artifact store", "error", err)
		os.Exit(1)
	}

	authSvc := auth.NewService(store, auth.NewTokenIssuer(cfg.JWTSecret), cfg.PasswordSalt, cfg.SessionTimeoutDuration())

	// The supervisor's exit callback needs the lobby server's room manager,
	// which NewServer builds internally; lobbySrv is captured by reference
	// and assigned right after construction, before either listener accepts
	// a connection that could spawn a child.
	var lobbySrv *lobby.Server
	onExit := func(roomID int64, exitErr error) {
		if lobbySrv == nil {
			return
		}
		if err := lobbySrv.Rooms().CloseOnChildExit(context.Background(), roomID); err != nil {
			logger.Error("failed to close room after child exit", "room_id", roomID, "error", err)
		}
	}
	sup := supervisor.New(cfg.GameServerInterpreter, cfg.GamesDir, cfg.GameServerStartPort, logger, onExit)

	lobbySrv = lobby.NewServer(store, authSvc, artifacts, sup, logger)
	lobbySrv.SetMetrics(metricsRegistry)

	devSrv := developer.NewServer(store, authSvc, artifacts, cfg.TempDir, logger)
	devSrv.SetMetrics(metricsRegistry)

	sweeper := room.NewSweeper(lobbySrv.Rooms(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sweeper.Run(ctx)

	lobbyListener, lobbyPort, err := listenWithProbe(cfg.LobbyHost, cfg.LobbyPort, nil)
	if err != nil {
		logger.Error("failed to bind lobby listener", "error", err)
		os.Exit(1)
	}
	devListener, devPort, err := listenWithProbe(cfg.LobbyHost, cfg.DeveloperPort, map[int]bool{lobbyPort: true})
	if err != nil {
		logger.Error("failed to bind developer listener", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("lobby listener accepting connections", "port", lobbyPort)
		if err := lobbySrv.Serve(ctx, lobbyListener); err != nil {
			logger.Error("lobby listener stopped", "error", err)
		}
	}()
	go func() {
		logger.Info("developer listener accepting connections", "port", devPort)
		if err := devSrv.Serve(ctx, devListener); err != nil {
			logger.Error("developer listener stopped", "error", err)
		}
	}()

	var adminServer *grpc.Server
	if cfg.Admin != nil && cfg.Admin.GRPCPort > 0 {
		adminListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.LobbyHost, cfg.Admin.GRPCPort))
		if err != nil {
			logger.Error("failed to bind admin gRPC listener", "error", err)
			os.Exit(1)
		}
		adminServer = grpc.NewServer()
		supervisorctl.Register(adminServer, supervisorctl.NewService(sup, logger))
		go func() {
			logger.Info("admin gRPC server accepting connections", "port", cfg.Admin.GRPCPort)
			if err := adminServer.Serve(adminListener); err != nil {
				logger.Error("admin gRPC server stopped", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutting down gracefully...")

	cancel()
	sup.ShutdownAll()
	if adminServer != nil {
		adminServer.GracefulStop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsRegistry.StopMetricsServer(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// listenWithProbe binds host:preferred, falling back to the next
// config.PortProbeRange ports in sequence if the preferred port is taken or
// already claimed by another listener in this process (spec.md §6: "probes
// the next N=10 ports and prefers a different port for the second
// listener").
func listenWithProbe(host string, preferred int, reserved map[int]bool) (net.Listener, int, error) {
	var lastErr error
	for p := preferred; p <= preferred+config.PortProbeRange; p++ {
		if reserved[p] {
			continue
		}
		l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, p))
		if err == nil {
			return l, p, nil
		}
		lastErr = err
	}
	return nil, 0, fmt.Errorf("no free port in range %d-%d: %w", preferred, preferred+config.PortProbeRange, lastErr)
}
