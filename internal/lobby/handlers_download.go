package lobby

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kestrelgames/gamestore/internal/protocol"
)

// downloadChunkSize bounds each DOWNLOAD_CHUNK payload, per spec.md §4.4
// ("≤ 8 KiB per chunk").
const downloadChunkSize = 8 * 1024

type downloadRequestPayload struct {
	GameID  int64  `json:"game_id"`
	Version string `json:"version"`
}

// handleDownload streams a game package over the same connection in three
// phases (META, zero or more CHUNK, COMPLETE), writing directly to the
// connection since this is not a single request/response exchange.
func (s *session) handleDownload(ctx context.Context, msg *protocol.Message) {
	if !s.authed {
		_ = s.conn.Write(protocol.NewErrorMessage("not authenticated", 401))
		return
	}

	var p downloadRequestPayload
	if err := msg.Decode(&p); err != nil {
		_ = s.conn.Write(protocol.NewErrorMessage("invalid request body", 400))
		return
	}

	game, err := s.srv.store.GetGame(ctx, p.GameID)
	if err != nil {
		_ = s.conn.Write(protocol.NewErrorMessage("game not found", 404))
		return
	}

	version := p.Version
	if version == "" {
		version = game.CurrentVersion
	}

	gv, err := s.srv.store.GetGameVersion(ctx, p.GameID, version)
	if err != nil {
		_ = s.conn.Write(protocol.NewErrorMessage("version not found", 404))
		return
	}

	meta, err := protocol.NewMessage(protocol.DownloadMeta, map[string]any{
		"game_id":   game.ID,
		"game_name": game.Name,
		"version":   gv.Version,
		"file_size": gv.FileSize,
		"checksum":  gv.Checksum,
	})
	if err != nil {
		_ = s.conn.Write(protocol.NewErrorMessage("failed to prepare download", 500))
		return
	}
	if err := s.conn.Write(meta); err != nil {
		return
	}

	packagePath := s.srv.artifacts.PackagePath(p.GameID, gv.Version)
	f, err := os.Open(packagePath)
	if err != nil {
		_ = s.conn.Write(protocol.NewErrorMessage("package unavailable", 500))
		return
	}
	defer f.Close()

	start := time.Now()
	sent, err := s.streamChunks(f)
	if err != nil {
		_ = s.conn.Write(protocol.NewErrorMessage("download failed: "+err.Error(), 500))
		return
	}

	complete, _ := protocol.NewMessage(protocol.DownloadComplete, map[string]any{
		"success":    true,
		"bytes_sent": sent,
	})
	if err := s.conn.Write(complete); err != nil {
		return
	}

	if err := s.srv.store.RecordDownload(ctx, p.GameID, s.playerID, gv.Version); err != nil {
		s.log.Error("lobby: record download failed", "game_id", p.GameID, "error", err)
	}

	if s.srv.metrics != nil {
		gameID := strconv.FormatInt(p.GameID, 10)
		s.srv.metrics.Catalog.DownloadsTotal.WithLabelValues(gameID).Inc()
		s.srv.metrics.Catalog.DownloadBytesTotal.WithLabelValues(gameID).Add(float64(sent))
		s.srv.metrics.Catalog.DownloadDuration.WithLabelValues(gameID).Observe(time.Since(start).Seconds())
	}
}

func (s *session) streamChunks(f *os.File) (int64, error) {
	buf := make([]byte, downloadChunkSize)
	var offset int64

	for {
		n, err := f.Read(buf)
		if n > 0 {
			chunk, encErr := protocol.NewMessage(protocol.DownloadChunk, map[string]any{
				"offset": offset,
				"data":   hex.EncodeToString(buf[:n]),
			})
			if encErr != nil {
				return offset, encErr
			}
			if writeErr := s.conn.Write(chunk); writeErr != nil {
				return offset, writeErr
			}
			offset += int64(n)
		}
		if err == io.EOF {
			return offset, nil
		}
		if err != nil {
			return offset, err
		}
	}
}
