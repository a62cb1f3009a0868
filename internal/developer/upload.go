package developer

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kestrelgames/gamestore/internal/artifact"
	"github.com/kestrelgames/gamestore/internal/protocol"
)

// uploadState tracks one in-flight upload for a connection, mirroring
// DeveloperServer.uploads[client_id] in handle_upload_start/_chunk/
// _complete.
type uploadState struct {
	mode string // "new" or "update"

	name        string
	description string
	version     string
	changelog   string
	minPlayers  int
	maxPlayers  int
	gameType    string

	gameID   int64
	gameName string

	expectedSize int64
	checksum     string
	receivedSize int64

	tempPath string
	file     *os.File
}

func (s *session) abortUpload() {
	if s.upload == nil {
		return
	}
	if s.upload.file != nil {
		s.upload.file.Close()
	}
	os.Remove(s.upload.tempPath)
	s.upload = nil
}

type uploadStartPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
	GameType    string `json:"game_type"`
	FileSize    int64  `json:"file_size"`
	Checksum    string `json:"checksum"`
}

func (s *session) handleUploadStart(ctx context.Context, msg *protocol.Message) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}
	var p uploadStartPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}
	if p.Name == "" || p.FileSize == 0 || p.Checksum == "" {
		return protocol.NewErrorMessage("missing required fields", 400)
	}

	games, err := s.srv.store.ListGamesByDeveloper(ctx, s.developerID)
	if err != nil {
		return protocol.NewErrorMessage("upload start failed", 500)
	}
	for _, g := range games {
		if g.Name == p.Name {
			return protocol.NewErrorMessage("game name already exists", 409)
		}
	}

	version := p.Version
	if version == "" {
		version = "1.0.0"
	}
	minPlayers, maxPlayers := p.MinPlayers, p.MaxPlayers
	if minPlayers == 0 {
		minPlayers = 2
	}
	if maxPlayers == 0 {
		maxPlayers = 2
	}
	gameType := p.GameType
	if gameType == "" {
		gameType = "cli"
	}

	tempPath, f, err := s.openTempSink(p.Name)
	if err != nil {
		return protocol.NewErrorMessage("failed to open upload sink", 500)
	}

	s.upload = &uploadState{
		mode:         "new",
		name:         p.Name,
		description:  p.Description,
		version:      version,
		changelog:    "Initial release",
		minPlayers:   minPlayers,
		maxPlayers:   maxPlayers,
		gameType:     gameType,
		expectedSize: p.FileSize,
		checksum:     p.Checksum,
		tempPath:     tempPath,
		file:         f,
	}

	resp, _ := protocol.NewMessage(protocol.UploadReady, map[string]any{
		"ready":         true,
		"expected_size": p.FileSize,
	})
	return resp
}

type updateGamePayload struct {
	GameID     int64  `json:"game_id"`
	NewVersion string `json:"new_version"`
	Changelog  string `json:"changelog"`
	FileSize   int64  `json:"file_size"`
	Checksum   string `json:"checksum"`
}

func (s *session) handleUpdateGame(ctx context.Context, msg *protocol.Message) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}
	var p updateGamePayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}

	game, err := s.srv.store.GetGame(ctx, p.GameID)
	if err != nil || game.DeveloperID != s.developerID {
		return protocol.NewErrorMessage("game not found or not owned by you", 404)
	}

	tempPath, f, err := s.openTempSink(fmt.Sprintf("update_%d_%s", p.GameID, p.NewVersion))
	if err != nil {
		return protocol.NewErrorMessage("failed to open upload sink", 500)
	}

	changelog := p.Changelog
	s.upload = &uploadState{
		mode:         "update",
		gameID:       p.GameID,
		gameName:     game.Name,
		version:      p.NewVersion,
		changelog:    changelog,
		expectedSize: p.FileSize,
		checksum:     p.Checksum,
		tempPath:     tempPath,
		file:         f,
	}

	resp, _ := protocol.NewMessage(protocol.UploadReady, map[string]any{
		"ready":         true,
		"expected_size": p.FileSize,
	})
	return resp
}

func (s *session) openTempSink(name string) (string, *os.File, error) {
	dir := filepath.Join(s.srv.tempDir, fmt.Sprint(s.developerID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, name+".zip")
	f, err := os.Create(path)
	if err != nil {
		return "", nil, err
	}
	return path, f, nil
}

type uploadChunkPayload struct {
	Offset int64  `json:"offset"`
	Data   string `json:"data"`
}

func (s *session) handleUploadChunk(msg *protocol.Message) *protocol.Message {
	if s.upload == nil {
		return protocol.NewErrorMessage("no upload in progress", 400)
	}
	var p uploadChunkPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}
	data, err := hex.DecodeString(p.Data)
	if err != nil {
		return protocol.NewErrorMessage("invalid chunk encoding", 400)
	}

	if s.upload.receivedSize+int64(len(data)) > s.upload.expectedSize {
		s.abortUpload()
		return protocol.NewErrorMessage("chunk exceeds expected upload size", 400)
	}

	if _, err := s.upload.file.Write(data); err != nil {
		s.abortUpload()
		return protocol.NewErrorMessage("failed to write chunk", 500)
	}
	s.upload.receivedSize += int64(len(data))

	progress := 0.0
	if s.upload.expectedSize > 0 {
		progress = float64(s.upload.receivedSize) / float64(s.upload.expectedSize) * 100
	}

	resp, _ := protocol.NewSuccessMessage(protocol.Success, map[string]any{
		"received": s.upload.receivedSize,
		"progress": progress,
	})
	return resp
}

func (s *session) handleUploadComplete(ctx context.Context) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}
	if s.upload == nil {
		return protocol.NewErrorMessage("no upload in progress", 400)
	}
	u := s.upload

	u.file.Close()
	u.file = nil

	checksum, err := artifact.Checksum(u.tempPath)
	if err != nil || checksum != u.checksum {
		if s.srv.metrics != nil {
			s.srv.metrics.Catalog.ChecksumMismatches.WithLabelValues(u.mode).Inc()
		}
		s.abortUpload()
		return protocol.NewErrorMessage("checksum mismatch - file corrupted", 400)
	}

	if u.mode == "update" {
		return s.finalizeUpdate(ctx, u)
	}
	return s.finalizeNewUpload(ctx, u)
}

func (s *session) finalizeNewUpload(ctx context.Context, u *uploadState) *protocol.Message {
	gameID, err := s.srv.store.CreateGame(ctx, u.name, u.description, s.developerID, u.version, u.minPlayers, u.maxPlayers, u.gameType)
	if err != nil {
		s.abortUpload()
		return protocol.NewErrorMessage("failed to create game entry", 500)
	}

	if err := s.finalizePackage(ctx, gameID, u); err != nil {
		s.abortUpload()
		return protocol.NewErrorMessage("failed to finalize upload: "+err.Error(), 500)
	}
	s.recordUploadMetrics("new", u)
	s.upload = nil

	resp, _ := protocol.NewMessage(protocol.UploadSuccess, map[string]any{
		"game_id": gameID,
		"message": fmt.Sprintf("Game '%s' uploaded successfully", u.name),
	})
	return resp
}

func (s *session) finalizeUpdate(ctx context.Context, u *uploadState) *protocol.Message {
	game, err := s.srv.store.GetGame(ctx, u.gameID)
	if err != nil || game.DeveloperID != s.developerID {
		s.abortUpload()
		return protocol.NewErrorMessage("game not found or not owned by you", 404)
	}

	if err := s.finalizePackage(ctx, u.gameID, u); err != nil {
		s.abortUpload()
		return protocol.NewErrorMessage("failed to finalize update: "+err.Error(), 500)
	}
	if err := s.srv.store.UpdateGameVersion(ctx, u.gameID, u.version); err != nil {
		s.abortUpload()
		return protocol.NewErrorMessage("failed to update game version", 500)
	}
	s.recordUploadMetrics("update", u)
	s.upload = nil

	resp, _ := protocol.NewMessage(protocol.UpdateSuccess, map[string]any{
		"game_id": u.gameID,
		"message": fmt.Sprintf("Game '%s' updated to %s", game.Name, u.version),
	})
	return resp
}

func (s *session) recordUploadMetrics(kind string, u *uploadState) {
	if s.srv.metrics == nil {
		return
	}
	s.srv.metrics.Catalog.VersionsPublished.WithLabelValues(kind).Inc()
	s.srv.metrics.Catalog.UploadBytesTotal.WithLabelValues(kind).Add(float64(u.receivedSize))
	if kind == "new" {
		s.srv.metrics.Catalog.GamesPublishedTotal.WithLabelValues(u.gameType).Inc()
	}
}

// finalizePackage moves the verified temp file into permanent storage,
// extracts it, repoints "current", and records the version row.
func (s *session) finalizePackage(ctx context.Context, gameID int64, u *uploadState) error {
	if err := s.srv.artifacts.StorePackage(gameID, u.version, u.tempPath); err != nil {
		return err
	}

	fileSize := u.receivedSize
	if _, err := s.srv.store.AddGameVersion(ctx, gameID, u.version, u.changelog,
		s.srv.artifacts.PackagePath(gameID, u.version), fileSize, u.checksum); err != nil {
		return err
	}
	return nil
}

type removeGamePayload struct {
	GameID int64 `json:"game_id"`
}

func (s *session) handleRemoveGame(ctx context.Context, msg *protocol.Message) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}
	var p removeGamePayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}

	game, err := s.srv.store.GetGame(ctx, p.GameID)
	if err != nil || game.DeveloperID != s.developerID {
		return protocol.NewErrorMessage("game not found or not owned by you", 404)
	}

	if err := s.srv.store.UpdateGameStatus(ctx, p.GameID, "inactive"); err != nil {
		return protocol.NewErrorMessage("failed to remove game", 500)
	}

	resp, _ := protocol.NewMessage(protocol.RemoveSuccess, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Game '%s' has been removed", game.Name),
	})
	return resp
}
