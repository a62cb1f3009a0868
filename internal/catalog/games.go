package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateGame inserts a new game row with its initial version string.
func (s *Store) CreateGame(ctx context.Context, name, description string, developerID int64, version string, minPlayers, maxPlayers int, gameType string) (int64, error) {
	if gameType == "" {
		gameType = "cli"
	}
	res, err := s.exec(ctx,
		`INSERT INTO games (name, description, developer_id, current_version, min_players, max_players, game_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, description, developerID, version, minPlayers, maxPlayers, gameType)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("catalog: create game: %w", err)
	}
	return res.LastInsertId()
}

// GetGame fetches a game by ID.
func (s *Store) GetGame(ctx context.Context, id int64) (*Game, error) {
	row := s.queryRow(ctx, gameSelect+` WHERE id = ?`, id)
	return scanGame(row)
}

// ListActiveGames returns active games ordered by download count, matching
// get_active_games's ordering.
func (s *Store) ListActiveGames(ctx context.Context) ([]*Game, error) {
	rows, err := s.query(ctx, gameSelect+` WHERE status = 'active' ORDER BY download_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list active games: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// SearchGames returns active games whose name or description matches query
// (case-insensitive substring), supplementing spec.md's SEARCH_GAMES tag.
func (s *Store) SearchGames(ctx context.Context, query string) ([]*Game, error) {
	like := "%" + query + "%"
	rows, err := s.query(ctx,
		gameSelect+` WHERE status = 'active' AND (name LIKE ? OR description LIKE ?) ORDER BY download_count DESC`,
		like, like)
	if err != nil {
		return nil, fmt.Errorf("catalog: search games: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// ListGamesByDeveloper returns a developer's games, newest first.
func (s *Store) ListGamesByDeveloper(ctx context.Context, developerID int64) ([]*Game, error) {
	rows, err := s.query(ctx, gameSelect+` WHERE developer_id = ? ORDER BY created_at DESC`, developerID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list games by developer: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// UpdateGameStatus toggles a game between active and inactive.
func (s *Store) UpdateGameStatus(ctx context.Context, gameID int64, status string) error {
	_, err := s.exec(ctx, `UPDATE games SET status = ?, updated_at = ? WHERE id = ?`, status, nowUTC(), gameID)
	return err
}

// UpdateGameVersion points a game's current_version at a newly published
// version.
func (s *Store) UpdateGameVersion(ctx context.Context, gameID int64, version string) error {
	_, err := s.exec(ctx, `UPDATE games SET current_version = ?, updated_at = ? WHERE id = ?`, version, nowUTC(), gameID)
	return err
}

// IncrementDownloadCount bumps a game's download_count by one.
func (s *Store) IncrementDownloadCount(ctx context.Context, gameID int64) error {
	_, err := s.exec(ctx, `UPDATE games SET download_count = download_count + 1 WHERE id = ?`, gameID)
	return err
}

const gameSelect = `SELECT id, name, COALESCE(description, ''), developer_id, current_version,
	min_players, max_players, game_type, status, download_count, average_rating, rating_count,
	created_at, updated_at FROM games`

func scanGame(row *sql.Row) (*Game, error) {
	var g Game
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.DeveloperID, &g.CurrentVersion,
		&g.MinPlayers, &g.MaxPlayers, &g.GameType, &g.Status, &g.DownloadCount,
		&g.AverageRating, &g.RatingCount, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func scanGames(rows *sql.Rows) ([]*Game, error) {
	var games []*Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.DeveloperID, &g.CurrentVersion,
			&g.MinPlayers, &g.MaxPlayers, &g.GameType, &g.Status, &g.DownloadCount,
			&g.AverageRating, &g.RatingCount, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		games = append(games, &g)
	}
	return games, rows.Err()
}

// AddGameVersion inserts a new version row for a game.
func (s *Store) AddGameVersion(ctx context.Context, gameID int64, version, changelog, filePath string, fileSize int64, checksum string) (int64, error) {
	res, err := s.exec(ctx,
		`INSERT INTO game_versions (game_id, version, changelog, file_path, file_size, checksum)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		gameID, version, changelog, filePath, fileSize, checksum)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("catalog: add game version: %w", err)
	}
	return res.LastInsertId()
}

// GetGameVersion fetches a specific version of a game.
func (s *Store) GetGameVersion(ctx context.Context, gameID int64, version string) (*GameVersion, error) {
	row := s.queryRow(ctx,
		`SELECT id, game_id, version, COALESCE(changelog, ''), file_path, file_size, checksum, created_at
		 FROM game_versions WHERE game_id = ? AND version = ?`, gameID, version)
	return scanGameVersion(row)
}

// GetLatestVersion fetches the most recently created version row for a
// game.
func (s *Store) GetLatestVersion(ctx context.Context, gameID int64) (*GameVersion, error) {
	row := s.queryRow(ctx,
		`SELECT id, game_id, version, COALESCE(changelog, ''), file_path, file_size, checksum, created_at
		 FROM game_versions WHERE game_id = ? ORDER BY created_at DESC LIMIT 1`, gameID)
	return scanGameVersion(row)
}

func scanGameVersion(row *sql.Row) (*GameVersion, error) {
	var v GameVersion
	if err := row.Scan(&v.ID, &v.GameID, &v.Version, &v.Changelog, &v.FilePath, &v.FileSize, &v.Checksum, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// RecordDownload logs a download and increments the game's download
// counter, matching record_download's combined effect.
func (s *Store) RecordDownload(ctx context.Context, gameID, playerID int64, version string) error {
	s.writeMu.Lock()
	_, err := s.db.Writer().ExecContext(ctx, s.rebind(
		`INSERT INTO downloads (game_id, player_id, version) VALUES (?, ?, ?)`),
		gameID, playerID, version)
	if err == nil {
		_, err = s.db.Writer().ExecContext(ctx, s.rebind(
			`UPDATE games SET download_count = download_count + 1 WHERE id = ?`), gameID)
	}
	s.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("catalog: record download: %w", err)
	}
	return nil
}

// GetPlayerDownloads returns a player's download history, newest first.
func (s *Store) GetPlayerDownloads(ctx context.Context, playerID int64) ([]*Download, error) {
	rows, err := s.query(ctx,
		`SELECT id, game_id, player_id, version, downloaded_at FROM downloads
		 WHERE player_id = ? ORDER BY downloaded_at DESC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("catalog: get player downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*Download
	for rows.Next() {
		var d Download
		if err := rows.Scan(&d.ID, &d.GameID, &d.PlayerID, &d.Version, &d.DownloadedAt); err != nil {
			return nil, err
		}
		downloads = append(downloads, &d)
	}
	return downloads, rows.Err()
}
