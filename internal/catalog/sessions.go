package catalog

import (
	"context"
	"fmt"
	"time"
)

// CreateDeveloperSession stores a session token for a developer with the
// given lifetime.
func (s *Store) CreateDeveloperSession(ctx context.Context, developerID int64, token string, ttl time.Duration) error {
	_, err := s.exec(ctx,
		`INSERT INTO developer_sessions (developer_id, session_token, expires_at) VALUES (?, ?, ?)`,
		developerID, token, nowUTC().Add(ttl))
	if err != nil {
		return fmt.Errorf("catalog: create developer session: %w", err)
	}
	return nil
}

// ValidateDeveloperSession returns the developer for an unexpired token.
func (s *Store) ValidateDeveloperSession(ctx context.Context, token string) (*Developer, error) {
	row := s.queryRow(ctx,
		`SELECT d.id, d.username, d.password_hash, COALESCE(d.email, ''), d.created_at, d.last_login
		 FROM developer_sessions s JOIN developers d ON s.developer_id = d.id
		 WHERE s.session_token = ? AND s.expires_at > ?`, token, nowUTC())
	return scanDeveloper(row)
}

// DeleteDeveloperSession removes a developer session token.
func (s *Store) DeleteDeveloperSession(ctx context.Context, token string) error {
	_, err := s.exec(ctx, `DELETE FROM developer_sessions WHERE session_token = ?`, token)
	return err
}

// CreatePlayerSession stores a session token for a player with the given
// lifetime.
func (s *Store) CreatePlayerSession(ctx context.Context, playerID int64, token string, ttl time.Duration) error {
	_, err := s.exec(ctx,
		`INSERT INTO player_sessions (player_id, session_token, expires_at) VALUES (?, ?, ?)`,
		playerID, token, nowUTC().Add(ttl))
	if err != nil {
		return fmt.Errorf("catalog: create player session: %w", err)
	}
	return nil
}

// ValidatePlayerSession returns the player for an unexpired token.
func (s *Store) ValidatePlayerSession(ctx context.Context, token string) (*Player, error) {
	row := s.queryRow(ctx,
		`SELECT p.id, p.username, p.password_hash, COALESCE(p.email, ''), p.created_at, p.last_login
		 FROM player_sessions s JOIN players p ON s.player_id = p.id
		 WHERE s.session_token = ? AND s.expires_at > ?`, token, nowUTC())
	return scanPlayer(row)
}

// DeletePlayerSession removes a player session token.
func (s *Store) DeletePlayerSession(ctx context.Context, token string) error {
	_, err := s.exec(ctx, `DELETE FROM player_sessions WHERE session_token = ?`, token)
	return err
}
