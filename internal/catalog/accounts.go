package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateDeveloper inserts a developer account with an already-hashed
// password, returning ErrDuplicate if the username is taken.
func (s *Store) CreateDeveloper(ctx context.Context, username, passwordHash, email string) (int64, error) {
	res, err := s.exec(ctx,
		`INSERT INTO developers (username, password_hash, email) VALUES (?, ?, ?)`,
		username, passwordHash, email)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("catalog: create developer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("catalog: create developer: %w", err)
	}
	if _, err := s.exec(ctx,
		`INSERT INTO registration_log (principal_kind, principal_id, username) VALUES (?, ?, ?)`,
		PrincipalDeveloper, id, username); err != nil {
		return 0, fmt.Errorf("catalog: log developer registration: %w", err)
	}
	return id, nil
}

// GetDeveloperByUsername fetches a developer by username, for the caller to
// verify the password hash against.
func (s *Store) GetDeveloperByUsername(ctx context.Context, username string) (*Developer, error) {
	row := s.queryRow(ctx,
		`SELECT id, username, password_hash, COALESCE(email, ''), created_at, last_login
		 FROM developers WHERE username = ?`, username)
	return scanDeveloper(row)
}

// GetDeveloper fetches a developer by ID.
func (s *Store) GetDeveloper(ctx context.Context, id int64) (*Developer, error) {
	row := s.queryRow(ctx,
		`SELECT id, username, password_hash, COALESCE(email, ''), created_at, last_login
		 FROM developers WHERE id = ?`, id)
	return scanDeveloper(row)
}

func scanDeveloper(row *sql.Row) (*Developer, error) {
	var d Developer
	var lastLogin sql.NullTime
	if err := row.Scan(&d.ID, &d.Username, &d.PasswordHash, &d.Email, &d.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		d.LastLogin = &lastLogin.Time
	}
	return &d, nil
}

// TouchDeveloperLogin stamps last_login to now.
func (s *Store) TouchDeveloperLogin(ctx context.Context, id int64) error {
	_, err := s.exec(ctx, `UPDATE developers SET last_login = ? WHERE id = ?`, nowUTC(), id)
	return err
}

// CreatePlayer inserts a player account with an already-hashed password.
func (s *Store) CreatePlayer(ctx context.Context, username, passwordHash, email string) (int64, error) {
	res, err := s.exec(ctx,
		`INSERT INTO players (username, password_hash, email) VALUES (?, ?, ?)`,
		username, passwordHash, email)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("catalog: create player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("catalog: create player: %w", err)
	}
	if _, err := s.exec(ctx,
		`INSERT INTO registration_log (principal_kind, principal_id, username) VALUES (?, ?, ?)`,
		PrincipalPlayer, id, username); err != nil {
		return 0, fmt.Errorf("catalog: log player registration: %w", err)
	}
	return id, nil
}

// GetPlayerByUsername fetches a player by username.
func (s *Store) GetPlayerByUsername(ctx context.Context, username string) (*Player, error) {
	row := s.queryRow(ctx,
		`SELECT id, username, password_hash, COALESCE(email, ''), created_at, last_login
		 FROM players WHERE username = ?`, username)
	return scanPlayer(row)
}

// GetPlayer fetches a player by ID.
func (s *Store) GetPlayer(ctx context.Context, id int64) (*Player, error) {
	row := s.queryRow(ctx,
		`SELECT id, username, password_hash, COALESCE(email, ''), created_at, last_login
		 FROM players WHERE id = ?`, id)
	return scanPlayer(row)
}

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	var lastLogin sql.NullTime
	if err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Email, &p.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		p.LastLogin = &lastLogin.Time
	}
	return &p, nil
}

// TouchPlayerLogin stamps last_login to now.
func (s *Store) TouchPlayerLogin(ctx context.Context, id int64) error {
	_, err := s.exec(ctx, `UPDATE players SET last_login = ? WHERE id = ?`, nowUTC(), id)
	return err
}
