package catalog

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
)

// newRoomCode mirrors create_room's secrets.token_hex(4).upper(): eight
// uppercase hex characters, good enough entropy for a short-lived
// human-typed join code.
func newRoomCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("catalog: generate room code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// CreateRoom creates a room and seats the host as its first player.
func (s *Store) CreateRoom(ctx context.Context, gameID, hostID int64, name string, maxPlayers int) (*Room, error) {
	code, err := newRoomCode()
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	res, err := s.db.Writer().ExecContext(ctx, s.rebind(
		`INSERT INTO rooms (game_id, host_id, name, room_code, max_players) VALUES (?, ?, ?, ?, ?)`),
		gameID, hostID, name, code, maxPlayers)
	if err != nil {
		s.writeMu.Unlock()
		return nil, fmt.Errorf("catalog: create room: %w", err)
	}
	roomID, err := res.LastInsertId()
	if err != nil {
		s.writeMu.Unlock()
		return nil, fmt.Errorf("catalog: create room: %w", err)
	}
	_, err = s.db.Writer().ExecContext(ctx, s.rebind(
		`INSERT INTO room_players (room_id, player_id) VALUES (?, ?)`), roomID, hostID)
	s.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("catalog: seat host in room: %w", err)
	}

	return s.GetRoom(ctx, roomID)
}

const roomSelect = `
	SELECT r.id, r.game_id, g.name, r.host_id, p.username, r.name, r.room_code,
	       r.max_players, r.status, r.game_port, r.created_at
	FROM rooms r
	JOIN games g ON r.game_id = g.id
	JOIN players p ON r.host_id = p.id`

// GetRoom fetches a room by ID.
func (s *Store) GetRoom(ctx context.Context, roomID int64) (*Room, error) {
	row := s.queryRow(ctx, roomSelect+` WHERE r.id = ?`, roomID)
	return scanRoom(row)
}

// GetRoomByCode fetches a room by its join code.
func (s *Store) GetRoomByCode(ctx context.Context, code string) (*Room, error) {
	row := s.queryRow(ctx, roomSelect+` WHERE r.room_code = ?`, code)
	return scanRoom(row)
}

// ListActiveRooms returns waiting rooms younger than 10 minutes plus all
// playing rooms, matching get_active_rooms's filter.
func (s *Store) ListActiveRooms(ctx context.Context) ([]*Room, error) {
	query := roomSelect + `
		WHERE r.status IN ('waiting', 'playing')
		  AND (r.status = 'playing' OR ` + s.recentCutoffExpr("r.created_at", ">") + `)
		ORDER BY r.created_at DESC`
	rows, err := s.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list active rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		r, err := scanRoomRow(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// ListExpiredWaitingRooms returns waiting rooms older than 10 minutes, for
// the expiry sweeper to close.
func (s *Store) ListExpiredWaitingRooms(ctx context.Context) ([]*Room, error) {
	query := roomSelect + `
		WHERE r.status = 'waiting' AND ` + s.recentCutoffExpr("r.created_at", "<=")
	rows, err := s.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list expired rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		r, err := scanRoomRow(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func scanRoom(row *sql.Row) (*Room, error) {
	var r Room
	var port sql.NullInt64
	if err := row.Scan(&r.ID, &r.GameID, &r.GameName, &r.HostID, &r.HostName, &r.Name, &r.RoomCode,
		&r.MaxPlayers, &r.Status, &port, &r.CreatedAt); err != nil {
		return nil, err
	}
	if port.Valid {
		p := int(port.Int64)
		r.GamePort = &p
	}
	return &r, nil
}

func scanRoomRow(rows *sql.Rows) (*Room, error) {
	var r Room
	var port sql.NullInt64
	if err := rows.Scan(&r.ID, &r.GameID, &r.GameName, &r.HostID, &r.HostName, &r.Name, &r.RoomCode,
		&r.MaxPlayers, &r.Status, &port, &r.CreatedAt); err != nil {
		return nil, err
	}
	if port.Valid {
		p := int(port.Int64)
		r.GamePort = &p
	}
	return &r, nil
}

// JoinRoom seats a player in a room, returning ErrDuplicate if already
// seated.
func (s *Store) JoinRoom(ctx context.Context, roomID, playerID int64) error {
	_, err := s.exec(ctx, `INSERT INTO room_players (room_id, player_id) VALUES (?, ?)`, roomID, playerID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("catalog: join room: %w", err)
	}
	return nil
}

// LeaveRoom removes a player from a room.
func (s *Store) LeaveRoom(ctx context.Context, roomID, playerID int64) error {
	_, err := s.exec(ctx, `DELETE FROM room_players WHERE room_id = ? AND player_id = ?`, roomID, playerID)
	return err
}

// UpdateRoomStatus transitions a room's status, optionally recording the
// game server port the transition to "playing" allocated.
func (s *Store) UpdateRoomStatus(ctx context.Context, roomID int64, status string, gamePort *int) error {
	var err error
	if gamePort != nil {
		_, err = s.exec(ctx, `UPDATE rooms SET status = ?, game_port = ? WHERE id = ?`, status, *gamePort, roomID)
	} else {
		_, err = s.exec(ctx, `UPDATE rooms SET status = ? WHERE id = ?`, status, roomID)
	}
	return err
}

// GetRoomPlayers returns the players currently seated in a room.
func (s *Store) GetRoomPlayers(ctx context.Context, roomID int64) ([]*RoomPlayer, error) {
	rows, err := s.query(ctx, `
		SELECT p.id, p.username FROM room_players rp JOIN players p ON rp.player_id = p.id
		WHERE rp.room_id = ?`, roomID)
	if err != nil {
		return nil, fmt.Errorf("catalog: get room players: %w", err)
	}
	defer rows.Close()

	var players []*RoomPlayer
	for rows.Next() {
		var p RoomPlayer
		if err := rows.Scan(&p.PlayerID, &p.Username); err != nil {
			return nil, err
		}
		players = append(players, &p)
	}
	return players, rows.Err()
}
