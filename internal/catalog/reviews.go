package catalog

import (
	"context"
	"fmt"
)

// UpsertReview records or replaces a player's review for a game (db_manager.
// py's add_review ON CONFLICT upsert), then eagerly recomputes the game's
// average_rating/rating_count so GAME_DETAIL_RESPONSE never has to join
// across reviews at read time.
func (s *Store) UpsertReview(ctx context.Context, gameID, playerID int64, rating int, comment string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	upsert := `
		INSERT INTO reviews (game_id, player_id, rating, comment)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(game_id, player_id) DO UPDATE SET
			rating = excluded.rating,
			comment = excluded.comment,
			updated_at = CURRENT_TIMESTAMP`
	if s.dialect == "mysql" {
		upsert = `
		INSERT INTO reviews (game_id, player_id, rating, comment)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			rating = VALUES(rating),
			comment = VALUES(comment),
			updated_at = CURRENT_TIMESTAMP`
	}

	_, err := s.db.Writer().ExecContext(ctx, s.rebind(upsert), gameID, playerID, rating, comment)
	if err != nil {
		return fmt.Errorf("catalog: upsert review: %w", err)
	}

	_, err = s.db.Writer().ExecContext(ctx, s.rebind(`
		UPDATE games SET
			rating_count = (SELECT COUNT(*) FROM reviews WHERE game_id = ?),
			average_rating = (SELECT COALESCE(AVG(rating), 0.0) FROM reviews WHERE game_id = ?)
		WHERE id = ?`),
		gameID, gameID, gameID)
	if err != nil {
		return fmt.Errorf("catalog: recompute rating aggregate: %w", err)
	}
	return nil
}

// GetGameReviews returns up to limit reviews for a game, newest first, with
// each review's author username.
func (s *Store) GetGameReviews(ctx context.Context, gameID int64, limit int) ([]*Review, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.query(ctx, `
		SELECT r.id, r.game_id, r.player_id, p.username, r.rating, r.comment, r.created_at, r.updated_at
		FROM reviews r JOIN players p ON r.player_id = p.id
		WHERE r.game_id = ? ORDER BY r.created_at DESC LIMIT ?`, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: get game reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.GameID, &r.PlayerID, &r.Username, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, &r)
	}
	return reviews, rows.Err()
}
