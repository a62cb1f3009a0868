package lobby

import (
	"context"
	"math"

	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/internal/protocol"
)

func (s *session) handleGameList(ctx context.Context) *protocol.Message {
	games, err := s.srv.store.ListActiveGames(ctx)
	if err != nil {
		return protocol.NewErrorMessage("failed to list games", 500)
	}
	resp, _ := protocol.NewMessage(protocol.GameListResponse, map[string]any{
		"games": projectGames(games),
	})
	return resp
}

type searchPayload struct {
	Query string `json:"query"`
}

func (s *session) handleSearchGames(ctx context.Context, msg *protocol.Message) *protocol.Message {
	var p searchPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}
	games, err := s.srv.store.SearchGames(ctx, p.Query)
	if err != nil {
		return protocol.NewErrorMessage("search failed", 500)
	}
	resp, _ := protocol.NewMessage(protocol.GameListResponse, map[string]any{
		"games": projectGames(games),
	})
	return resp
}

func projectGames(games []*catalog.Game) []map[string]any {
	out := make([]map[string]any, len(games))
	for i, g := range games {
		out[i] = map[string]any{
			"id":          g.ID,
			"name":        g.Name,
			"description": g.Description,
			"version":     g.CurrentVersion,
			"min_players": g.MinPlayers,
			"max_players": g.MaxPlayers,
			"type":        g.GameType,
			"rating":      roundTo1(g.AverageRating),
			"rating_count": g.RatingCount,
			"downloads":   g.DownloadCount,
		}
	}
	return out
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

type gameDetailPayload struct {
	GameID int64 `json:"game_id"`
}

func (s *session) handleGameDetail(ctx context.Context, msg *protocol.Message) *protocol.Message {
	var p gameDetailPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}

	g, err := s.srv.store.GetGame(ctx, p.GameID)
	if err != nil {
		return protocol.NewErrorMessage("game not found", 404)
	}
	reviews, err := s.srv.store.GetGameReviews(ctx, p.GameID, 10)
	if err != nil {
		return protocol.NewErrorMessage("failed to load reviews", 500)
	}

	reviewPayload := make([]map[string]any, len(reviews))
	for i, r := range reviews {
		reviewPayload[i] = map[string]any{
			"username":   r.Username,
			"rating":     r.Rating,
			"comment":    r.Comment,
			"created_at": r.CreatedAt,
		}
	}

	resp, _ := protocol.NewMessage(protocol.GameDetailResponse, map[string]any{
		"id":           g.ID,
		"name":         g.Name,
		"description":  g.Description,
		"version":      g.CurrentVersion,
		"min_players":  g.MinPlayers,
		"max_players":  g.MaxPlayers,
		"type":         g.GameType,
		"rating":       roundTo1(g.AverageRating),
		"rating_count": g.RatingCount,
		"downloads":    g.DownloadCount,
		"reviews":      reviewPayload,
	})
	return resp
}

type checkUpdatePayload struct {
	GameID         int64  `json:"game_id"`
	CurrentVersion string `json:"current_version"`
}

func (s *session) handleCheckUpdate(ctx context.Context, msg *protocol.Message) *protocol.Message {
	var p checkUpdatePayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}
	g, err := s.srv.store.GetGame(ctx, p.GameID)
	if err != nil {
		return protocol.NewErrorMessage("game not found", 404)
	}

	resp, _ := protocol.NewMessage(protocol.UpdateAvailable, map[string]any{
		"update_available": g.CurrentVersion != p.CurrentVersion,
		"current_version":  p.CurrentVersion,
		"latest_version":   g.CurrentVersion,
	})
	return resp
}

type submitReviewPayload struct {
	GameID  int64  `json:"game_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *session) handleSubmitReview(ctx context.Context, msg *protocol.Message) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}
	var p submitReviewPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}
	if p.Rating < 1 || p.Rating > 5 {
		return protocol.NewErrorMessage("rating must be between 1 and 5", 400)
	}

	if err := s.srv.store.UpsertReview(ctx, p.GameID, s.playerID, p.Rating, p.Comment); err != nil {
		return protocol.NewErrorMessage("failed to submit review", 500)
	}

	resp, _ := protocol.NewMessage(protocol.ReviewSubmitted, map[string]any{"success": true})
	return resp
}

type getReviewsPayload struct {
	GameID int64 `json:"game_id"`
	Limit  int   `json:"limit"`
}

func (s *session) handleGetReviews(ctx context.Context, msg *protocol.Message) *protocol.Message {
	var p getReviewsPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}
	reviews, err := s.srv.store.GetGameReviews(ctx, p.GameID, p.Limit)
	if err != nil {
		return protocol.NewErrorMessage("failed to load reviews", 500)
	}

	out := make([]map[string]any, len(reviews))
	for i, r := range reviews {
		out[i] = map[string]any{
			"username":   r.Username,
			"rating":     r.Rating,
			"comment":    r.Comment,
			"created_at": r.CreatedAt,
		}
	}
	resp, _ := protocol.NewMessage(protocol.ReviewsResponse, map[string]any{"reviews": out})
	return resp
}
