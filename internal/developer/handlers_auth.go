package developer

import (
	"context"
	"math"

	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/internal/protocol"
)

type authPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

func (s *session) handleAuth(ctx context.Context, msg *protocol.Message) *protocol.Message {
	var p authPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}

	token, developerID, err := s.srv.auth.AuthenticateDeveloper(ctx, p.Username, p.Password)
	if err != nil {
		resp, _ := protocol.NewMessage(protocol.AuthResponse, map[string]any{
			"success": false,
			"error":   "invalid username or password",
		})
		return resp
	}

	s.developerID = developerID
	s.username = p.Username
	s.authed = true

	resp, _ := protocol.NewMessage(protocol.AuthResponse, map[string]any{
		"success":       true,
		"user_id":       developerID,
		"username":      p.Username,
		"session_token": token,
	})
	return resp
}

func (s *session) handleRegister(ctx context.Context, msg *protocol.Message) *protocol.Message {
	var p authPayload
	if err := msg.Decode(&p); err != nil {
		return protocol.NewErrorMessage("invalid request body", 400)
	}

	id, err := s.srv.auth.RegisterDeveloper(ctx, p.Username, p.Password, p.Email)
	if err != nil {
		if err == catalog.ErrDuplicate {
			resp, _ := protocol.NewMessage(protocol.RegisterResponse, map[string]any{
				"success": false,
				"error":   "username-exists",
			})
			return resp
		}
		return protocol.NewErrorMessage("registration failed", 500)
	}

	resp, _ := protocol.NewMessage(protocol.RegisterResponse, map[string]any{
		"success":  true,
		"user_id":  id,
		"username": p.Username,
	})
	return resp
}

func (s *session) handleMyGames(ctx context.Context) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}

	games, err := s.srv.store.ListGamesByDeveloper(ctx, s.developerID)
	if err != nil {
		return protocol.NewErrorMessage("failed to list games", 500)
	}

	out := make([]map[string]any, len(games))
	for i, g := range games {
		out[i] = map[string]any{
			"id":          g.ID,
			"name":        g.Name,
			"description": g.Description,
			"version":     g.CurrentVersion,
			"status":      g.Status,
			"downloads":   g.DownloadCount,
			"rating":      math.Round(g.AverageRating*10) / 10,
		}
	}
	resp, _ := protocol.NewMessage(protocol.MyGamesResponse, map[string]any{"games": out})
	return resp
}
