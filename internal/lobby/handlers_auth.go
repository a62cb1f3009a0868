package lobby

import (
	"context"

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

	token, playerID, err := s.srv.auth.AuthenticatePlayer(ctx, p.Username, p.Password)
	if err != nil {
		resp, _ := protocol.NewMessage(protocol.AuthResponse, map[string]any{
			"success": false,
			"error":   "invalid username or password",
		})
		return resp
	}

	s.playerID = playerID
	s.username = p.Username
	s.authed = true
	s.srv.registry.Add(playerID, s.conn)

	resp, _ := protocol.NewMessage(protocol.AuthResponse, map[string]any{
		"success":       true,
		"user_id":       playerID,
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

	id, err := s.srv.auth.RegisterPlayer(ctx, p.Username, p.Password, p.Email)
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
		"success": true,
		"user_id": id,
		"username": p.Username,
	})
	return resp
}

func (s *session) handleLogout(ctx context.Context) *protocol.Message {
	if auth := s.requireAuth(); auth != nil {
		return auth
	}
	s.srv.registry.Remove(s.playerID, s.conn)
	s.authed = false
	resp, _ := protocol.NewSuccessMessage(protocol.Success, map[string]any{"success": true})
	return resp
}
