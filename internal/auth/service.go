package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/kestrelgames/gamestore/internal/catalog"
	"github.com/kestrelgames/gamestore/pkg/metrics"
)

// Service wires password hashing and token issuance to the catalog store,
// the full account-and-session surface behind AUTH_REQUEST/REGISTER_REQUEST/
// LOGOUT for both developers and players.
type Service struct {
	store   *catalog.Store
	tokens  *TokenIssuer
	salt    string
	ttl     time.Duration
	metrics *metrics.AuthMetrics
}

// NewService builds a Service. salt is the process-wide password salt;
// ttl is the session lifetime applied to every issued token.
func NewService(store *catalog.Store, tokens *TokenIssuer, salt string, ttl time.Duration) *Service {
	return &Service{store: store, tokens: tokens, salt: salt, ttl: ttl}
}

// SetMetrics attaches a metrics registry; nil (the default) disables
// instrumentation so tests can construct a Service without a registry.
func (s *Service) SetMetrics(am *metrics.AuthMetrics) {
	s.metrics = am
}

// RegisterPlayer creates a player account and returns its ID.
func (s *Service) RegisterPlayer(ctx context.Context, username, password, email string) (int64, error) {
	hash := HashPassword(password, s.salt)
	id, err := s.store.CreatePlayer(ctx, username, hash, email)
	s.countRegistration("player", err)
	return id, err
}

// RegisterDeveloper creates a developer account and returns its ID.
func (s *Service) RegisterDeveloper(ctx context.Context, username, password, email string) (int64, error) {
	hash := HashPassword(password, s.salt)
	id, err := s.store.CreateDeveloper(ctx, username, hash, email)
	s.countRegistration("developer", err)
	return id, err
}

func (s *Service) countRegistration(principal string, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.RegistrationsTotal.WithLabelValues(principal, status).Inc()
}

// AuthenticatePlayer verifies credentials and issues a session token.
func (s *Service) AuthenticatePlayer(ctx context.Context, username, password string) (token string, playerID int64, err error) {
	start := time.Now()
	defer func() { s.observeLogin("player", start, err) }()

	p, err := s.store.GetPlayerByUsername(ctx, username)
	if err != nil {
		err = fmt.Errorf("auth: invalid credentials")
		return "", 0, err
	}
	if !VerifyPassword(password, s.salt, p.PasswordHash) {
		err = fmt.Errorf("auth: invalid credentials")
		return "", 0, err
	}

	token, err = s.tokens.Issue(p.ID, catalog.PrincipalPlayer, s.ttl)
	if err != nil {
		return "", 0, err
	}
	if err = s.store.CreatePlayerSession(ctx, p.ID, token, s.ttl); err != nil {
		return "", 0, err
	}
	_ = s.store.TouchPlayerLogin(ctx, p.ID)
	if s.metrics != nil {
		s.metrics.TokensIssuedTotal.WithLabelValues("player").Inc()
		s.metrics.ActiveSessions.WithLabelValues("player").Inc()
	}
	return token, p.ID, nil
}

// AuthenticateDeveloper verifies credentials and issues a session token.
func (s *Service) AuthenticateDeveloper(ctx context.Context, username, password string) (token string, developerID int64, err error) {
	start := time.Now()
	defer func() { s.observeLogin("developer", start, err) }()

	d, err := s.store.GetDeveloperByUsername(ctx, username)
	if err != nil {
		err = fmt.Errorf("auth: invalid credentials")
		return "", 0, err
	}
	if !VerifyPassword(password, s.salt, d.PasswordHash) {
		err = fmt.Errorf("auth: invalid credentials")
		return "", 0, err
	}

	token, err = s.tokens.Issue(d.ID, catalog.PrincipalDeveloper, s.ttl)
	if err != nil {
		return "", 0, err
	}
	if err = s.store.CreateDeveloperSession(ctx, d.ID, token, s.ttl); err != nil {
		return "", 0, err
	}
	_ = s.store.TouchDeveloperLogin(ctx, d.ID)
	if s.metrics != nil {
		s.metrics.TokensIssuedTotal.WithLabelValues("developer").Inc()
		s.metrics.ActiveSessions.WithLabelValues("developer").Inc()
	}
	return token, d.ID, nil
}

func (s *Service) observeLogin(principal string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		s.metrics.LoginFailuresTotal.WithLabelValues(principal, "invalid_credentials").Inc()
	}
	s.metrics.LoginAttemptsTotal.WithLabelValues(principal, status).Inc()
	s.metrics.LoginDuration.WithLabelValues(principal).Observe(time.Since(start).Seconds())
}

// ValidatePlayerToken checks a token against both the JWT signature/expiry
// and the catalog's session table, so LOGOUT (which deletes the row)
// revokes a token immediately even before its JWT expiry.
func (s *Service) ValidatePlayerToken(ctx context.Context, token string) (*catalog.Player, error) {
	p, err := s.validatePlayerToken(ctx, token)
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.TokenValidationsTotal.WithLabelValues("player", status).Inc()
	}
	return p, err
}

func (s *Service) validatePlayerToken(ctx context.Context, token string) (*catalog.Player, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	if claims.PrincipalKind != catalog.PrincipalPlayer {
		return nil, fmt.Errorf("auth: token is not a player session")
	}
	return s.store.ValidatePlayerSession(ctx, token)
}

// ValidateDeveloperToken checks a token against both the JWT signature/
// expiry and the catalog's session table.
func (s *Service) ValidateDeveloperToken(ctx context.Context, token string) (*catalog.Developer, error) {
	d, err := s.validateDeveloperToken(ctx, token)
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.TokenValidationsTotal.WithLabelValues("developer", status).Inc()
	}
	return d, err
}

func (s *Service) validateDeveloperToken(ctx context.Context, token string) (*catalog.Developer, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	if claims.PrincipalKind != catalog.PrincipalDeveloper {
		return nil, fmt.Errorf("auth: token is not a developer session")
	}
	return s.store.ValidateDeveloperSession(ctx, token)
}

// LogoutPlayer deletes a player's session, revoking the token.
func (s *Service) LogoutPlayer(ctx context.Context, token string) error {
	err := s.store.DeletePlayerSession(ctx, token)
	if err == nil && s.metrics != nil {
		s.metrics.LogoutsTotal.WithLabelValues("player").Inc()
		s.metrics.ActiveSessions.WithLabelValues("player").Dec()
	}
	return err
}

// LogoutDeveloper deletes a developer's session, revoking the token.
func (s *Service) LogoutDeveloper(ctx context.Context, token string) error {
	err := s.store.DeleteDeveloperSession(ctx, token)
	if err == nil && s.metrics != nil {
		s.metrics.LogoutsTotal.WithLabelValues("developer").Inc()
		s.metrics.ActiveSessions.WithLabelValues("developer").Dec()
	}
	return err
}
