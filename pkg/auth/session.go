package auth

import (
	"time"

	"github.com/anatoly-dev/go-store-sync/pkg/platform"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SessionProvider is what the favorites store, chat client and
// inactivity guard know about the current session.
type SessionProvider interface {
	IsAuthenticated() bool
	Token() string
	UpdateActivity()
	Clear()
}

// Session derives authentication state from a bearer token held in a
// CredentialStore. The token is treated as live while its exp claim has
// not passed; signature validation belongs to the server, not here.
type Session struct {
	store    CredentialStore
	platform platform.Capabilities
	logger   *zap.Logger
	parser   *jwt.Parser
}

func NewSession(store CredentialStore, caps platform.Capabilities, logger *zap.Logger) *Session {
	return &Session{
		store:    store,
		platform: caps,
		logger:   logger,
		parser:   jwt.NewParser(),
	}
}

func (s *Session) Token() string {
	if !s.platform.HasStorage() {
		return ""
	}

	token, err := s.store.LoadToken()
	if err != nil {
		s.logger.Debug("Failed to load credential", zap.Error(err))
		return ""
	}

	return token
}

func (s *Session) IsAuthenticated() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		s.logger.Debug("Credential is not a parseable token", zap.Error(err))
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}

	// Tokens without an exp claim count as live.
	if exp == nil {
		return true
	}

	return exp.After(time.Now())
}

func (s *Session) SetToken(token string) {
	if !s.platform.HasStorage() {
		return
	}

	if err := s.store.SaveToken(token); err != nil {
		s.logger.Error("Failed to save credential", zap.Error(err))
	}
}

func (s *Session) UpdateActivity() {
	if !s.platform.HasStorage() {
		return
	}

	if err := s.store.Touch(); err != nil {
		s.logger.Debug("Failed to refresh session activity", zap.Error(err))
	}
}

func (s *Session) Clear() {
	if !s.platform.HasStorage() {
		return
	}

	if err := s.store.DeleteToken(); err != nil {
		s.logger.Error("Failed to clear credential", zap.Error(err))
	}
}
