package service

import (
	"errors"
	"sync"

	"pensionado/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrUnknownUser  = errors.New("unknown user")
	ErrUserInactive = errors.New("user account is inactive")
)

// AuthSession holds the signed-in user chosen from the configured accounts.
// Credentials are not checked.
type AuthSession struct {
	mu      sync.RWMutex
	users   map[string]models.User
	current *models.User
	logger  *zerolog.Logger
}

func NewAuthSession(users []models.User, logger *zerolog.Logger) *AuthSession {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &AuthSession{users: byID, logger: logger}
}

func (s *AuthSession) SignIn(userID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		s.logger.Warn().Str("user_id", userID).Msg("sign in rejected: unknown user")
		return models.User{}, ErrUnknownUser
	}
	if !user.Active {
		s.logger.Warn().Str("user_id", userID).Msg("sign in rejected: inactive user")
		return models.User{}, ErrUserInactive
	}

	s.current = &user
	s.logger.Info().Str("user_id", userID).Str("name", user.FullName()).Msg("user signed in")
	return user, nil
}

func (s *AuthSession) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.logger.Info().Str("user_id", s.current.ID).Msg("user signed out")
	}
	s.current = nil
}

func (s *AuthSession) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.User{}, false
	}
	return *s.current, true
}

// CurrentUserID returns "" when nobody is signed in.
func (s *AuthSession) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID
}
