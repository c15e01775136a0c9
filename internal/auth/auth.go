// Package auth signs operators in and out and tracks their server-side
// sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"reseller_hub/internal/logger"
	"reseller_hub/internal/models"
	"reseller_hub/internal/redis"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
)

type EventKind string

const (
	SignedIn  EventKind = "SIGNED_IN"
	SignedOut EventKind = "SIGNED_OUT"
)

// Event is published whenever a session starts or ends.
type Event struct {
	Kind    EventKind
	Session redis.SessionData
}

type SessionStore interface {
	SetSession(ctx context.Context, data *redis.SessionData, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type Service struct {
	users    UserFinder
	sessions SessionStore
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewService(users UserFinder, sessions SessionStore, ttl time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		log:      logger.WithComponent("auth"),
		subs:     make(map[int]chan Event),
	}
}

// HashPassword returns the bcrypt hash stored for an operator password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks the operator's credentials and opens a session. Unknown,
// inactive and wrong-password accounts all yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*redis.SessionData, error) {
	const op = "auth.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: load user: %w", op, err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warn().Str("email", email).Msg("rejected sign-in")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	session := &redis.SessionData{
		SessionID: uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.SetSession(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("%s: store session: %w", op, err)
	}

	s.log.Info().Uint("user_id", user.ID).Msg("operator signed in")
	s.publish(Event{Kind: SignedIn, Session: *session})
	return session, nil
}

// Current returns the live session for sessionID.
func (s *Service) Current(ctx context.Context, sessionID string) (*redis.SessionData, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("auth.Current: %w", err)
	}
	if !session.ExpiresAt.IsZero() && !s.now().Before(session.ExpiresAt) {
		return nil, ErrNoSession
	}
	return session, nil
}

// SignOut ends the session. Signing out of a missing session is not an error.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	session, err := s.Current(ctx, sessionID)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("auth.SignOut: %w", err)
	}

	s.log.Info().Uint("user_id", session.UserID).Msg("operator signed out")
	s.publish(Event{Kind: SignedOut, Session: *session})
	return nil
}

// Subscribe delivers session events until the returned cancel func is
// called. Slow subscribers miss events rather than block sign-in.
func (s *Service) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Warn().Str("event", string(ev.Kind)).Msg("dropped session event for slow subscriber")
		}
	}
}
