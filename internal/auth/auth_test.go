package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"reseller_hub/internal/models"
	"reseller_hub/internal/redis"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeSessions struct {
	data map[string]redis.SessionData
	ttl  time.Duration
	err  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{data: make(map[string]redis.SessionData)}
}

func (f *fakeSessions) SetSession(ctx context.Context, data *redis.SessionData, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[data.SessionID] = *data
	f.ttl = ttl
	return nil
}

func (f *fakeSessions) GetSession(ctx context.Context, id string) (*redis.SessionData, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.data[id]
	if !ok {
		return nil, redis.ErrSessionNotFound
	}
	return &d, nil
}

func (f *fakeSessions) DeleteSession(ctx context.Context, id string) error {
	delete(f.data, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeSessions) {
	t.Helper()
	hash, err := HashPassword("admin123")
	if err != nil {
		t.Fatal(err)
	}
	users := fakeUsers{
		"admin@resellerhub.local": {ID: 1, Email: "admin@resellerhub.local", PasswordHash: hash, IsActive: true},
		"old@resellerhub.local":   {ID: 2, Email: "old@resellerhub.local", PasswordHash: hash, IsActive: false},
	}
	sessions := newFakeSessions()
	return NewService(users, sessions, time.Hour), sessions
}

func TestLogin(t *testing.T) {
	svc, sessions := newTestService(t)

	session, err := svc.Login(context.Background(), "  Admin@ResellerHub.local ", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.UserID != 1 || session.SessionID == "" {
		t.Errorf("session = %+v", session)
	}
	if _, ok := sessions.data[session.SessionID]; !ok {
		t.Errorf("session not stored")
	}
	if sessions.ttl != time.Hour {
		t.Errorf("ttl = %s", sessions.ttl)
	}
}

func TestLoginRejected(t *testing.T) {
	svc, sessions := newTestService(t)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "admin@resellerhub.local", "nope"},
		{"unknown user", "ghost@resellerhub.local", "admin123"},
		{"inactive user", "old@resellerhub.local", "admin123"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
	if len(sessions.data) != 0 {
		t.Errorf("rejected logins stored %d sessions", len(sessions.data))
	}
}

func TestCurrentAndSignOut(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "admin@resellerhub.local", "admin123")
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Current(ctx, session.SessionID)
	if err != nil || got.Email != "admin@resellerhub.local" {
		t.Fatalf("Current = %+v, %v", got, err)
	}

	if err := svc.SignOut(ctx, session.SessionID); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := svc.Current(ctx, session.SessionID); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after sign-out, got %v", err)
	}
	if err := svc.SignOut(ctx, session.SessionID); err != nil {
		t.Errorf("second SignOut: %v", err)
	}
	if _, err := svc.Current(ctx, ""); !errors.Is(err, ErrNoSession) {
		t.Errorf("empty id: %v", err)
	}
}

func TestCurrentExpired(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	session, err := svc.Login(context.Background(), "admin@resellerhub.local", "admin123")
	if err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := svc.Current(context.Background(), session.SessionID); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected expired session to be rejected, got %v", err)
	}
}

func TestCurrentStoreFailure(t *testing.T) {
	svc, sessions := newTestService(t)
	sessions.err = errors.New("redis down")
	if _, err := svc.Current(context.Background(), "abc"); err == nil || errors.Is(err, ErrNoSession) {
		t.Errorf("store failure must surface, got %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	events, cancel := svc.Subscribe()
	defer cancel()

	session, err := svc.Login(ctx, "admin@resellerhub.local", "admin123")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SignOut(ctx, session.SessionID); err != nil {
		t.Fatal(err)
	}

	for _, want := range []EventKind{SignedIn, SignedOut} {
		select {
		case ev := <-events:
			if ev.Kind != want || ev.Session.SessionID != session.SessionID {
				t.Errorf("event = %+v, want %s", ev, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("no %s event", want)
		}
	}

	cancel()
	if _, ok := <-events; ok {
		t.Errorf("channel still open after cancel")
	}
	cancel()
}
