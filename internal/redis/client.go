package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type Client struct {
	rdb *redis.Client
}

// SessionData is the server-side state of one signed-in operator.
type SessionData struct {
	SessionID string    `json:"session_id"`
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func toggleKey(orderID string) string {
	return "payout_toggle:" + orderID
}

// Session management
func (c *Client) SetSession(ctx context.Context, data *SessionData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	return c.rdb.Set(ctx, sessionKey(data.SessionID), jsonData, ttl).Err()
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	val, err := c.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

// releaseScript deletes the lock only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ToggleLock marks a payment write as outstanding for every server sharing
// this redis. Locks expire after ttl so a crashed writer cannot pin an order.
type ToggleLock struct {
	client *Client
	ttl    time.Duration

	mu     sync.Mutex
	tokens map[string]string
}

func (c *Client) ToggleLock(ttl time.Duration) *ToggleLock {
	return &ToggleLock{client: c, ttl: ttl, tokens: make(map[string]string)}
}

// Acquire reports false when another writer holds the order.
func (l *ToggleLock) Acquire(ctx context.Context, orderID string) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.rdb.SetNX(ctx, toggleKey(orderID), token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire toggle lock: %w", err)
	}
	if ok {
		l.mu.Lock()
		l.tokens[orderID] = token
		l.mu.Unlock()
	}
	return ok, nil
}

// Release drops the lock taken by Acquire. A lock that expired and was
// taken by another writer is left alone.
func (l *ToggleLock) Release(ctx context.Context, orderID string) error {
	l.mu.Lock()
	token, ok := l.tokens[orderID]
	delete(l.tokens, orderID)
	l.mu.Unlock()
	if !ok {
		return nil
	}

	if err := releaseScript.Run(ctx, l.client.rdb, []string{toggleKey(orderID)}, token).Err(); err != nil {
		return fmt.Errorf("failed to release toggle lock: %w", err)
	}
	return nil
}

// Ping reports whether redis answers; /health uses it.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
