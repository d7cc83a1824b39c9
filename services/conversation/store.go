// Package conversation orchestrates a chat turn: classify, route, respond.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"medibook/models"
)

const sessionPrefix = "chat:session:"

// SessionStore persists per-user conversation sessions.
type SessionStore interface {
	// Get returns the user's session or nil when none exists.
	Get(ctx context.Context, userID string) (*models.ConversationSession, error)
	// Set writes the session and refreshes the idle TTL.
	Set(ctx context.Context, session *models.ConversationSession) error
	Clear(ctx context.Context, userID string) error
}

// RedisSessionStore keeps sessions as JSON blobs with a sliding idle TTL, so
// an abandoned conversation expires on its own.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, userID string) (*models.ConversationSession, error) {
	data, err := s.client.Get(ctx, sessionPrefix+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session for %s: %w", userID, err)
	}
	var session models.ConversationSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("corrupt session for %s: %w", userID, err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, session *models.ConversationSession) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.client.Set(ctx, sessionPrefix+session.UserID, b, s.ttl).Err()
}

func (s *RedisSessionStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, sessionPrefix+userID).Err()
}

// sessionLocks serializes turns per user: two concurrent messages from the
// same user process one after the other, while different users never block
// each other.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *sessionLocks) lock(userID string) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m
}
