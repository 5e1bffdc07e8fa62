package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
)

// RedisSessionRepository keeps chat session state in Redis with a sliding TTL.
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionRepository builds a Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisSessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionRepository{client: client, prefix: prefix, ttl: ttl}
}

// Get loads the session state or returns ErrSessionNotFound.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.SessionState, error) {
	raw, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}
	var state models.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &state, nil
}

// Save stores the state and restarts its TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, state *models.SessionState) error {
	state.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", state.SessionID, err)
	}
	if err := r.client.Set(ctx, r.prefix+state.SessionID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", state.SessionID, err)
	}
	return nil
}

// Delete removes the state; deleting a missing session is not an error.
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}

// MemorySessionRepository is an in-process session store with TTL, for development and tests.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memorySession
}

type memorySession struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemorySessionRepository builds an in-memory session store.
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemorySessionRepository{ttl: ttl, now: time.Now, sessions: make(map[string]memorySession)}
}

// Get returns a copy of the stored state; expired entries are dropped.
func (r *MemorySessionRepository) Get(_ context.Context, id string) (*models.SessionState, error) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	if r.now().After(entry.expiresAt) {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
		return nil, appErrors.ErrSessionNotFound
	}
	var state models.SessionState
	if err := json.Unmarshal(entry.payload, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &state, nil
}

// Save stores a copy of the state and restarts its TTL.
func (r *MemorySessionRepository) Save(_ context.Context, state *models.SessionState) error {
	state.UpdatedAt = r.now().UTC()
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", state.SessionID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[state.SessionID] = memorySession{payload: payload, expiresAt: r.now().Add(r.ttl)}
	return nil
}

// Delete removes the state.
func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
