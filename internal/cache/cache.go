// Package cache holds a Redis read-through cache for per-user task
// lists and dashboard payloads. It is optional: with no address
// configured the engine talks straight to SQLite, and cache failures
// always degrade to database reads.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"arvyax/internal/domain"
)

const (
	keyTasks     = "tasks:"
	keyDashboard = "dashboard:"
)

// Store caches derived payloads in Redis with a TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis and verifies the connection.
func New(addr, password string, db int, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &Store{rdb: rdb, ttl: ttl}, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// GetTasks returns the cached task list for a user, or nil on miss.
func (s *Store) GetTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	b, err := s.rdb.Get(ctx, keyTasks+userID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tasks []domain.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SetTasks stores the task list for a user.
func (s *Store) SetTasks(ctx context.Context, userID string, tasks []domain.Task) error {
	b, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyTasks+userID, b, s.ttl).Err()
}

// GetDashboard returns the cached dashboard payload, or nil on miss.
func (s *Store) GetDashboard(ctx context.Context, userID string) (json.RawMessage, error) {
	b, err := s.rdb.Get(ctx, keyDashboard+userID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// SetDashboard stores a pre-marshalled dashboard payload.
func (s *Store) SetDashboard(ctx context.Context, userID string, payload json.RawMessage) error {
	return s.rdb.Set(ctx, keyDashboard+userID, []byte(payload), s.ttl).Err()
}

// Invalidate drops every cached payload for a user. Called after each
// mutation touching that user's data.
func (s *Store) Invalidate(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, keyTasks+userID, keyDashboard+userID).Err()
}
