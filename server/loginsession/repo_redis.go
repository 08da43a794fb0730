package loginsession

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "sk:session:"

var _ Repo = (*RedisLoginSessionRepo)(nil)

// RedisLoginSessionRepo stores sessions as JSON values that Redis expires at the
// session's maximum age.
type RedisLoginSessionRepo struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisLoginSessionRepo creates a Redis-backed repository. An empty prefix uses the default.
func NewRedisLoginSessionRepo(client redis.UniversalClient, prefix string) *RedisLoginSessionRepo {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisLoginSessionRepo{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *RedisLoginSessionRepo) key(sessionID string) string {
	return r.prefix + sessionID
}

// Upsert writes the session, keeping it until its ExpiresAt.
func (r *RedisLoginSessionRepo) Upsert(ctx context.Context, sessionID string, session Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return r.Delete(ctx, sessionID)
		}
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (r *RedisLoginSessionRepo) Get(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, errors.ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *RedisLoginSessionRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
