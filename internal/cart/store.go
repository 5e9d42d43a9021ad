package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists carts keyed by session id.
type Store interface {
	Get(ctx context.Context, sessionID string) (map[string]Line, error)
	Save(ctx context.Context, sessionID string, lines map[string]Line) error
	Clear(ctx context.Context, sessionID string) error
}

// RedisStore keeps each cart as a single JSON document with a rolling TTL, so
// abandoned carts expire on their own.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func (s *RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *RedisStore) key(sessionID string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "cart:"
	}
	return prefix + sessionID
}

// Get loads the cart for the session; a missing key reads as an empty cart.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (map[string]Line, error) {
	if s == nil || s.Client == nil {
		return nil, errors.New("cart store not configured")
	}
	data, err := s.Client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[string]Line{}, nil
		}
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	lines := map[string]Line{}
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("cart: decode: %w", err)
	}
	return lines, nil
}

// Save stores the cart and refreshes its TTL. An empty cart deletes the key.
func (s *RedisStore) Save(ctx context.Context, sessionID string, lines map[string]Line) error {
	if s == nil || s.Client == nil {
		return errors.New("cart store not configured")
	}
	if len(lines) == 0 {
		return s.Clear(ctx, sessionID)
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := s.Client.Set(ctx, s.key(sessionID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

// Clear removes the session's cart.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if s == nil || s.Client == nil {
		return errors.New("cart store not configured")
	}
	if err := s.Client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}
