package quizstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/justestif/valora/internal/questionnaire"
)

const defaultPrefix = "valora:quiz:"

// RedisStore keeps state as JSON in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix. The default is "valora:quiz:".
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// NewRedisStore creates a store on an existing client. A zero ttl stores keys
// without expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial parses a redis:// URL, connects and pings the server.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

// Load returns the state for key. Stored state that fails validation is
// deleted and reported as ErrNotFound so the caller starts over.
func (s *RedisStore) Load(ctx context.Context, key string) (questionnaire.State, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return questionnaire.State{}, ErrNotFound
	}
	if err != nil {
		return questionnaire.State{}, fmt.Errorf("loading questionnaire: %w", err)
	}

	var state questionnaire.State
	if err := json.Unmarshal(data, &state); err != nil {
		s.client.Del(ctx, s.key(key))
		return questionnaire.State{}, ErrNotFound
	}
	if state.Responses.Ratings == nil {
		state.Responses.Ratings = make(map[string]int, questionnaire.ItemCount)
	}
	if err := state.Validate(); err != nil {
		s.client.Del(ctx, s.key(key))
		return questionnaire.State{}, ErrNotFound
	}
	return state, nil
}

// Save stores state under key and restarts its TTL.
func (s *RedisStore) Save(ctx context.Context, key string, state questionnaire.State) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("saving questionnaire: %w", err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding questionnaire: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving questionnaire: %w", err)
	}
	return nil
}

// Delete removes the state for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("deleting questionnaire: %w", err)
	}
	return nil
}
