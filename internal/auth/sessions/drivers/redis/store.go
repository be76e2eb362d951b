package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
	"github.com/go-redis/redis/v8"
)

const defaultTimeout = 2 * time.Second

// Store keeps session records and blacklist entries in Redis. Records are
// JSON, written with SET EX so value and expiry land atomically.
type Store struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	opts, err := cfg.ToRedisOptions()
	if err != nil {
		return nil, err
	}

	s := NewWithClient(redis.NewClient(opts), cfg.KeyPrefix, cfg.Timeout)
	if err := s.Ping(ctx); err != nil {
		_ = s.client.Close()
		return nil, err
	}

	slogx.FromContext(ctx).Info("connected to redis", "addr", opts.Addr, "db", opts.DB)
	return s, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{client: client, prefix: prefix, timeout: timeout}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// unavailable folds every transport level failure into sessions.ErrUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: redis %s: %w", sessions.ErrUnavailable, op, err)
}

func (s *Store) Put(ctx context.Context, rec domain.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return sessions.ErrInvalidTTL
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Set(ctx, s.key(rec.Key), payload, ttl).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (domain.Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, sessions.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, unavailable("get", err)
	}

	var rec domain.Session
	if err := json.Unmarshal(b, &rec); err != nil {
		return domain.Session{}, fmt.Errorf("redis: decode session: %w", err)
	}
	rec.Key = key
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return unavailable("del", err)
	}
	return nil
}

func (s *Store) Blacklist(ctx context.Context, nonce string, ttl time.Duration) error {
	if ttl <= 0 {
		return sessions.ErrInvalidTTL
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Value is the unix time the entry lapses, handy when inspecting by hand.
	until := time.Now().Add(ttl).Unix()
	if err := s.client.Set(ctx, s.key(sessions.BlacklistKey(nonce)), until, ttl).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

func (s *Store) IsBlacklisted(ctx context.Context, nonce string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.client.Exists(ctx, s.key(sessions.BlacklistKey(nonce))).Result()
	if err != nil {
		return false, unavailable("exists", err)
	}
	return n > 0, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
