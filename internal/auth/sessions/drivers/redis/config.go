package redis

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Config describes how to reach the session namespace of a Redis server.
type Config struct {
	// URL is a redis:// or rediss:// connection string. A database number
	// in the path wins over DB.
	URL string

	// DB is the logical database used when URL carries none. Sessions get
	// their own database so they never collide with other users of the server.
	DB int

	// KeyPrefix namespaces every key written by this service.
	KeyPrefix string

	// Timeout bounds every single command round-trip.
	Timeout time.Duration

	DialTimeout time.Duration
	PoolSize    int
}

// ToRedisOptions builds go-redis options. Client-side retries are disabled:
// a failed round-trip surfaces to the caller as unavailable.
func (c Config) ToRedisOptions() (*redis.Options, error) {
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	hasDB, err := urlHasDB(c.URL)
	if err != nil {
		return nil, err
	}
	if !hasDB {
		opts.DB = c.DB
	}

	opts.MaxRetries = -1
	if c.DialTimeout > 0 {
		opts.DialTimeout = c.DialTimeout
	}
	if c.Timeout > 0 {
		opts.ReadTimeout = c.Timeout
		opts.WriteTimeout = c.Timeout
	}
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}

	return opts, nil
}

func urlHasDB(raw string) (bool, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return false, fmt.Errorf("redis: parse url: %w", err)
	}
	return strings.Trim(u.Path, "/") != "", nil
}
