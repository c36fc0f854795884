// Package cache stores suggestion texts and analysis results between runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing (caching disabled)
//
// Keys are built by a [Keyer] so that every backend sees the same layout.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is reported as ok=false with a
	// nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads key and decodes it into v. Undecodable entries count as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Dir      string // file backend
	RedisURL string // redis backend
}

// Open returns the backend named by opts.Backend. An empty backend means
// file when Dir is set and none otherwise.
func Open(ctx context.Context, opts Options) (Cache, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendNone
		if opts.Dir != "" {
			backend = BackendFile
		}
	}
	switch backend {
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory configured")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis cache: no url configured")
		}
		c, err := NewRedisCache(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
