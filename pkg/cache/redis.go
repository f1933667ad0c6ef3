package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/barnslig/mediacccde-graphql/errors"
)

// redisStore keeps payloads in Redis under "<prefix>:<key>". Expiry is
// delegated to Redis, so the store has no background work of its own.
type redisStore struct {
	rc      *redis.Client
	prefix  string
	stats   *Statistics
	metrics *cacheMetrics
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, config RedisConfig, options ...Option) (Store, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrCacheUnavailable, err),
			"cache", "NewRedis", fmt.Sprintf("ping %s", config.Addr))
	}

	return newRedisStore(rc, config.Prefix, options...)
}

func newRedisStore(rc *redis.Client, prefix string, options ...Option) (*redisStore, error) {
	opts := applyOptions(options...)

	var metrics *cacheMetrics
	if opts.metricsReg != nil {
		var err error
		metrics, err = newCacheMetrics(opts.metricsReg, opts.metricsPrefix, BackendRedis)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "NewRedis", "metrics registration")
		}
	}

	return &redisStore{
		rc:      rc,
		prefix:  prefix,
		stats:   NewStatistics(),
		metrics: metrics,
	}, nil
}

func (s *redisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *redisStore) fail(err error, method, action string) error {
	s.stats.Error()
	if s.metrics != nil {
		s.metrics.recordError()
	}
	return errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrCacheUnavailable, err), "cache", method, action)
}

// Get retrieves a payload. redis.Nil is a miss, not an error.
func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}

	value, err := s.rc.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			s.stats.Miss()
			if s.metrics != nil {
				s.metrics.recordMiss()
			}
			return nil, false, nil
		}
		return nil, false, s.fail(err, "Get", "redis GET")
	}

	s.stats.Hit()
	if s.metrics != nil {
		s.metrics.recordHit()
	}
	return value, true, nil
}

// Set stores a payload with the given expiry.
func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.rc.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return s.fail(err, "Set", "redis SET")
	}

	s.stats.Set()
	if s.metrics != nil {
		s.metrics.recordSet()
	}
	return nil
}

// Delete removes a payload.
func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	n, err := s.rc.Del(ctx, s.key(key)).Result()
	if err != nil {
		return s.fail(err, "Delete", "redis DEL")
	}

	if n > 0 {
		s.stats.Delete()
		if s.metrics != nil {
			s.metrics.recordDelete()
		}
	}
	return nil
}

// Stats returns the store statistics. Size is not tracked for Redis.
func (s *redisStore) Stats() *Statistics {
	return s.stats
}

// Close closes the Redis client.
func (s *redisStore) Close() error {
	if err := s.rc.Close(); err != nil {
		return errors.WrapTransient(err, "cache", "Close", "close redis client")
	}
	return nil
}
