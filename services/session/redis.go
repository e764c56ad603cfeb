package sessionsvc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/solomonake/student-crm-dashboard/core"
)

const keyPrefix = "crm:revoked:"

type redisStore struct {
	client *redis.Client
}

var _ Store = (*redisStore)(nil)

// NewRedisClient connects and pings the server named by conf.
func NewRedisClient(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Address,
		Password:     conf.Password,
		DB:           conf.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func revokedKey(jti string) string { return keyPrefix + jti }

func (s *redisStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(nowFunc())
	if ttl <= 0 {
		return nil
	}
	return errors.Wrap(s.client.Set(ctx, revokedKey(jti), 1, ttl).Err(), "revoking token")
}

func (s *redisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking revoked token")
	}
	return n > 0, nil
}
