package health

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Probe implements Checker against the service's real dependencies: the redis
// cart store and the flat-file data directory.
type Probe struct {
	Redis   *redis.Client
	DataDir string
}

// PingRedis probes the redis connection within the timeout.
func (p Probe) PingRedis(ctx context.Context, timeout time.Duration) error {
	if p.Redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Redis.Ping(ctx).Err()
}

// CheckData verifies the data directory is present and is a directory.
func (p Probe) CheckData(_ context.Context) error {
	if p.DataDir == "" {
		return errors.New("data dir not configured")
	}
	info, err := os.Stat(p.DataDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("data path is not a directory")
	}
	return nil
}
