package queue

import (
	"context"
	"fmt"
	"time"

	"coursehub/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// Open dials Redis and pings it within timeout. The client is closed again
// when the ping fails.
func Open(addr, password string, db int, timeout time.Duration) (*redis.Client, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// ConnectRedis opens the shared client from AppConfig.
func ConnectRedis() error {
	cfg := config.AppConfig
	rdb, err := Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTimeout)
	if err != nil {
		return err
	}
	RDB = rdb
	return nil
}

func CloseRedis() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}
