package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// ConnectRedis dials the Redis instance backing chat fan-out and typing
// presence. Chat degrades to a local fallback when this fails, so the
// caller decides whether a connect error is fatal.
func ConnectRedis(redisURL string) error {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("unable to parse redis url: %v", err)
	}

	Redis = redis.NewClient(opts)

	if err := Redis.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("unable to ping redis: %v", err)
	}

	fmt.Println("Connected to Redis successfully")
	return nil
}

func CloseRedis() {
	if Redis != nil {
		_ = Redis.Close()
	}
}
