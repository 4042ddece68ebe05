package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

const (
	defaultMaxConns = 16
	defaultMinConns = 2
	pingTimeout     = 5 * time.Second
)

// ConnectDB opens the shared pgx pool. Sizing defaults suit a single
// API instance; DB_MAX_CONNS overrides the upper bound.
func ConnectDB(dbUrl string) error {
	poolConfig, err := pgxpool.ParseConfig(dbUrl)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = int32(envInt("DB_MAX_CONNS", defaultMaxConns))
	poolConfig.MinConns = defaultMinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return fmt.Errorf("open database pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	DB = pool
	log.Printf("postgres pool ready (max %d conns)", poolConfig.MaxConns)
	return nil
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("ignoring invalid %s=%q", key, raw)
		return fallback
	}
	return n
}

func CloseDB() {
	if DB != nil {
		DB.Close()
	}
}
