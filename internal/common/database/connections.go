// internal/common/database/connections.go
package database

import (
	"context"
	"fmt"
	"time"

	"dealflow-workers/internal/common/config"
	"dealflow-workers/internal/common/logger"
)

// Pinger is satisfied by every client in this package; readiness checks
// only need this much.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connections is the set of backing stores the workers share.
type Connections struct {
	Postgres      *PostgresClient
	Redis         *RedisClient
	Elasticsearch *ElasticsearchClient
}

// RetryPolicy controls how Open waits for a store to come up.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 5, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

// Open connects to Postgres, Redis and Elasticsearch, pinging each with
// backoff. On failure anything already opened is closed.
func Open(ctx context.Context, cfg config.DatabaseConfig, policy RetryPolicy, log logger.Logger) (*Connections, error) {
	pg, err := NewPostgres(cfg.Postgres)
	if err != nil {
		return nil, err
	}
	conns := &Connections{
		Postgres: pg,
		Redis:    NewRedis(cfg.Redis),
	}

	es, err := NewElasticsearch(cfg.Elasticsearch)
	if err != nil {
		conns.Close()
		return nil, err
	}
	conns.Elasticsearch = es

	for name, p := range conns.Pingers() {
		if err := Retry(ctx, policy, log, name, p.Ping); err != nil {
			conns.Close()
			return nil, err
		}
		log.Info("connected", map[string]interface{}{"store": name})
	}
	return conns, nil
}

// Pingers lists the opened stores by name.
func (c *Connections) Pingers() map[string]Pinger {
	out := map[string]Pinger{}
	if c.Postgres != nil {
		out["postgres"] = c.Postgres
	}
	if c.Redis != nil {
		out["redis"] = c.Redis
	}
	if c.Elasticsearch != nil {
		out["elasticsearch"] = c.Elasticsearch
	}
	return out
}

// Ping checks every store and reports the failures by name.
func (c *Connections) Ping(ctx context.Context) map[string]error {
	failures := map[string]error{}
	for name, p := range c.Pingers() {
		if err := p.Ping(ctx); err != nil {
			failures[name] = err
		}
	}
	return failures
}

func (c *Connections) Close() {
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// Retry calls fn until it succeeds, the attempts run out or ctx ends.
func Retry(ctx context.Context, policy RetryPolicy, log logger.Logger, name string, fn func(context.Context) error) error {
	if policy.Attempts <= 0 {
		policy.Attempts = 1
	}

	var err error
	delay := policy.BaseDelay
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == policy.Attempts {
			break
		}

		log.Warn("connection attempt failed, retrying", map[string]interface{}{
			"store":   name,
			"attempt": attempt,
			"delay":   delay.String(),
			"error":   err,
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
		delay *= 2
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
	return fmt.Errorf("%s unavailable after %d attempts: %w", name, policy.Attempts, err)
}
