// Package redis opens the catalog's Redis connection, waiting for the
// server to come up with capped exponential backoff.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coastwatch-labs/catalog/internal/config"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

// ConnectOptions defines Redis connection retry behavior.
type ConnectOptions struct {
	Addr           string        // Redis address (ex: "localhost:6379")
	User           string        // Optional username
	Password       string        // Optional password
	DB             int           // Redis DB number
	DialTimeout    time.Duration // Redis dial timeout
	ReadTimeout    time.Duration // Redis read timeout; BLPOP waits are added by go-redis
	WriteTimeout   time.Duration // Redis write timeout
	PoolSize       int           // Redis connection pool size
	ConnectTimeout time.Duration // Total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, doubles each attempt)
	MaxWait        time.Duration // Max wait between retries (ex: 10s)
	PingTimeout    time.Duration // Timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // Warn after this many attempts, then escalate to Error
}

// OptionsFromConfig maps the Redis section of the configuration.
func OptionsFromConfig(cfg *config.Config) ConnectOptions {
	return ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}
}

// Validate rejects retry settings that would spin or never wait.
func (o ConnectOptions) Validate() error {
	switch {
	case o.Addr == "":
		return fmt.Errorf("redis address is empty")
	case o.ConnectTimeout <= 0:
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", o.ConnectTimeout)
	case o.RetryInterval <= 0:
		return fmt.Errorf("RetryInterval must be > 0, got %v", o.RetryInterval)
	case o.MaxWait <= 0:
		return fmt.Errorf("MaxWait must be > 0, got %v", o.MaxWait)
	case o.PingTimeout <= 0:
		return fmt.Errorf("PingTimeout must be > 0, got %v", o.PingTimeout)
	case o.WarnThreshold < 0:
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold)
	}
	return nil
}

// pinger is the part of *redis.Client the retry loop needs.
type pinger interface {
	Ping(ctx context.Context) error
}

type clientPinger struct{ client *redis.Client }

func (p clientPinger) Ping(ctx context.Context) error { return p.client.Ping(ctx).Err() }

// Connect creates a client and blocks until the server answers PING or
// ConnectTimeout elapses. The client is closed on failure.
func Connect(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := opts.Validate(); err != nil {
		log.Error("invalid redis options", logger.Error(err))
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	if err := waitReady(ctx, clientPinger{client}, opts, log.With(logger.String("addr", opts.Addr))); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// nextWait doubles wait, capped at max.
func nextWait(wait, max time.Duration) time.Duration {
	wait *= 2
	if wait > max {
		return max
	}
	return wait
}

// waitReady pings until success, logging each failure at a severity that
// grows with the attempt count and the remaining budget.
func waitReady(parent context.Context, p pinger, opts ConnectOptions, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(parent, opts.ConnectTimeout)
	defer cancel()

	log.Info("connecting to redis", logger.Duration("timeout", opts.ConnectTimeout))
	start := time.Now()
	wait := opts.RetryInterval

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := p.Ping(pingCtx)
		pingCancel()

		if err == nil {
			if attempt > 1 {
				log.Warn("connected to redis after retry",
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(start)))
			} else {
				log.Info("connected to redis")
			}
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Error("redis unavailable - giving up",
				logger.Int("attempts", attempt),
				logger.Duration("timeout", opts.ConnectTimeout),
				logger.Error(err))
			return fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
				opts.Addr, attempt, opts.ConnectTimeout, err)

		case <-timer.C:
			fields := []logger.Field{
				logger.Int("attempt", attempt),
				logger.Duration("next_retry_in", wait),
				logger.Error(err),
			}
			switch remaining := timeLeft(ctx); {
			case remaining < 10*time.Second:
				log.Error("redis still down - timeout approaching", append(fields, logger.Duration("remaining", remaining))...)
			case attempt <= opts.WarnThreshold:
				log.Warn("redis connection failed, retrying", fields...)
			default:
				log.Error("redis still unavailable", fields...)
			}
			wait = nextWait(wait, opts.MaxWait)
		}
	}
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
