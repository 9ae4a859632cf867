package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis channel broadcasts travel on.
const DefaultChannel = "ecoplus:realtime"

// RedisRelay shares broadcasts between nodes over Redis pub/sub.
type RedisRelay struct {
	rdb     *goredis.Client
	channel string
	log     *zap.Logger
}

// NewRedisRelay connects to the Redis server at url (redis://...).
func NewRedisRelay(ctx context.Context, url, channel string, log *zap.Logger) (*RedisRelay, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = zap.NewNop()
	}

	rdb := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisRelay{rdb: rdb, channel: channel, log: log.With(zap.String("channel", channel))}, nil
}

// Publish implements Publisher.
func (r *RedisRelay) Publish(ctx context.Context, raw []byte) error {
	return r.rdb.Publish(ctx, r.channel, raw).Err()
}

// Run subscribes to the channel and hands every message to deliver until
// ctx is cancelled. A dropped subscription is re-established with
// exponential backoff.
func (r *RedisRelay) Run(ctx context.Context, deliver func([]byte)) error {
	b := backoff.WithContext(newBackoff(), ctx)
	return backoff.RetryNotify(func() error {
		err := r.subscribe(ctx, deliver)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			// Subscription ended without error; reconnect with a fresh delay.
			b.Reset()
			err = errors.New("subscription closed")
		}
		return err
	}, b, func(err error, d time.Duration) {
		r.log.Warn("redis relay resubscribing", zap.Error(err), zap.Duration("backoff", d))
	})
}

func (r *RedisRelay) subscribe(ctx context.Context, deliver func([]byte)) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	r.log.Info("redis relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			deliver([]byte(m.Payload))
		}
	}
}

// Close releases the Redis connection.
func (r *RedisRelay) Close() error {
	return r.rdb.Close()
}

func newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0 // retry until ctx is done
	return b
}
