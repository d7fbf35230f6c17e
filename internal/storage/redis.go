package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic-transaction retries in Update.
const maxTxRetries = 32

// changesSuffix is appended to a key to form its change channel.
const changesSuffix = ":changes"

// RedisOptions configures NewRedis.
type RedisOptions struct {
	// Client is the Redis client to use.
	Client *redis.Client

	// Origin identifies this instance's writes. Generated when empty.
	Origin string
}

// Redis stores values as plain Redis strings. Every write is followed by a
// PUBLISH on "<key>:changes" carrying the writer's origin.
type Redis struct {
	client *redis.Client
	origin string
}

// NewRedis creates a Redis-backed store and checks the connection.
func NewRedis(opts RedisOptions) (*Redis, error) {
	if opts.Client == nil {
		return nil, errors.New("storage: redis client cannot be nil")
	}
	if opts.Origin == "" {
		opts.Origin = uuid.NewString()
	}

	if err := opts.Client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("storage: failed to connect to Redis: %w", err)
	}

	return &Redis{client: opts.Client, origin: opts.Origin}, nil
}

// Origin returns the id published with this instance's writes.
func (r *Redis) Origin() string {
	return r.origin
}

// Get returns the value stored under key.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: failed to get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key and announces the change.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, 0)
		pipe.Publish(ctx, key+changesSuffix, r.origin)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: failed to set %q: %w", key, err)
	}
	return nil
}

// Remove deletes key and announces the change.
func (r *Redis) Remove(ctx context.Context, key string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Publish(ctx, key+changesSuffix, r.origin)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: failed to remove %q: %w", key, err)
	}
	return nil
}

// Update uses WATCH/MULTI so a concurrent writer aborts and retries the
// transaction instead of being overwritten.
func (r *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		ok := true
		if errors.Is(err, redis.Nil) {
			ok = false
		} else if err != nil {
			return err
		}

		next, write, err := fn(current, ok)
		if err != nil || !write {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			pipe.Publish(ctx, key+changesSuffix, r.origin)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("storage: failed to update %q: %w", key, err)
	}
	return fmt.Errorf("storage: failed to update %q: too much contention", key)
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Watch subscribes to the key's change channel.
func (r *Redis) Watch(ctx context.Context, key string, onChange func()) error {
	sub := r.client.Subscribe(ctx, key+changesSuffix)
	defer sub.Close()

	// Wait for the subscription confirmation before reading messages.
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("storage: failed to subscribe to %q: %w", key, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if msg.Payload != r.origin {
				onChange()
			}
		}
	}
}

var (
	_ Backend = (*Redis)(nil)
	_ Watcher = (*Redis)(nil)
)
