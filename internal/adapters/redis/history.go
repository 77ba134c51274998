// Package redis provides Redis-backed implementations of the tether ports.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/tether/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "tether:"

// History implements ports.HistoryStore on a Redis list.
// New records are pushed to the head; the list is trimmed to the configured limit.
type History struct {
	client *backend.Client
	prefix string
	limit  int64
	ttl    time.Duration
}

type Option func(*History)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(h *History) {
		h.prefix = prefix
	}
}

// WithLimit caps the number of retained records. Zero keeps everything.
func WithLimit(limit int) Option {
	return func(h *History) {
		if limit > 0 {
			h.limit = int64(limit)
		}
	}
}

// WithTTL expires the whole journal after ttl of inactivity.
func WithTTL(ttl time.Duration) Option {
	return func(h *History) {
		h.ttl = ttl
	}
}

// New creates a Redis history store with its own client.
func New(address, password string, db int, opts ...Option) *History {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis history store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *History {
	h := &History{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *History) key() string {
	return h.prefix + "history"
}

// Append pushes rec onto the journal.
func (h *History) Append(ctx context.Context, rec domain.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := h.client.TxPipeline()
	pipe.LPush(ctx, h.key(), data)
	if h.limit > 0 {
		pipe.LTrim(ctx, h.key(), 0, h.limit-1)
	}
	if h.ttl > 0 {
		pipe.Expire(ctx, h.key(), h.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	vals, err := h.client.LRange(ctx, h.key(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history from redis: %w", err)
	}

	out := make([]domain.Record, 0, len(vals))
	for _, v := range vals {
		var rec domain.Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close closes the redis client.
func (h *History) Close() error {
	return h.client.Close()
}
