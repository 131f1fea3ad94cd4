package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// CartEntry is one product line held in a session cart. Entries keep the
// order in which products were first added.
type CartEntry struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CartData struct {
	Entries   []CartEntry `json:"entries"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromClient wraps an already configured go-redis client.
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func cartKey(key string) string {
	return "cart:" + key
}

// Cart management

// ErrCartContention is returned when a cart kept changing under every
// update attempt.
var ErrCartContention = errors.New("cart is being updated concurrently")

const maxCartRetries = 50

func decodeCart(val string, err error) (*CartData, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &CartData{}, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart CartData
	if err := json.Unmarshal([]byte(val), &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart data: %w", err)
	}
	return &cart, nil
}

// GetCart returns the stored cart, or an empty cart when none exists.
func (c *Client) GetCart(ctx context.Context, key string) (*CartData, error) {
	return decodeCart(c.rdb.Get(ctx, cartKey(key)).Result())
}

// UpdateCart applies fn to the stored cart and writes the result back with
// a fresh TTL. The key is WATCHed so a concurrent writer makes the attempt
// start over from the new state; fn may therefore run more than once. An
// empty cart is deleted.
func (c *Client) UpdateCart(ctx context.Context, key string, ttl time.Duration, fn func(cart *CartData) error) (*CartData, error) {
	k := cartKey(key)
	var result *CartData

	txf := func(tx *redis.Tx) error {
		cart, err := decodeCart(tx.Get(ctx, k).Result())
		if err != nil {
			return err
		}
		if err := fn(cart); err != nil {
			return err
		}

		var payload []byte
		if len(cart.Entries) > 0 {
			cart.UpdatedAt = time.Now().UTC()
			if payload, err = json.Marshal(cart); err != nil {
				return fmt.Errorf("failed to marshal cart data: %w", err)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if payload == nil {
				pipe.Del(ctx, k)
				return nil
			}
			pipe.Set(ctx, k, payload, ttl)
			return nil
		})
		if err == nil {
			result = cart
		}
		return err
	}

	for i := 0; i < maxCartRetries; i++ {
		err := c.rdb.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("failed to update cart %s: %w", key, ErrCartContention)
}

func (c *Client) DeleteCart(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, cartKey(key)).Err()
}

// Ping checks the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
