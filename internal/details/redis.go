package details

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "shopping-cart-details:"

	// upsertRetries bounds optimistic-transaction retries when a concurrent
	// writer touches the key between our read and write.
	upsertRetries = 5
)

// RedisCollection stores documents as JSON values in Redis, one key per
// cart id.
type RedisCollection struct {
	rdb *redis.Client
}

// NewRedisCollection wraps a Redis client as a Collection.
func NewRedisCollection(rdb *redis.Client) *RedisCollection {
	return &RedisCollection{rdb: rdb}
}

func redisKey(shoppingCartID string) string {
	return redisKeyPrefix + shoppingCartID
}

// Get implements Collection.
func (c *RedisCollection) Get(ctx context.Context, shoppingCartID string) (ShoppingCartDetails, error) {
	b, err := c.rdb.Get(ctx, redisKey(shoppingCartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ShoppingCartDetails{}, ErrNotFound
	}
	if err != nil {
		return ShoppingCartDetails{}, fmt.Errorf("redis get: %w", err)
	}
	var doc ShoppingCartDetails
	if err := json.Unmarshal(b, &doc); err != nil {
		return ShoppingCartDetails{}, fmt.Errorf("decode details document: %w", err)
	}
	return doc, nil
}

// newerThanStored reports whether doc supersedes the stored raw document.
// Unreadable stored values are replaced rather than kept.
func newerThanStored(raw []byte, doc ShoppingCartDetails) bool {
	var cur ShoppingCartDetails
	if err := json.Unmarshal(raw, &cur); err != nil {
		return true
	}
	return doc.Revision > cur.Revision
}

// Upsert implements Collection. The revision guard and the write run inside
// one optimistic WATCH transaction, so two writers racing on the same key
// cannot leave the lower revision persisted last.
func (c *RedisCollection) Upsert(ctx context.Context, doc ShoppingCartDetails) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode details document: %w", err)
	}
	key := redisKey(doc.ShoppingCartID)

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis get: %w", err)
		}
		if err == nil && !newerThanStored(raw, doc) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, 0)
			return nil
		})
		return err
	}

	for i := 0; i < upsertRetries; i++ {
		err := c.rdb.Watch(ctx, txn, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("redis upsert: %w", err)
	}
	return fmt.Errorf("redis upsert: %w", redis.TxFailedErr)
}
