package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisSaleTable reads discounts from a Redis hash maintained by the sale
// refresh job. Hash field = item id, value = discount fraction.
type RedisSaleTable struct {
	client *redis.Client
	key    string
}

// NewRedisSaleTable creates a sale table backed by the given Redis hash key.
func NewRedisSaleTable(client *redis.Client, key string) *RedisSaleTable {
	return &RedisSaleTable{client: client, key: key}
}

// Discount implements SaleTable. Items absent from the hash are not on sale.
func (r *RedisSaleTable) Discount(ctx context.Context, itemID string) (float64, error) {
	val, err := r.client.HGet(ctx, r.key, itemID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read sale table: %w", err)
	}

	d, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed discount for %s: %w", itemID, err)
	}
	return d, nil
}
