package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/luxe-shop/backend/internal/models"
)

const productTTL = 5 * time.Minute

// ProductCache is a read-through cache in front of the catalog table.
// A nil *ProductCache is valid and means every lookup misses.
type ProductCache struct {
	client *redis.Client
}

func NewProductCache(addr string) (*ProductCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ProductCache{client: client}, nil
}

func productKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) Get(ctx context.Context, id uint) (*models.Product, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *ProductCache) Set(ctx context.Context, p *models.Product) {
	if c == nil || p == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	c.client.Set(ctx, productKey(p.ID), raw, productTTL)
}

func (c *ProductCache) Invalidate(ctx context.Context, id uint) {
	if c == nil {
		return
	}
	c.client.Del(ctx, productKey(id))
}

func (c *ProductCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
