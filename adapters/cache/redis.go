package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"salondesk/domain/ticket"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every cache key
const KeyPrefix = "crm:sheets:"

// Redis shares loaded tickets between the UI and API processes
type Redis struct {
	client redis.Cmdable
}

// NewRedis connects to addr and verifies the connection
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Redis{client: client}, nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

// Get reads an entry. Redis errors count as a miss so the caller reloads.
func (r *Redis) Get(ctx context.Context, key string) ([]ticket.Ticket, bool) {
	data, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[RedisCache] Get %s failed: %v", key, err)
		}
		return nil, false
	}

	var tickets []ticket.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		log.Printf("[RedisCache] Dropping undecodable entry %s: %v", key, err)
		return nil, false
	}
	return tickets, true
}

// Set stores tickets as JSON with a TTL
func (r *Redis) Set(ctx context.Context, key string, tickets []ticket.Ticket, ttl time.Duration) error {
	data, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := r.client.Set(ctx, KeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Clear deletes every key under the prefix
func (r *Redis) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, KeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
