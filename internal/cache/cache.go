package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vidscribe/vidscribe/pkg/models"
)

// Cache provides task status caching using Redis
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func statusKey(taskID string) string {
	return fmt.Sprintf("task_status:%s", taskID)
}

// SetTaskDetail caches a task status payload
func (c *Cache) SetTaskDetail(ctx context.Context, detail *models.TaskDetail, ttl time.Duration) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal task detail: %w", err)
	}

	return c.client.Set(ctx, statusKey(detail.Task.ID), data, ttl).Err()
}

// GetTaskDetail retrieves a cached task status payload. A cache miss returns
// nil, nil.
func (c *Cache) GetTaskDetail(ctx context.Context, taskID string) (*models.TaskDetail, error) {
	data, err := c.client.Get(ctx, statusKey(taskID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get task detail from cache: %w", err)
	}

	var detail models.TaskDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task detail: %w", err)
	}

	return &detail, nil
}

// InvalidateTask removes a task's cached status. Called after every status
// write so readers never see a stale terminal state.
func (c *Cache) InvalidateTask(ctx context.Context, taskID string) error {
	return c.client.Del(ctx, statusKey(taskID)).Err()
}
