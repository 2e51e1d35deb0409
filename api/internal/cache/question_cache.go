package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"script-designer/api/internal/script"
)

// QuestionCache keeps normalized question sets in Redis.
type QuestionCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewQuestionCache(client *redis.Client, ttl time.Duration) *QuestionCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &QuestionCache{client: client, ttl: ttl, prefix: "script-designer:"}
}

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

func (c *QuestionCache) key(k string) string { return c.prefix + k }

func (c *QuestionCache) Get(ctx context.Context, key string) (script.QuestionSet, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return script.QuestionSet{}, false, nil
	}
	if err != nil {
		return script.QuestionSet{}, false, err
	}
	var set script.QuestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		return script.QuestionSet{}, false, nil
	}
	return set, true, nil
}

func (c *QuestionCache) Set(ctx context.Context, key string, set script.QuestionSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}
