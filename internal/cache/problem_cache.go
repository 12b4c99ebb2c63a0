package cache

import (
	"context"
	"encoding/json"
	"time"

	"codeduel/internal/model"

	"github.com/redis/go-redis/v9"
)

const problemPoolKey = "problems:pool"

// ProblemCache keeps a pool of problems as a Redis set of JSON documents
type ProblemCache interface {
	Add(ctx context.Context, problems ...*model.Problem) error
	// Pop removes and returns a random problem; nil when the pool is empty
	Pop(ctx context.Context) (*model.Problem, error)
	Size(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}

type problemCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProblemCache creates a new problem pool cache
func NewProblemCache(client *redis.Client) ProblemCache {
	return &problemCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *problemCache) Add(ctx context.Context, problems ...*model.Problem) error {
	if len(problems) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(problems))
	for _, p := range problems {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		members = append(members, data)
	}

	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, problemPoolKey, members...)
	pipe.Expire(ctx, problemPoolKey, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *problemCache) Pop(ctx context.Context) (*model.Problem, error) {
	data, err := c.client.SPop(ctx, problemPoolKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p model.Problem
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *problemCache) Size(ctx context.Context) (int64, error) {
	return c.client.SCard(ctx, problemPoolKey).Result()
}

func (c *problemCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, problemPoolKey).Err()
}
