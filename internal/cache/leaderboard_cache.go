package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache handles Redis ZSET operations for per-game solve counts
type LeaderboardCache interface {
	IncrSolves(ctx context.Context, gameID, playerID, playerName string) error
	Top(ctx context.Context, gameID string, limit int) ([]LeaderboardEntry, error)
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Solves     int    `json:"solves"`
	Rank       int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *leaderboardCache) key(gameID string) string {
	return fmt.Sprintf("game:%s:lb", gameID)
}

func (c *leaderboardCache) namesKey(gameID string) string {
	return fmt.Sprintf("game:%s:names", gameID)
}

func (c *leaderboardCache) IncrSolves(ctx context.Context, gameID, playerID, playerName string) error {
	pipe := c.client.TxPipeline()
	pipe.ZIncrBy(ctx, c.key(gameID), 1, playerID)
	pipe.HSet(ctx, c.namesKey(gameID), playerID, playerName)
	pipe.Expire(ctx, c.key(gameID), c.ttl)
	pipe.Expire(ctx, c.namesKey(gameID), c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *leaderboardCache) Top(ctx context.Context, gameID string, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(gameID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []LeaderboardEntry{}, nil
	}

	ids := make([]string, len(results))
	for i, z := range results {
		ids[i] = z.Member.(string)
	}
	names, err := c.client.HMGet(ctx, c.namesKey(gameID), ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			PlayerID: ids[i],
			Solves:   int(z.Score),
			Rank:     i + 1,
		}
		if name, ok := names[i].(string); ok {
			entries[i].PlayerName = name
		}
	}
	return entries, nil
}
