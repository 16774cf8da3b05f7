// Package redisstate 提供基于 Redis 的状态与缓存实现。
package redisstate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Kent0710/classroom-announcement-app/internal/domain"
	"github.com/Kent0710/classroom-announcement-app/internal/repository"
)

// cacheTTL 是计数缓存的过期时间。缓存漂移由后台对账任务兜底，
// 过期只是最后一道防线。
const cacheTTL = 30 * time.Minute

// RedisReactionCache 是 ReactionCacheRepository 接口的 Redis 实现。
// 每条公告对应一个 hash，field 为表情类型，value 为计数。
type RedisReactionCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisReactionCache 创建 RedisReactionCache 实例
func NewRedisReactionCache(client *redis.Client, keyPrefix string) *RedisReactionCache {
	if client == nil {
		panic("redis client cannot be nil for RedisReactionCache")
	}
	return &RedisReactionCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisReactionCache) key(announcementID uint) string {
	return fmt.Sprintf("%sreactions:%d", c.keyPrefix, announcementID)
}

// GetCounts 实现读取缓存的回应计数
func (c *RedisReactionCache) GetCounts(ctx context.Context, announcementID uint) (map[domain.ReactionType]int64, error) {
	values, err := c.client.HGetAll(ctx, c.key(announcementID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get reaction counts for announcement %d: %w", announcementID, err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound // 未命中，调用方回源数据库
	}
	counts := make(map[domain.ReactionType]int64, len(values))
	for field, value := range values {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue // 跳过损坏的 field，对账任务会重建
		}
		t := domain.ReactionType(field)
		if t.Valid() && n > 0 {
			counts[t] = n
		}
	}
	return counts, nil
}

// SetCounts 实现整体写入回应计数。
// 先删后写放在 pipeline 中执行，避免残留已归零的类型。
func (c *RedisReactionCache) SetCounts(ctx context.Context, announcementID uint, counts map[domain.ReactionType]int64) error {
	key := c.key(announcementID)
	fields := make(map[string]interface{}, len(counts)+1)
	for t, n := range counts {
		fields[string(t)] = n
	}
	// 哨兵 field 保证空计数也算命中，而不是缓存未命中
	fields["_cached"] = 1

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, cacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set reaction counts for announcement %d: %w", announcementID, err)
	}
	return nil
}

// Adjust 实现对某类型计数的增量调整
func (c *RedisReactionCache) Adjust(ctx context.Context, announcementID uint, t domain.ReactionType, delta int64) error {
	key := c.key(announcementID)
	// 只调整已存在的缓存，未命中时让读路径回源重建
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis: check reaction cache for announcement %d: %w", announcementID, err)
	}
	if exists == 0 {
		return nil
	}
	pipe := c.client.TxPipeline()
	pipe.HIncrBy(ctx, key, string(t), delta)
	pipe.Expire(ctx, key, cacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: adjust reaction count for announcement %d: %w", announcementID, err)
	}
	return nil
}

// Invalidate 实现删除计数缓存
func (c *RedisReactionCache) Invalidate(ctx context.Context, announcementID uint) error {
	if err := c.client.Del(ctx, c.key(announcementID)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate reaction cache for announcement %d: %w", announcementID, err)
	}
	return nil
}
