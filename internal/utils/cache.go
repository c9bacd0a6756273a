package utils

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache 读多写少的聚合结果缓存。值以 JSON 保存，未命中或出错都按未命中处理
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	DeletePrefix(ctx context.Context, prefix string)
	// Generation 读取计数器当前值，不存在时为 0；ok 为 false 表示读取失败
	Generation(ctx context.Context, key string) (gen int64, ok bool)
	// Bump 原子地将计数器加一
	Bump(ctx context.Context, key string)
}

// CacheItem 包装缓存数据和过期时间
type CacheItem struct {
	Data      []byte
	ExpiresAt time.Time
}

// LocalCache 进程内 LRU 缓存
type LocalCache struct {
	lruCache *lru.Cache[string, CacheItem]

	// 计数器不放进 LRU，避免被淘汰后归零
	mu          sync.Mutex
	generations map[string]int64
}

// NewLocalCache 创建容量为 size 的 LRU 缓存
func NewLocalCache(size int) (*LocalCache, error) {
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		return nil, err
	}
	return &LocalCache{lruCache: l, generations: make(map[string]int64)}, nil
}

// Set 设置缓存，TTL 为过期时间
func (c *LocalCache) Set(_ context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get 获取缓存，不存在或已过期返回 false
func (c *LocalCache) Get(_ context.Context, key string, dest any) bool {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return false
	}

	// 检查过期
	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return false
	}

	return json.Unmarshal(val.Data, dest) == nil
}

// DeletePrefix 删除指定前缀的全部缓存
func (c *LocalCache) DeletePrefix(_ context.Context, prefix string) {
	for _, key := range c.lruCache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lruCache.Remove(key)
		}
	}
}

func (c *LocalCache) Generation(_ context.Context, key string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key], true
}

func (c *LocalCache) Bump(_ context.Context, key string) {
	c.mu.Lock()
	c.generations[key]++
	c.mu.Unlock()
}

// RedisCache 多实例部署时共享的缓存
type RedisCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisCache parses a redis:// URL and pings the server.
func NewRedisCache(ctx context.Context, url string, logger *zap.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &RedisCache{rdb: rdb, logger: logger}, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) bool {
	value, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return json.Unmarshal(value, dest) == nil
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) {
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("redis scan failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("redis del failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

func (c *RedisCache) Generation(ctx context.Context, key string) (int64, bool) {
	gen, err := c.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		c.logger.Warn("redis get generation failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (c *RedisCache) Bump(ctx context.Context, key string) {
	if err := c.rdb.Incr(ctx, key).Err(); err != nil {
		c.logger.Warn("redis incr failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
