package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/zeebo/xxh3"
)

const membershipCacheTTL = 5 * time.Minute

// membershipCacheKey derives a short fixed-width key from the viewer
// id. Memcached limits key length and charset, so the plain form is
// hashed.
func membershipCacheKey(userID int64) string {
	h := xxh3.HashString(fmt.Sprintf("membership:community:%d", userID))
	return fmt.Sprintf("mbr:%016x", h)
}

// RedisMembershipCache caches viewer community-id sets in Redis. Cache
// errors degrade to misses.
type RedisMembershipCache struct {
	rdb *redis.Client
}

func NewRedisMembershipCache(rdb *redis.Client) *RedisMembershipCache {
	return &RedisMembershipCache{rdb: rdb}
}

func (c *RedisMembershipCache) CommunityIDs(ctx context.Context, userID int64) ([]int64, bool) {
	raw, err := c.rdb.Get(ctx, membershipCacheKey(userID)).Result()
	if err != nil {
		return nil, false
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func (c *RedisMembershipCache) StoreCommunityIDs(ctx context.Context, userID int64, ids []int64) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, membershipCacheKey(userID), raw, membershipCacheTTL)
}

func (c *RedisMembershipCache) Invalidate(ctx context.Context, userID int64) {
	c.rdb.Del(ctx, membershipCacheKey(userID))
}

// MemcachedMembershipCache caches viewer community-id sets in
// memcached.
type MemcachedMembershipCache struct {
	mc *memcache.Client
}

func NewMemcachedMembershipCache(mc *memcache.Client) *MemcachedMembershipCache {
	return &MemcachedMembershipCache{mc: mc}
}

func (c *MemcachedMembershipCache) CommunityIDs(ctx context.Context, userID int64) ([]int64, bool) {
	item, err := c.mc.Get(membershipCacheKey(userID))
	if err != nil {
		return nil, false
	}
	var ids []int64
	if err := json.Unmarshal(item.Value, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func (c *MemcachedMembershipCache) StoreCommunityIDs(ctx context.Context, userID int64, ids []int64) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	c.mc.Set(&memcache.Item{
		Key:        membershipCacheKey(userID),
		Value:      raw,
		Expiration: int32(membershipCacheTTL / time.Second),
	})
}

func (c *MemcachedMembershipCache) Invalidate(ctx context.Context, userID int64) {
	c.mc.Delete(membershipCacheKey(userID))
}

// LocalMembershipCache keeps viewer community-id sets in process
// memory. Suitable for single-node deployments and tests.
type LocalMembershipCache struct {
	store *gocache.Cache
}

func NewLocalMembershipCache() *LocalMembershipCache {
	return &LocalMembershipCache{
		store: gocache.New(membershipCacheTTL, 10*time.Minute),
	}
}

func (c *LocalMembershipCache) CommunityIDs(ctx context.Context, userID int64) ([]int64, bool) {
	v, ok := c.store.Get(membershipCacheKey(userID))
	if !ok {
		return nil, false
	}
	ids, ok := v.([]int64)
	return ids, ok
}

func (c *LocalMembershipCache) StoreCommunityIDs(ctx context.Context, userID int64, ids []int64) {
	c.store.Set(membershipCacheKey(userID), ids, gocache.DefaultExpiration)
}

func (c *LocalMembershipCache) Invalidate(ctx context.Context, userID int64) {
	c.store.Delete(membershipCacheKey(userID))
}
