package channel

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// 定义与频道相关的Redis键名
const (
	// BannedCacheKey 缓存序列化后的封禁频道列表。
	// 浏览器扩展会高频轮询这份列表，缓存让轮询不落到SQLite上。
	BannedCacheKey = "channel:banned_list"
)

// bannedCacheTTL 是封禁列表缓存条目的寿命。
// 失效主要靠删除键，但存在一个窗口：读取方刚从SQLite取到旧列表，
// 封禁事务提交并删除了缓存键，随后旧读取把过期的列表回填进来。
// TTL把这种陈旧的存活时间压到几分钟内，不必等下一次封禁变更。
const bannedCacheTTL = 5 * time.Minute

// CachedBannedEntry 是封禁列表中单个频道的缓存条目。
type CachedBannedEntry struct {
	ExternalID  string `json:"externalId"`
	DisplayName string `json:"displayName"`
}

// CachedBannedList 是在Redis中存储的完整封禁列表。
// Version 取封禁集合中最大的UpdatedAt（epoch毫秒），
// 轮询客户端发现版本号不变即可跳过重新拉取。
type CachedBannedList struct {
	Version  int64               `json:"version"`
	Count    int                 `json:"count"`
	Channels []CachedBannedEntry `json:"channels"`
}

// GetBannedCache 从Redis读取封禁列表缓存。
// 缓存未命中返回 (nil, nil)，属于正常情况。
func GetBannedCache() (*CachedBannedList, error) {
	result, err := database.RDB.Get(database.Ctx, BannedCacheKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list CachedBannedList
	if err := json.Unmarshal([]byte(result), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// SetBannedCache 将封禁列表写入Redis缓存。
func SetBannedCache(list *CachedBannedList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return database.RDB.Set(database.Ctx, BannedCacheKey, data, bannedCacheTTL).Err()
}

// InvalidateBannedCache 在封禁集合发生任何变化后（自动封禁、
// 管理员封禁/解封/删除）删除缓存，下一次读取会从SQLite重建。
// 缓存失效是尽力而为的操作：Redis不可用时只记录警告，
// 因为健康检查器会在Redis恢复后触发整体重建。
func InvalidateBannedCache() {
	if database.RDB == nil || !database.IsRedisHealthy() {
		return
	}
	if err := database.RDB.Del(database.Ctx, BannedCacheKey).Err(); err != nil {
		fmt.Printf("警告: 封禁列表缓存失效失败: %v\n", err)
	}
}
