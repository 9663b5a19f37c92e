package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
	"github.com/Hikan-Teki/deadnetguard/pkg/apperror"
	"gorm.io/gorm"
)

// storeTimeout 是单次存储操作的超时上限。
// 超时后操作以Transient错误返回，调用方可以安全地退避重试。
const storeTimeout = 5 * time.Second

// PendingChannelResponse 是待审阅频道列表的单条响应。
type PendingChannelResponse struct {
	ExternalID  string `json:"externalId"`
	DisplayName string `json:"displayName"`
	ReportCount int    `json:"reportCount"`
	Score       int    `json:"score"`
}

// WrapStoreErr 将存储层的超时/取消和SQLite忙锁翻译为Transient分类，
// 其余错误原样向上传递（业务分类错误已在存储层标注）。
func WrapStoreErr(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || isBusyErr(err) {
		return apperror.Transient(msg, err)
	}
	return err
}

// isBusyErr 识别SQLite的忙锁错误（busy_timeout耗尽后的SQLITE_BUSY
// 和SQLITE_LOCKED）。这类冲突是暂时的，调用方退避重试即可成功，
// 不应被当作内部错误对待。
func isBusyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// buildBannedList 直接从SQLite构建封禁列表。
// Version 取封禁集合中最大的UpdatedAt（epoch毫秒），集合为空时为0。
func buildBannedList(db *gorm.DB) (*CachedBannedList, error) {
	channels, err := ListBanned(db)
	if err != nil {
		return nil, err
	}

	list := &CachedBannedList{
		Count:    len(channels),
		Channels: make([]CachedBannedEntry, 0, len(channels)),
	}
	for _, ch := range channels {
		if v := ch.UpdatedAt.UnixMilli(); v > list.Version {
			list.Version = v
		}
		list.Channels = append(list.Channels, CachedBannedEntry{
			ExternalID:  ch.ExternalID,
			DisplayName: ch.DisplayName,
		})
	}
	return list, nil
}

// GetBannedList 返回封禁频道列表。
// Redis健康时优先走缓存；未命中则从SQLite构建并回填缓存；
// Redis不可用时降级为直接查询SQLite。
func GetBannedList(ctx context.Context) (*CachedBannedList, error) {
	useCache := database.RDB != nil && database.IsRedisHealthy()

	if useCache {
		cached, err := GetBannedCache()
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			fmt.Printf("警告: 读取封禁列表缓存失败，降级为查询SQLite: %v\n", err)
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	list, err := buildBannedList(database.DB.WithContext(opCtx))
	if err != nil {
		return nil, WrapStoreErr("查询封禁列表失败", err)
	}

	if useCache {
		if err := SetBannedCache(list); err != nil {
			fmt.Printf("警告: 回填封禁列表缓存失败: %v\n", err)
		}
	}
	return list, nil
}

// GetPendingList 返回已被举报但尚未封禁的频道，按热度排序。
func GetPendingList(ctx context.Context) ([]PendingChannelResponse, error) {
	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	channels, err := ListPending(database.DB.WithContext(opCtx))
	if err != nil {
		return nil, WrapStoreErr("查询待审阅列表失败", err)
	}

	out := make([]PendingChannelResponse, 0, len(channels))
	for _, ch := range channels {
		out = append(out, PendingChannelResponse{
			ExternalID:  ch.ExternalID,
			DisplayName: ch.DisplayName,
			ReportCount: ch.ReportCount,
			Score:       ch.Score,
		})
	}
	return out, nil
}

// RebuildBannedCache 从SQLite全量重建封禁列表缓存。
// 在启动预热和Redis重启恢复后被调用。
func RebuildBannedCache() error {
	if database.RDB == nil {
		return nil
	}
	list, err := buildBannedList(database.DB)
	if err != nil {
		return fmt.Errorf("无法从SQLite构建封禁列表: %w", err)
	}
	if err := SetBannedCache(list); err != nil {
		return fmt.Errorf("无法写入封禁列表缓存: %w", err)
	}
	fmt.Printf("封禁列表缓存重建完成，共 %d 个频道。\n", list.Count)
	return nil
}
