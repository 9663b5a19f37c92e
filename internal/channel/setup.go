package channel

import (
	"fmt"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/config"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
)

// PrimeDB 负责初始化channel模块：迁移表结构并应用配置的封禁阈值。
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Channel{}); err != nil {
		return fmt.Errorf("无法迁移channel表: %w", err)
	}
	fmt.Println("Channel数据库表迁移成功。")

	if config.Cfg != nil {
		ConfigureThresholds(config.Cfg.Moderation.ReportThreshold, config.Cfg.Moderation.ScoreThreshold)
	}
	fmt.Printf("自动封禁阈值: 举报数>=%d 且 分数>=%d。\n", reportThreshold, scoreThreshold)
	return nil
}

// WarmupCache 在启动时把封禁列表预热到Redis，
// 让扩展的第一波轮询就能命中缓存。
func WarmupCache() error {
	if database.RDB == nil {
		fmt.Println("Redis未启用，跳过封禁列表缓存预热。")
		return nil
	}
	return RebuildBannedCache()
}
