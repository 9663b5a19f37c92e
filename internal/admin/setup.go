package admin

import (
	"fmt"
	"time"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/config"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
)

// PrimeDB 负责管理员模块的数据库初始化。
// 1. 迁移管理员和会话表结构
// 2. 从配置读取会话TTL和清扫周期
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Admin{}, &Session{}); err != nil {
		return fmt.Errorf("无法迁移管理员表: %w", err)
	}

	if cfg := config.Cfg; cfg != nil {
		if cfg.Session.TTLHours > 0 {
			sessionTTL = time.Duration(cfg.Session.TTLHours) * time.Hour
		}
		if cfg.Session.SweepIntervalMinutes > 0 {
			sweepInterval = time.Duration(cfg.Session.SweepIntervalMinutes) * time.Minute
		}
	}

	var count int64
	if err := database.DB.Model(&Admin{}).Count(&count).Error; err != nil {
		return fmt.Errorf("无法统计管理员数量: %w", err)
	}
	if count == 0 {
		fmt.Println("提示: 尚无管理员账号，可通过 /api/admin/bootstrap 创建首个管理员。")
	}

	return nil
}
