package startup

import (
	"fmt"

	"github.com/Hikan-Teki/deadnetguard/internal/admin"
	"github.com/Hikan-Teki/deadnetguard/internal/channel"
	"github.com/Hikan-Teki/deadnetguard/internal/report"
	"github.com/Hikan-Teki/deadnetguard/internal/vote"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := channel.PrimeDB(); err != nil {
		return err
	}
	if err := report.PrimeDB(); err != nil {
		return err
	}
	if err := vote.PrimeDB(); err != nil {
		return err
	}
	if err := admin.PrimeDB(); err != nil {
		return err
	}

	if err := channel.WarmupCache(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// 封禁列表是系统里唯一的缓存，重建它就是重建全部。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")
	if err := channel.RebuildBannedCache(); err != nil {
		return err
	}
	fmt.Println("缓存热重建完成。")
	return nil
}
