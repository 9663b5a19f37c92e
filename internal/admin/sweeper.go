package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/Hikan-Teki/deadnetguard/pkg/lifecycle"
)

// sweepInterval 是后台会话清扫的周期，可在 setup.go 中被配置覆盖。
var sweepInterval = 30 * time.Minute

// StartSessionSweeper 启动后台会话清扫器。
// 过期会话主要靠验证时的顺带删除来淘汰，但从不回访的会话
// 会一直留在表里，清扫器负责兜底回收这部分存储。
func StartSessionSweeper(handle *lifecycle.Handle) {
	go func() {
		defer handle.Close()
		fmt.Printf("后台会话清扫器已启动，每 %v 执行一次。\n", sweepInterval)

		for {
			if err := handle.Sleep(sweepInterval); err != nil {
				fmt.Println("后台会话清扫器已停止。")
				return
			}

			n, err := SweepExpiredSessions(context.Background())
			if err != nil {
				fmt.Printf("警告: 后台清扫过期会话失败: %v\n", err)
				continue
			}
			if n > 0 {
				fmt.Printf("后台清扫了 %d 条过期会话。\n", n)
			}
		}
	}()
}
