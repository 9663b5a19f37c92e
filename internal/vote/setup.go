package vote

import (
	"fmt"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
)

// PrimeDB 负责初始化vote模块的数据库表结构。
// (channel_id, visitor_token) 上的唯一索引在这里随迁移一起建立。
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Vote{}); err != nil {
		return fmt.Errorf("无法迁移vote表: %w", err)
	}
	fmt.Println("Vote数据库表迁移成功。")
	return nil
}
