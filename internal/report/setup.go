package report

import (
	"fmt"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
)

// PrimeDB 负责初始化report模块的数据库表结构。
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Report{}); err != nil {
		return fmt.Errorf("无法迁移report表: %w", err)
	}
	fmt.Println("Report数据库表迁移成功。")
	return nil
}
