package database

import (
	"fmt"
	"log"
	"os"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB 初始化数据库连接
func InitDB(cfg config.SqliteConfig) {
	var err error

	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 在生产环境中可以设为Silent
			Colorful:      true,
		},
	)

	// 连接到SQLite数据库
	// _busy_timeout 让并发写事务排队等锁而不是立刻以SQLITE_BUSY失败；
	// _txlock=immediate 让写事务在BEGIN处就获取锁，
	// 避免延迟锁升级时两个读后写事务互相死锁
	// TranslateError 让唯一约束冲突被翻译为 gorm.ErrDuplicatedKey，
	// 投票去重和管理员引导逻辑依赖这个错误来识别并发冲突
	dsn := cfg.Path + "?_busy_timeout=5000&_txlock=immediate"
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})

	if err != nil {
		fmt.Println("连接数据库失败", err)
		panic(err)
	}

	fmt.Println("数据库连接成功！")
}
