package admin

import "time"

// Admin 定义了管理员凭证的持久化模型。
// 系统支持多个管理员，但引导流程只允许在零管理员时创建第一个。
type Admin struct {
	ID uint `gorm:"primarykey" json:"-"`

	// Username 是管理员登录名，全局唯一
	Username string `gorm:"uniqueIndex;not null;size:64" json:"username"`

	// PasswordHash 是加盐慢哈希（bcrypt）后的密码。
	// 不可逆，并且永远不允许出现在日志里。
	PasswordHash string `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Session 定义了管理员会话的持久化模型。
// 会话是持久化在SQLite中的行，而不是进程内的map：
// 重启不丢会话，多实例部署时也不会出现真相分裂。
type Session struct {
	ID uint `gorm:"primarykey" json:"-"`

	// TokenDigest 是会话令牌的SHA-256摘要，全局唯一。
	// 令牌本身只在登录响应中出现一次，数据库不保存明文。
	TokenDigest string `gorm:"uniqueIndex;not null;size:64" json:"-"`

	// Username 是会话所属的管理员
	Username string `gorm:"index;not null;size:64" json:"username"`

	// ExpiresAt 是固定TTL的过期时间。
	// 过期的行在验证时被顺带删除，后台清扫器也会定期清理。
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`

	CreatedAt time.Time `json:"-"`
}
