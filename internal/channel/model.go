package channel

import "time"

// Channel 定义了被举报频道在SQLite数据库中的持久化模型。
// 它是整个审核引擎的核心实体，计数器字段只允许在事务内被修改。
type Channel struct {
	// ID 是内部主键，创建后不可变
	ID uint `gorm:"primarykey" json:"-"`

	// ExternalID 是频道在视频平台上的唯一标识，首次举报时写入后不可变
	ExternalID string `gorm:"uniqueIndex;not null;size:100" json:"externalId"`

	// DisplayName 是频道的显示名称，以最后一次举报观察到的名称为准
	DisplayName string `gorm:"size:200" json:"displayName"`

	// ReportCount 是累计举报次数，单调不减，每条举报记录加一
	ReportCount int `gorm:"not null;default:0" json:"reportCount"`

	// Score 是信誉分：每条举报贡献+1，再加上所有现存投票的有符号和。
	// 投票被修改时只计其当前值，不叠加历史。
	Score int `gorm:"not null;default:0" json:"score"`

	// IsBanned 是封禁状态。自动路径下它是单向闩锁：一旦置真，
	// 即使分数回落也不会自动解封，只有管理员可以复位。
	IsBanned bool `gorm:"not null;default:false;index" json:"isBanned"`

	// UpdatedAt 同时充当版本戳，客户端用封禁集合的最大UpdatedAt判断列表是否变化
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
