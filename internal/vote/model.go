package vote

import "time"

// 投票值的合法取值。0在入口处即被拒绝。
const (
	ValueUp   = 1
	ValueDown = -1
)

// Vote 定义了访客对频道的投票记录。
// (ChannelID, VisitorToken) 上的复合唯一索引是防止并发下
// 产生重复投票行的机制本身，而不是事后的补救。
type Vote struct {
	ID uint `gorm:"primarykey" json:"-"`

	// ChannelID 指向被投票的频道（内部主键）
	ChannelID uint `gorm:"not null;uniqueIndex:idx_votes_channel_visitor" json:"-"`

	// VisitorToken 是访客的化名标识
	VisitorToken string `gorm:"not null;size:100;uniqueIndex:idx_votes_channel_visitor" json:"-"`

	// Value 是投票值，取值限于 {-1, +1}。
	// 访客改票时原地更新这一行，而不是追加新行。
	Value int `gorm:"not null" json:"value"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
