package report

import "time"

// Report 定义了单次举报事件的持久化模型。
// 举报是只追加的不可变记录：除频道被管理员级联删除外，
// 它永远不会被更新或删除。
type Report struct {
	ID uint `gorm:"primarykey" json:"-"`

	// ChannelID 指向被举报的频道（多对一）
	ChannelID uint `gorm:"index;not null" json:"channelId"`

	// ReporterToken 是举报者的化名标识，可选。
	// 它不用于去重：同一举报者的重复举报全部计数。
	ReporterToken string `gorm:"size:100" json:"-"`

	// Reason 是举报理由，可选的自由文本
	Reason string `gorm:"size:500" json:"reason"`

	// EvidenceURL 是佐证链接，可选，必须是合法URL
	EvidenceURL string `gorm:"size:500" json:"evidenceUrl"`

	CreatedAt time.Time `json:"createdAt"`
}
