package channel

import "gorm.io/gorm"

// 自动封禁阈值。两个条件必须同时满足才会触发封禁。
// 默认值由产品规则固定，可通过配置覆盖（见 setup.go）。
var (
	reportThreshold = 5
	scoreThreshold  = 3
)

// ConfigureThresholds 在启动时用配置值覆盖默认阈值。
// 非正数被忽略，保持默认值。
func ConfigureThresholds(report, score int) {
	if report > 0 {
		reportThreshold = report
	}
	if score > 0 {
		scoreThreshold = score
	}
}

// ShouldAutoBan 是纯决策函数：给定频道当前的计数器，
// 判断它是否达到了自动封禁条件。
func ShouldAutoBan(reportCount, score int) bool {
	return reportCount >= reportThreshold && score >= scoreThreshold
}

// EvaluateAutoBan 在每次计数器变动后被举报接收和投票账本调用。
// 已封禁的频道直接跳过：IsBanned是单向闩锁，分数回落不会自动解封，
// 解封只能由管理员执行。
// 必须在与触发写入相同的事务中调用，评估结果才能和计数器保持一致。
func EvaluateAutoBan(tx *gorm.DB, ch *Channel) error {
	if ch.IsBanned {
		return nil
	}
	if !ShouldAutoBan(ch.ReportCount, ch.Score) {
		return nil
	}

	updated, err := SetBanned(tx, ch.ID, true)
	if err != nil {
		return err
	}
	*ch = *updated
	return nil
}
