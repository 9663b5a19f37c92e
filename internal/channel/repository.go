package channel

import (
	"errors"

	"github.com/Hikan-Teki/deadnetguard/pkg/apperror"
	"gorm.io/gorm"
)

// 本文件是频道账本（Channel Ledger）的存储层。
// 所有写操作都接收一个 *gorm.DB 事务句柄，由调用方保证它们和
// 触发事件（举报行、投票行）的写入处于同一个事务中，
// 这样计数器永远不会和事实来源的事件行产生偏差。

// UpsertOnReport 按ExternalID查找频道；不存在则以
// reportCount=1, score=1 创建，存在则原子地将两个计数器各加一，
// 并用本次举报观察到的名称刷新DisplayName。
func UpsertOnReport(tx *gorm.DB, externalID, displayName string) (*Channel, error) {
	var ch Channel
	err := tx.Where("external_id = ?", externalID).First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ch = Channel{
			ExternalID:  externalID,
			DisplayName: displayName,
			ReportCount: 1,
			Score:       1,
		}
		createErr := tx.Create(&ch).Error
		if createErr == nil {
			return &ch, nil
		}
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return nil, createErr
		}
		// 并发的首次举报已经抢先创建了该频道，转为累加路径
		if err := tx.Where("external_id = ?", externalID).First(&ch).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	// 用SQL表达式做原子自增，避免读-改-写丢失更新
	updates := map[string]interface{}{
		"report_count": gorm.Expr("report_count + 1"),
		"score":        gorm.Expr("score + 1"),
		"display_name": displayName,
	}
	if err := tx.Model(&Channel{}).Where("id = ?", ch.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	// 重新读取，返回累加后的计数器
	if err := tx.First(&ch, ch.ID).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

// ApplyVoteDelta 原子地将delta累加到频道的score上，并返回更新后的行。
// 频道不存在时返回NotFound——投票永远不会创建频道。
func ApplyVoteDelta(tx *gorm.DB, channelID uint, delta int) (*Channel, error) {
	result := tx.Model(&Channel{}).Where("id = ?", channelID).
		Update("score", gorm.Expr("score + ?", delta))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFound("频道不存在")
	}

	var ch Channel
	if err := tx.First(&ch, channelID).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

// SetBanned 是幂等的封禁状态设置器，自动路径和管理员路径共用。
// 状态未发生变化时不产生写入（UpdatedAt版本戳也不会变动）。
func SetBanned(tx *gorm.DB, channelID uint, banned bool) (*Channel, error) {
	var ch Channel
	if err := tx.First(&ch, channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("频道不存在")
		}
		return nil, err
	}

	if ch.IsBanned == banned {
		return &ch, nil
	}

	if err := tx.Model(&ch).Update("is_banned", banned).Error; err != nil {
		return nil, err
	}
	ch.IsBanned = banned
	return &ch, nil
}

// GetByID 按内部主键读取频道。
func GetByID(db *gorm.DB, channelID uint) (*Channel, error) {
	var ch Channel
	if err := db.First(&ch, channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("频道不存在")
		}
		return nil, err
	}
	return &ch, nil
}

// GetByExternalID 按平台频道ID读取频道。
func GetByExternalID(db *gorm.DB, externalID string) (*Channel, error) {
	var ch Channel
	if err := db.Where("external_id = ?", externalID).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("频道不存在")
		}
		return nil, err
	}
	return &ch, nil
}

// Delete 删除频道本身。关联的举报和投票由调用方
// （admin模块）在同一事务中先行删除，保证级联的原子性。
func Delete(tx *gorm.DB, channelID uint) error {
	result := tx.Delete(&Channel{}, channelID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("频道不存在")
	}
	return nil
}

// ListBanned 返回所有处于封禁状态的频道。
func ListBanned(db *gorm.DB) ([]Channel, error) {
	var channels []Channel
	if err := db.Where("is_banned = ?", true).Order("updated_at desc").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// ListPending 返回已被举报但尚未封禁的频道，
// 按score降序、reportCount降序排列，供管理员审阅队列使用。
func ListPending(db *gorm.DB) ([]Channel, error) {
	var channels []Channel
	err := db.Where("is_banned = ? AND report_count >= ?", false, 1).
		Order("score desc, report_count desc").
		Find(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}
