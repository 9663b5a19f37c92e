package report

import (
	"context"
	"net/url"
	"time"

	"github.com/Hikan-Teki/deadnetguard/internal/channel"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
	"github.com/Hikan-Teki/deadnetguard/pkg/apperror"
	"gorm.io/gorm"
)

// storeTimeout 是单次存储操作的超时上限。
const storeTimeout = 5 * time.Second

// 输入长度上限
const (
	maxExternalIDLen  = 100
	maxDisplayNameLen = 200
	maxReasonLen      = 500
	maxEvidenceURLLen = 500
	maxTokenLen       = 100
)

// SubmitInput 是提交举报的输入参数。
type SubmitInput struct {
	ExternalID    string
	DisplayName   string
	Reason        string
	EvidenceURL   string
	ReporterToken string
}

// SubmitResult 是举报受理后的结果快照。
type SubmitResult struct {
	ExternalID  string `json:"externalId"`
	DisplayName string `json:"displayName"`
	ReportCount int    `json:"reportCount"`
	Score       int    `json:"score"`
	IsBanned    bool   `json:"isBanned"`
	Message     string `json:"message"`
}

// validateSubmitInput 校验举报输入的长度和格式。
// 校验失败都是客户端可修正的ValidationError。
func validateSubmitInput(in *SubmitInput) error {
	if in.ExternalID == "" {
		return apperror.Validation("externalId不能为空")
	}
	if len(in.ExternalID) > maxExternalIDLen {
		return apperror.Validation("externalId长度超出限制")
	}
	if in.DisplayName == "" {
		return apperror.Validation("displayName不能为空")
	}
	if len(in.DisplayName) > maxDisplayNameLen {
		return apperror.Validation("displayName长度超出限制")
	}
	if len(in.Reason) > maxReasonLen {
		return apperror.Validation("reason长度超出限制")
	}
	if len(in.ReporterToken) > maxTokenLen {
		return apperror.Validation("reporterToken长度超出限制")
	}
	if in.EvidenceURL != "" {
		if len(in.EvidenceURL) > maxEvidenceURLLen {
			return apperror.Validation("evidenceUrl长度超出限制")
		}
		u, err := url.ParseRequestURI(in.EvidenceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return apperror.Validation("evidenceUrl不是合法的URL")
		}
	}
	return nil
}

// Submit 受理一次举报。整个流程是一个逻辑单元，在单个事务中完成：
//  1. 按ExternalID对频道做upsert（首次举报即创建）
//  2. 插入一条不可变的举报记录
//  3. 调用自动封禁评估器
//  4. 返回频道更新后的状态
//
// 举报永远不会因为“已经举报过”而被拒绝——举报计数是累计且无上限的。
func Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if err := validateSubmitInput(&in); err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var ch *channel.Channel
	var newlyBanned bool
	err := database.DB.WithContext(opCtx).Transaction(func(tx *gorm.DB) error {
		var err error
		ch, err = channel.UpsertOnReport(tx, in.ExternalID, in.DisplayName)
		if err != nil {
			return err
		}

		newReport := Report{
			ChannelID:     ch.ID,
			ReporterToken: in.ReporterToken,
			Reason:        in.Reason,
			EvidenceURL:   in.EvidenceURL,
		}
		if err := tx.Create(&newReport).Error; err != nil {
			return err
		}

		wasBanned := ch.IsBanned
		if err := channel.EvaluateAutoBan(tx, ch); err != nil {
			return err
		}
		newlyBanned = !wasBanned && ch.IsBanned
		return nil
	})
	if err != nil {
		return nil, channel.WrapStoreErr("举报写入失败", err)
	}

	// 封禁集合发生了变化，事务提交后让缓存失效
	if newlyBanned {
		channel.InvalidateBannedCache()
	}

	message := "举报已受理"
	if newlyBanned {
		message = "举报已受理，该频道已达到封禁阈值"
	}
	return &SubmitResult{
		ExternalID:  ch.ExternalID,
		DisplayName: ch.DisplayName,
		ReportCount: ch.ReportCount,
		Score:       ch.Score,
		IsBanned:    ch.IsBanned,
		Message:     message,
	}, nil
}

// DeleteByChannel 删除指定频道的全部举报记录。
// 只在管理员级联删除频道的事务中被调用。
func DeleteByChannel(tx *gorm.DB, channelID uint) error {
	return tx.Where("channel_id = ?", channelID).Delete(&Report{}).Error
}

// CountByChannel 返回指定频道的举报行数。
// 用于校验 reportCount 与事实来源的一致性（测试和诊断用途）。
func CountByChannel(db *gorm.DB, channelID uint) (int64, error) {
	var count int64
	err := db.Model(&Report{}).Where("channel_id = ?", channelID).Count(&count).Error
	return count, err
}
