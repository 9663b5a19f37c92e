package vote

import (
	"context"
	"errors"
	"time"

	"github.com/Hikan-Teki/deadnetguard/internal/channel"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
	"github.com/Hikan-Teki/deadnetguard/pkg/apperror"
	"gorm.io/gorm"
)

// storeTimeout 是单次存储操作的超时上限。
const storeTimeout = 5 * time.Second

const maxTokenLen = 100

// CastResult 是投票成功后的结果快照。
type CastResult struct {
	ChannelID string `json:"channelId"`
	Score     int    `json:"score"`
	IsBanned  bool   `json:"isBanned"`
}

// VoteStatus 是访客查询自己投票状态的结果。
type VoteStatus struct {
	Voted bool `json:"voted"`
	Value int  `json:"value"`
}

// Cast 处理一次投票，保证每个(频道, 访客)至多一条投票行：
//   - 首次投票: 插入新行，delta = value
//   - 重复相同投票: 返回DuplicateVote错误，不产生任何写入
//   - 改票: 原地更新Value，delta = 2*value——旧票的影响必须先被撤销，
//     再施加新票，所以修正量不是单纯的value
//
// delta在与投票写入相同的事务中原子地累加到频道score上，
// 随后触发自动封禁评估。
func Cast(ctx context.Context, externalID, visitorToken string, value int) (*CastResult, error) {
	if value != ValueUp && value != ValueDown {
		return nil, apperror.Validation("投票值只能是 -1 或 +1")
	}
	if visitorToken == "" {
		return nil, apperror.Validation("visitorToken不能为空")
	}
	if len(visitorToken) > maxTokenLen {
		return nil, apperror.Validation("visitorToken长度超出限制")
	}
	if externalID == "" {
		return nil, apperror.Validation("channelId不能为空")
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var ch *channel.Channel
	var newlyBanned bool
	err := database.DB.WithContext(opCtx).Transaction(func(tx *gorm.DB) error {
		// 投票不会创建频道：未知频道直接报NotFound
		existing, err := channel.GetByExternalID(tx, externalID)
		if err != nil {
			return err
		}

		delta, err := upsertVoteRow(tx, existing.ID, visitorToken, value)
		if err != nil {
			return err
		}

		ch, err = channel.ApplyVoteDelta(tx, existing.ID, delta)
		if err != nil {
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
		return nil, channel.WrapStoreErr("投票写入失败", err)
	}

	if newlyBanned {
		channel.InvalidateBannedCache()
	}

	return &CastResult{
		ChannelID: ch.ExternalID,
		Score:     ch.Score,
		IsBanned:  ch.IsBanned,
	}, nil
}

// upsertVoteRow 在事务中写入或更新投票行，返回应施加到score上的delta。
func upsertVoteRow(tx *gorm.DB, channelID uint, visitorToken string, value int) (int, error) {
	var existing Vote
	err := tx.Where("channel_id = ? AND visitor_token = ?", channelID, visitorToken).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		newVote := Vote{
			ChannelID:    channelID,
			VisitorToken: visitorToken,
			Value:        value,
		}
		createErr := tx.Create(&newVote).Error
		if createErr == nil {
			return value, nil
		}
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return 0, createErr
		}
		// 同一访客的并发首投撞上了唯一索引：重读后按已有投票处理
		if err := tx.Where("channel_id = ? AND visitor_token = ?", channelID, visitorToken).First(&existing).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	// 重复提交相同的投票是硬错误，而不是静默no-op
	if existing.Value == value {
		return 0, apperror.DuplicateVote("已经投过相同的票")
	}

	// 改票：原地更新，不追加新行
	if err := tx.Model(&existing).Update("value", value).Error; err != nil {
		return 0, err
	}
	return 2 * value, nil
}

// Status 是无副作用的纯读取，供客户端渲染自己的投票状态。
// 频道或投票不存在都不是错误，统一返回未投票。
func Status(ctx context.Context, externalID, visitorToken string) (*VoteStatus, error) {
	if externalID == "" || visitorToken == "" {
		return &VoteStatus{}, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	db := database.DB.WithContext(opCtx)

	ch, err := channel.GetByExternalID(db, externalID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return &VoteStatus{}, nil
		}
		return nil, channel.WrapStoreErr("查询投票状态失败", err)
	}

	var v Vote
	err = db.Where("channel_id = ? AND visitor_token = ?", ch.ID, visitorToken).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &VoteStatus{}, nil
	}
	if err != nil {
		return nil, channel.WrapStoreErr("查询投票状态失败", err)
	}
	return &VoteStatus{Voted: true, Value: v.Value}, nil
}

// DeleteByChannel 删除指定频道的全部投票记录。
// 只在管理员级联删除频道的事务中被调用。
func DeleteByChannel(tx *gorm.DB, channelID uint) error {
	return tx.Where("channel_id = ?", channelID).Delete(&Vote{}).Error
}
