package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Hikan-Teki/deadnetguard/internal/channel"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
	"github.com/Hikan-Teki/deadnetguard/internal/report"
	"github.com/Hikan-Teki/deadnetguard/internal/vote"
	"github.com/Hikan-Teki/deadnetguard/pkg/apperror"
	"github.com/Hikan-Teki/deadnetguard/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// storeTimeout 是单次存储操作的超时上限。
const storeTimeout = 5 * time.Second

// sessionTTL 是会话的固定有效期，可在 setup.go 中被配置覆盖。
var sessionTTL = 24 * time.Hour

const (
	maxUsernameLen = 64
	minPasswordLen = 8
	maxPasswordLen = 128
)

// dummyHash 是一个固定的bcrypt哈希，用于在用户名不存在时
// 仍然执行一次密码比较，让"未知用户"和"密码错误"的耗时不可区分。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// LoginResult 是登录成功后下发的会话凭证。
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func validateCredentials(username, password string) error {
	if username == "" {
		return apperror.Validation("username不能为空")
	}
	if len(username) > maxUsernameLen {
		return apperror.Validation("username长度超出限制")
	}
	if len(password) < minPasswordLen {
		return apperror.Validation(fmt.Sprintf("密码长度不能少于%d个字符", minPasswordLen))
	}
	if len(password) > maxPasswordLen {
		return apperror.Validation("密码长度超出限制")
	}
	return nil
}

// Bootstrap 创建系统的第一个管理员，无需任何前置认证，
// 但全系统最多成功一次。"先查数量再插入"拆成两条语句是经典的
// check-then-act竞态，所以存在性检查和插入必须在同一个
// 可串行化事务里完成：N个并发的引导请求恰好一个成功，
// 其余全部得到AdminAlreadyExists。
func Bootstrap(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}

	// bcrypt是刻意的慢哈希，放在事务外计算，避免拉长持锁时间
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err = database.DB.WithContext(opCtx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Admin{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.AdminAlreadyExists("管理员已存在，引导流程已关闭")
		}
		return tx.Create(&Admin{Username: username, PasswordHash: string(hash)}).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		// 并发败者可能撞上username唯一索引而不是数量检查
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.AdminAlreadyExists("管理员已存在，引导流程已关闭")
		}
		return channel.WrapStoreErr("管理员引导失败", err)
	}

	fmt.Printf("首个管理员 %s 创建成功。\n", username)
	return nil
}

// Login 校验管理员凭证并签发会话。
// "未知用户"和"密码错误"返回完全相同的错误，防止账号枚举。
func Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperror.Validation("username和password不能为空")
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	db := database.DB.WithContext(opCtx)

	var adm Admin
	err := db.Where("username = ?", username).First(&adm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 等化耗时：对固定哈希做一次注定失败的比较
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, apperror.InvalidCredentials("用户名或密码错误")
	}
	if err != nil {
		return nil, channel.WrapStoreErr("登录失败", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(adm.PasswordHash), []byte(password)) != nil {
		return nil, apperror.InvalidCredentials("用户名或密码错误")
	}

	tok, err := token.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := Session{
		TokenDigest: token.Digest(tok),
		Username:    adm.Username,
		ExpiresAt:   time.Now().Add(sessionTTL),
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, channel.WrapStoreErr("会话创建失败", err)
	}

	// 顺带清扫过期会话，失败不影响本次登录
	if n, err := SweepExpiredSessions(ctx); err != nil {
		fmt.Printf("警告: 顺带清扫过期会话失败: %v\n", err)
	} else if n > 0 {
		fmt.Printf("顺带清扫了 %d 条过期会话。\n", n)
	}

	return &LoginResult{Token: tok, ExpiresAt: session.ExpiresAt}, nil
}

// Verify 验证会话令牌，返回会话所属的管理员用户名。
// 令牌缺失、未知或过期都返回Unauthenticated；
// 验证时发现的过期行作为失败的副作用被顺带删除。
func Verify(ctx context.Context, tok string) (string, error) {
	if tok == "" {
		return "", apperror.Unauthenticated("缺少会话令牌")
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	db := database.DB.WithContext(opCtx)

	var session Session
	err := db.Where("token_digest = ?", token.Digest(tok)).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperror.Unauthenticated("会话无效")
	}
	if err != nil {
		return "", channel.WrapStoreErr("会话验证失败", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if err := db.Delete(&session).Error; err != nil {
			fmt.Printf("警告: 删除过期会话失败: %v\n", err)
		}
		return "", apperror.Unauthenticated("会话已过期")
	}
	return session.Username, nil
}

// Logout 删除会话。会话不存在不视为错误，登出是幂等的。
func Logout(ctx context.Context, tok string) error {
	if tok == "" {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err := database.DB.WithContext(opCtx).
		Where("token_digest = ?", token.Digest(tok)).
		Delete(&Session{}).Error
	if err != nil {
		return channel.WrapStoreErr("登出失败", err)
	}
	return nil
}

// ChangePassword 修改管理员密码。
// 必须先用当前密码重新验证；成功后该管理员的所有会话全部作废，
// 任何地方都需要重新登录。
func ChangePassword(ctx context.Context, tok, currentPassword, newPassword string) error {
	username, err := Verify(ctx, tok)
	if err != nil {
		return err
	}
	if err := validateCredentials(username, newPassword); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	db := database.DB.WithContext(opCtx)

	var adm Admin
	if err := db.Where("username = ?", username).First(&adm).Error; err != nil {
		return channel.WrapStoreErr("读取管理员失败", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(adm.PasswordHash), []byte(currentPassword)) != nil {
		return apperror.InvalidCredentials("当前密码错误")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&adm).Update("password_hash", string(newHash)).Error; err != nil {
			return err
		}
		// 作废该管理员的全部会话
		return tx.Where("username = ?", username).Delete(&Session{}).Error
	})
	if err != nil {
		return channel.WrapStoreErr("修改密码失败", err)
	}

	fmt.Printf("管理员 %s 修改了密码，其所有会话已作废。\n", username)
	return nil
}

// SweepExpiredSessions 删除所有已过期的会话行，返回删除数量。
// 登录时顺带调用，后台清扫器定期调用。
func SweepExpiredSessions(ctx context.Context) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	result := database.DB.WithContext(opCtx).
		Where("expires_at < ?", time.Now()).
		Delete(&Session{})
	if result.Error != nil {
		return 0, channel.WrapStoreErr("清扫过期会话失败", result.Error)
	}
	return result.RowsAffected, nil
}

// SetChannelBan 是管理员手动封禁/解封的入口。
// 它绕过自动评估器直接设置状态；这是唯一能把IsBanned复位的路径。
func SetChannelBan(ctx context.Context, externalID string, banned bool) (*channel.Channel, error) {
	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var ch *channel.Channel
	err := database.DB.WithContext(opCtx).Transaction(func(tx *gorm.DB) error {
		found, err := channel.GetByExternalID(tx, externalID)
		if err != nil {
			return err
		}
		ch, err = channel.SetBanned(tx, found.ID, banned)
		return err
	})
	if err != nil {
		return nil, channel.WrapStoreErr("更新封禁状态失败", err)
	}

	channel.InvalidateBannedCache()
	return ch, nil
}

// DeleteChannel 删除频道，并在同一事务中级联删除它的举报和投票。
func DeleteChannel(ctx context.Context, externalID string) error {
	opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var wasBanned bool
	err := database.DB.WithContext(opCtx).Transaction(func(tx *gorm.DB) error {
		ch, err := channel.GetByExternalID(tx, externalID)
		if err != nil {
			return err
		}
		wasBanned = ch.IsBanned

		if err := vote.DeleteByChannel(tx, ch.ID); err != nil {
			return err
		}
		if err := report.DeleteByChannel(tx, ch.ID); err != nil {
			return err
		}
		return channel.Delete(tx, ch.ID)
	})
	if err != nil {
		return channel.WrapStoreErr("删除频道失败", err)
	}

	// 被删除的频道曾在封禁列表里，列表内容发生了变化
	if wasBanned {
		channel.InvalidateBannedCache()
	}
	return nil
}
