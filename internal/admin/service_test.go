package admin

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Hikan-Teki/deadnetguard/internal/channel"
	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
	"github.com/Hikan-Teki/deadnetguard/internal/report"
	"github.com/Hikan-Teki/deadnetguard/internal/vote"
	"github.com/Hikan-Teki/deadnetguard/pkg/apperror"
	"github.com/Hikan-Teki/deadnetguard/pkg/token"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 用临时SQLite文件初始化测试数据库。
// _txlock=immediate 让并发事务在BEGIN处排队，而不是在锁升级时死锁。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	err = db.AutoMigrate(&Admin{}, &Session{}, &channel.Channel{}, &report.Report{}, &vote.Vote{})
	if err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	database.DB = db
	database.RDB = nil
	return db
}

func mustBootstrap(t *testing.T, username, password string) {
	t.Helper()
	if err := Bootstrap(context.Background(), username, password); err != nil {
		t.Fatalf("引导管理员失败: %v", err)
	}
}

func mustLogin(t *testing.T, username, password string) *LoginResult {
	t.Helper()
	result, err := Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	return result
}

func TestBootstrapOnlySucceedsOnce(t *testing.T) {
	setupTestDB(t)

	mustBootstrap(t, "admin", "correct-horse")

	err := Bootstrap(context.Background(), "another", "battery-staple")
	if !apperror.Is(err, apperror.KindAdminAlreadyExists) {
		t.Fatalf("第二次引导应返回AdminAlreadyExists，实际为 %v", err)
	}
}

func TestBootstrapValidation(t *testing.T) {
	setupTestDB(t)

	if err := Bootstrap(context.Background(), "", "correct-horse"); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("空username应被拒绝，实际为 %v", err)
	}
	if err := Bootstrap(context.Background(), "admin", "short"); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("过短的密码应被拒绝，实际为 %v", err)
	}
}

func TestBootstrapConcurrentRace(t *testing.T) {
	db := setupTestDB(t)

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			errs[idx] = Bootstrap(context.Background(), "admin", "correct-horse")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else if !apperror.Is(err, apperror.KindAdminAlreadyExists) {
			t.Fatalf("并发败者应得到AdminAlreadyExists，实际为 %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("并发引导应恰好成功一次，实际成功 %d 次", successes)
	}

	var count int64
	db.Model(&Admin{}).Count(&count)
	if count != 1 {
		t.Fatalf("应只有1个管理员，实际有 %d 个", count)
	}
}

func TestLoginAndVerify(t *testing.T) {
	db := setupTestDB(t)
	mustBootstrap(t, "admin", "correct-horse")

	result := mustLogin(t, "admin", "correct-horse")
	if result.Token == "" {
		t.Fatal("登录应下发会话令牌")
	}
	if !result.ExpiresAt.After(time.Now()) {
		t.Fatal("会话过期时间应在将来")
	}

	username, err := Verify(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("验证失败: %v", err)
	}
	if username != "admin" {
		t.Fatalf("会话应属于admin，实际为 %q", username)
	}

	// 数据库中只保存令牌摘要，不保存明文
	var session Session
	if err := db.Where("username = ?", "admin").First(&session).Error; err != nil {
		t.Fatalf("读取会话失败: %v", err)
	}
	if session.TokenDigest == result.Token {
		t.Fatal("数据库不应保存明文令牌")
	}
	if session.TokenDigest != token.Digest(result.Token) {
		t.Fatal("会话摘要与令牌不匹配")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	setupTestDB(t)
	mustBootstrap(t, "admin", "correct-horse")

	_, errUnknownUser := Login(context.Background(), "nobody", "correct-horse")
	_, errWrongPassword := Login(context.Background(), "admin", "wrong-password")

	if !apperror.Is(errUnknownUser, apperror.KindInvalidCredentials) {
		t.Fatalf("未知用户应返回InvalidCredentials，实际为 %v", errUnknownUser)
	}
	if !apperror.Is(errWrongPassword, apperror.KindInvalidCredentials) {
		t.Fatalf("错误密码应返回InvalidCredentials，实际为 %v", errWrongPassword)
	}
	// 两种失败的错误文案必须完全一致，防止账号枚举
	if errUnknownUser.Error() != errWrongPassword.Error() {
		t.Fatalf("两种失败的错误信息应一致: %q vs %q", errUnknownUser.Error(), errWrongPassword.Error())
	}
}

func TestVerifyRejectsMissingAndUnknownTokens(t *testing.T) {
	setupTestDB(t)

	if _, err := Verify(context.Background(), ""); !apperror.Is(err, apperror.KindUnauthenticated) {
		t.Fatalf("空令牌应返回Unauthenticated，实际为 %v", err)
	}
	if _, err := Verify(context.Background(), "made-up-token"); !apperror.Is(err, apperror.KindUnauthenticated) {
		t.Fatalf("未知令牌应返回Unauthenticated，实际为 %v", err)
	}
}

func TestVerifyDeletesExpiredSessionLazily(t *testing.T) {
	db := setupTestDB(t)

	tok, err := token.GenerateSessionToken()
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}
	expired := Session{
		TokenDigest: token.Digest(tok),
		Username:    "admin",
		ExpiresAt:   time.Now().Add(-time.Hour),
	}
	if err := db.Create(&expired).Error; err != nil {
		t.Fatalf("写入过期会话失败: %v", err)
	}

	if _, err := Verify(context.Background(), tok); !apperror.Is(err, apperror.KindUnauthenticated) {
		t.Fatalf("过期令牌应返回Unauthenticated，实际为 %v", err)
	}

	// 过期行应作为验证失败的副作用被删除
	var count int64
	db.Model(&Session{}).Count(&count)
	if count != 0 {
		t.Fatalf("过期会话应被顺带删除，实际剩余 %d 行", count)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	setupTestDB(t)
	mustBootstrap(t, "admin", "correct-horse")
	result := mustLogin(t, "admin", "correct-horse")

	if err := Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("登出失败: %v", err)
	}
	if _, err := Verify(context.Background(), result.Token); !apperror.Is(err, apperror.KindUnauthenticated) {
		t.Fatalf("登出后的令牌应失效，实际为 %v", err)
	}
	// 重复登出不是错误
	if err := Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("重复登出不应报错: %v", err)
	}
	if err := Logout(context.Background(), ""); err != nil {
		t.Fatalf("空令牌登出不应报错: %v", err)
	}
}

func TestChangePasswordInvalidatesAllSessions(t *testing.T) {
	setupTestDB(t)
	mustBootstrap(t, "admin", "correct-horse")

	first := mustLogin(t, "admin", "correct-horse")
	second := mustLogin(t, "admin", "correct-horse")

	err := ChangePassword(context.Background(), first.Token, "correct-horse", "battery-staple")
	if err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}

	// 该管理员的所有会话全部作废，包括发起修改的那个
	for _, tok := range []string{first.Token, second.Token} {
		if _, err := Verify(context.Background(), tok); !apperror.Is(err, apperror.KindUnauthenticated) {
			t.Fatalf("修改密码后旧会话应失效，实际为 %v", err)
		}
	}

	// 旧密码不再可用，新密码可以登录
	if _, err := Login(context.Background(), "admin", "correct-horse"); !apperror.Is(err, apperror.KindInvalidCredentials) {
		t.Fatalf("旧密码应失效，实际为 %v", err)
	}
	mustLogin(t, "admin", "battery-staple")
}

func TestChangePasswordRequiresCurrentPassword(t *testing.T) {
	setupTestDB(t)
	mustBootstrap(t, "admin", "correct-horse")
	result := mustLogin(t, "admin", "correct-horse")

	err := ChangePassword(context.Background(), result.Token, "wrong-current", "battery-staple")
	if !apperror.Is(err, apperror.KindInvalidCredentials) {
		t.Fatalf("当前密码错误应返回InvalidCredentials，实际为 %v", err)
	}

	// 失败的修改不影响现有会话
	if _, err := Verify(context.Background(), result.Token); err != nil {
		t.Fatalf("失败的修改不应作废会话: %v", err)
	}
}

func TestSweepExpiredSessions(t *testing.T) {
	db := setupTestDB(t)

	for i, age := range []time.Duration{-2 * time.Hour, -time.Minute, time.Hour} {
		tok, _ := token.GenerateSessionToken()
		session := Session{
			TokenDigest: token.Digest(tok),
			Username:    "admin",
			ExpiresAt:   time.Now().Add(age),
		}
		if err := db.Create(&session).Error; err != nil {
			t.Fatalf("写入会话 %d 失败: %v", i, err)
		}
	}

	n, err := SweepExpiredSessions(context.Background())
	if err != nil {
		t.Fatalf("清扫失败: %v", err)
	}
	if n != 2 {
		t.Fatalf("应清扫2条过期会话，实际清扫 %d 条", n)
	}

	var remaining int64
	db.Model(&Session{}).Count(&remaining)
	if remaining != 1 {
		t.Fatalf("应剩余1条有效会话，实际剩余 %d 条", remaining)
	}
}

func TestSetChannelBanManualOverride(t *testing.T) {
	db := setupTestDB(t)

	seeded, err := channel.UpsertOnReport(db, "UCmanual", "Manual")
	if err != nil {
		t.Fatalf("创建频道失败: %v", err)
	}

	// 管理员手动封禁绕过阈值
	ch, err := SetChannelBan(context.Background(), "UCmanual", true)
	if err != nil {
		t.Fatalf("手动封禁失败: %v", err)
	}
	if !ch.IsBanned {
		t.Fatal("频道应处于封禁状态")
	}

	// 解封是管理员独有的能力
	ch, err = SetChannelBan(context.Background(), "UCmanual", false)
	if err != nil {
		t.Fatalf("解封失败: %v", err)
	}
	if ch.IsBanned {
		t.Fatal("频道应已解封")
	}

	reloaded, _ := channel.GetByID(db, seeded.ID)
	if reloaded.IsBanned {
		t.Fatal("解封状态应已持久化")
	}

	if _, err := SetChannelBan(context.Background(), "UCmissing", true); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("未知频道应返回NotFound，实际为 %v", err)
	}
}

func TestDeleteChannelCascades(t *testing.T) {
	db := setupTestDB(t)

	ch, err := channel.UpsertOnReport(db, "UCpurge", "Purge")
	if err != nil {
		t.Fatalf("创建频道失败: %v", err)
	}
	if err := db.Create(&report.Report{ChannelID: ch.ID, Reason: "slop"}).Error; err != nil {
		t.Fatalf("写入举报失败: %v", err)
	}
	if err := db.Create(&vote.Vote{ChannelID: ch.ID, VisitorToken: "v1", Value: vote.ValueUp}).Error; err != nil {
		t.Fatalf("写入投票失败: %v", err)
	}

	if err := DeleteChannel(context.Background(), "UCpurge"); err != nil {
		t.Fatalf("删除频道失败: %v", err)
	}

	if _, err := channel.GetByExternalID(db, "UCpurge"); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("删除后频道应不存在，实际为 %v", err)
	}
	var reports, votes int64
	db.Model(&report.Report{}).Where("channel_id = ?", ch.ID).Count(&reports)
	db.Model(&vote.Vote{}).Where("channel_id = ?", ch.ID).Count(&votes)
	if reports != 0 || votes != 0 {
		t.Fatalf("级联删除未清空关联数据: reports=%d votes=%d", reports, votes)
	}

	if err := DeleteChannel(context.Background(), "UCpurge"); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("重复删除应返回NotFound，实际为 %v", err)
	}
}
