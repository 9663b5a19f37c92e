package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// sessionTokenBytes 是会话令牌的随机字节数。
// 32字节（256位）的熵足以让令牌无法被枚举或预测。
const sessionTokenBytes = 32

// GenerateSessionToken 生成一个密码学安全的随机会话令牌。
// 返回的是URL安全的Base64编码字符串，作为管理员的Bearer凭证下发。
func GenerateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.New("无法生成安全的会话令牌: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Digest 计算令牌的SHA-256摘要（十六进制编码）。
// 数据库中只保存摘要，即使数据库泄露，令牌本身也不会暴露。
// 查找时对传入令牌重新计算摘要即可，无需可逆存储。
func Digest(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}
