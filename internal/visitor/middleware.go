package visitor

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName   = "visitor-id"
	CookieMaxAge = 365 * 24 * 60 * 60
	VisitorIDKey = "visitorID"
)

// NewProvisionalToken 生成一个新的访客化名标识。
// 使用UUID v7，时间有序的特性便于排查问题。
func NewProvisionalToken() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// IsValidUUID 检查字符串是否是格式正确的UUID。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// EnsureVisitorCookieMiddleware 确保访客的浏览器中有一个格式正确的visitor-id cookie。
// 浏览器扩展自带化名令牌，这个中间件服务的是直接访问官网的投票者。
func EnsureVisitorCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID, err := c.Cookie(CookieName)

		// 如果Cookie不存在，或存在但格式不正确，则分发一个新的
		if err != nil || !IsValidUUID(visitorID) {
			if err != http.ErrNoCookie {
				fmt.Printf("检测到无效的访客Cookie: %s, err: %v\n", visitorID, err)
			}
			provisionalID, err := NewProvisionalToken()
			if err != nil {
				fmt.Printf("创建临时访客ID时发生错误: %v\n", err)
			} else {
				c.SetCookie(CookieName, provisionalID, CookieMaxAge, "/", "", false, true)
			}
		}

		c.Next()
	}
}

// LoadVisitorMiddleware 读取cookie并将其值放入Gin上下文中。
// 请求体中显式携带的令牌优先级高于cookie（见vote的handler）。
func LoadVisitorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID, _ := c.Cookie(CookieName)
		c.Set(VisitorIDKey, visitorID)
		c.Next()
	}
}
