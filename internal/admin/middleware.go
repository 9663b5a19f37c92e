package admin

import (
	"strings"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/web"
	"github.com/gin-gonic/gin"
)

const (
	// AdminUsernameKey 是验证通过后写入Gin上下文的键
	AdminUsernameKey = "adminUsername"
)

// extractToken 从 Authorization: Bearer <token> 头中提取会话令牌。
func extractToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// RequireSessionMiddleware 保护所有特权路由：
// 验证会话令牌并把管理员用户名放入上下文，失败则中断请求。
func RequireSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := Verify(c.Request.Context(), extractToken(c))
		if err != nil {
			web.RespondError(c, err)
			c.Abort()
			return
		}
		c.Set(AdminUsernameKey, username)
		c.Next()
	}
}
