package vote

import (
	"net/http"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/web"
	"github.com/Hikan-Teki/deadnetguard/internal/visitor"
	"github.com/gin-gonic/gin"
)

// CastRequestBody 定义了提交投票时请求体的JSON结构。
// VisitorToken 可选：扩展在请求体里携带自己的令牌，
// 官网投票者则依赖visitor中间件下发的cookie。
type CastRequestBody struct {
	ChannelID    string `json:"channelId" binding:"required"`
	Value        int    `json:"value" binding:"required"`
	VisitorToken string `json:"visitorToken"`
}

// resolveVisitorToken 优先取请求体中的令牌，退回到cookie。
func resolveVisitorToken(c *gin.Context, bodyToken string) string {
	if bodyToken != "" {
		return bodyToken
	}
	return c.GetString(visitor.VisitorIDKey)
}

// CastVote 处理 POST /api/votes
func CastVote(c *gin.Context) {
	var body CastRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	result, err := Cast(c.Request.Context(), body.ChannelID, resolveVisitorToken(c, body.VisitorToken), body.Value)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetVote 处理 GET /api/votes
// 无副作用的纯读取，客户端用它渲染自己的投票状态。
func GetVote(c *gin.Context) {
	channelID := c.Query("channelId")
	token := resolveVisitorToken(c, c.Query("visitorToken"))

	status, err := Status(c.Request.Context(), channelID, token)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
