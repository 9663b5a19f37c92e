package channel

import (
	"net/http"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/web"
	"github.com/gin-gonic/gin"
)

// GetBannedChannels 处理 GET /api/channels/banned
// 浏览器扩展轮询这个接口同步社区封禁列表，
// 响应中的version让客户端可以廉价地判断列表是否有变化。
func GetBannedChannels(c *gin.Context) {
	list, err := GetBannedList(c.Request.Context())
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetPendingChannels 处理 GET /api/channels/pending
// 返回已被举报但尚未封禁的频道，按score降序、reportCount降序排列。
func GetPendingChannels(c *gin.Context) {
	channels, err := GetPendingList(c.Request.Context())
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(channels), "channels": channels})
}
