package health

import (
	"net/http"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/database"
	"github.com/gin-gonic/gin"
)

// LivenessHandler 处理 GET /health/live
// 进程活着就返回200；Redis不健康只影响degraded字段，不影响存活判定。
func LivenessHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"degraded": !database.IsRedisHealthy(),
	})
}
