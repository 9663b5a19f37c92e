package web

import (
	"fmt"
	"net/http"

	"github.com/Hikan-Teki/deadnetguard/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// RespondError 把业务错误映射为HTTP响应。
// 内部错误只记录日志，对外返回通用提示，绝不泄露存储层细节。
func RespondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		fmt.Printf("内部错误: %s %s: %v\n", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "服务器内部错误"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
