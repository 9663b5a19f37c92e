package report

import (
	"net/http"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/web"
	"github.com/gin-gonic/gin"
)

// SubmitRequestBody 定义了提交举报时请求体的JSON结构
type SubmitRequestBody struct {
	ExternalID    string `json:"externalId" binding:"required"`
	DisplayName   string `json:"displayName" binding:"required"`
	Reason        string `json:"reason"`
	EvidenceURL   string `json:"evidenceUrl"`
	ReporterToken string `json:"reporterToken"`
}

// SubmitReport 处理 POST /api/reports
// 这是匿名流量入口：不做任何身份验证，长度和格式校验在服务层完成。
func SubmitReport(c *gin.Context) {
	var body SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	result, err := Submit(c.Request.Context(), SubmitInput{
		ExternalID:    body.ExternalID,
		DisplayName:   body.DisplayName,
		Reason:        body.Reason,
		EvidenceURL:   body.EvidenceURL,
		ReporterToken: body.ReporterToken,
	})
	if err != nil {
		web.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
