package admin

import (
	"net/http"

	"github.com/Hikan-Teki/deadnetguard/internal/platform/web"
	"github.com/gin-gonic/gin"
)

// LoginRequestBody 定义了登录请求体的JSON结构
type LoginRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequestBody 定义了修改密码请求体的JSON结构
type ChangePasswordRequestBody struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ChannelActionRequestBody 定义了封禁/解封/删除频道请求体的JSON结构
type ChannelActionRequestBody struct {
	ChannelID string `json:"channelId" binding:"required"`
}

// BootstrapRequestBody 定义了首次引导请求体的JSON结构
type BootstrapRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandleLogin 处理 POST /api/admin/login
func HandleLogin(c *gin.Context) {
	var body LoginRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	result, err := Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleVerify 处理 GET /api/admin/verify
// 会话验证已由中间件完成，到达这里即是有效会话。
func HandleVerify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"username": c.GetString(AdminUsernameKey),
	})
}

// HandleLogout 处理 POST /api/admin/logout
// 幂等：会话不存在同样返回成功。
func HandleLogout(c *gin.Context) {
	if err := Logout(c.Request.Context(), extractToken(c)); err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleChangePassword 处理 POST /api/admin/password
func HandleChangePassword(c *gin.Context) {
	var body ChangePasswordRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	err := ChangePassword(c.Request.Context(), extractToken(c), body.CurrentPassword, body.NewPassword)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleBanChannel 处理 POST /api/admin/channels/ban
func HandleBanChannel(c *gin.Context) {
	setChannelBan(c, true)
}

// HandleUnbanChannel 处理 POST /api/admin/channels/unban
// 这是唯一能把IsBanned复位的路径。
func HandleUnbanChannel(c *gin.Context) {
	setChannelBan(c, false)
}

func setChannelBan(c *gin.Context, banned bool) {
	var body ChannelActionRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	ch, err := SetChannelBan(c.Request.Context(), body.ChannelID, banned)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"channelId": ch.ExternalID,
		"isBanned":  ch.IsBanned,
	})
}

// HandleDeleteChannel 处理 POST /api/admin/channels/delete
// 删除会级联清除该频道的全部举报和投票。
func HandleDeleteChannel(c *gin.Context) {
	var body ChannelActionRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := DeleteChannel(c.Request.Context(), body.ChannelID); err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleBootstrap 处理 POST /api/admin/bootstrap
// 无需认证，但全系统只会成功一次。
func HandleBootstrap(c *gin.Context) {
	var body BootstrapRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := Bootstrap(c.Request.Context(), body.Username, body.Password); err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
