package api

import (
	"github.com/Hikan-Teki/deadnetguard/internal/admin"
	"github.com/Hikan-Teki/deadnetguard/internal/channel"
	"github.com/Hikan-Teki/deadnetguard/internal/report"
	"github.com/Hikan-Teki/deadnetguard/internal/visitor"
	"github.com/Hikan-Teki/deadnetguard/internal/vote"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 频道相关的路由组 /api/channels
		channelRoutes := api.Group("/channels")
		{
			channelRoutes.GET("/banned", channel.GetBannedChannels)
			channelRoutes.GET("/pending", channel.GetPendingChannels)
		}

		// 举报相关的路由 /api/reports
		api.POST("/reports", visitor.EnsureVisitorCookieMiddleware(), visitor.LoadVisitorMiddleware(), report.SubmitReport)

		// 投票相关的路由 /api/votes
		api.POST("/votes", visitor.EnsureVisitorCookieMiddleware(), visitor.LoadVisitorMiddleware(), vote.CastVote)
		api.GET("/votes", visitor.LoadVisitorMiddleware(), vote.GetVote)

		// 管理员相关的路由组 /api/admin
		adminRoutes := api.Group("/admin")
		{
			// 无需认证的入口：引导首个管理员和登录
			adminRoutes.POST("/bootstrap", admin.HandleBootstrap)
			adminRoutes.POST("/login", admin.HandleLogin)

			// 其余路由全部在会话中间件之后
			authed := adminRoutes.Group("", admin.RequireSessionMiddleware())
			{
				authed.GET("/verify", admin.HandleVerify)
				authed.POST("/logout", admin.HandleLogout)
				authed.POST("/password", admin.HandleChangePassword)
				authed.POST("/channels/ban", admin.HandleBanChannel)
				authed.POST("/channels/unban", admin.HandleUnbanChannel)
				authed.POST("/channels/delete", admin.HandleDeleteChannel)
			}
		}
	}
}
