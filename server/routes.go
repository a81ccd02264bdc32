package server

import (
	"github.com/ceyewan/dworld/pkg/health"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册全部路由。
// /api/v1 下的业务端点走鉴权；/media 为公开 GET，单独限流兜底；
// /health 与 /ready 挂健康探针。
func (h *Handler) RegisterRoutes(router *gin.Engine, probe *health.Probe, authRequired, mediaLimit gin.HandlerFunc) {
	api := router.Group("/api/v1")
	api.Use(authRequired)
	{
		api.POST("/join", h.Join)
		api.POST("/leave", h.Leave)
		api.POST("/lookup", h.Lookup)
		api.POST("/sync", h.Sync)
		api.POST("/action", h.Action)
		api.POST("/updateLocation", h.UpdateLocation)
		api.POST("/updateTime", h.UpdateTime)
		api.POST("/transferItem", h.TransferItem)
		api.POST("/feed", h.Feed)
		api.POST("/directMessages", h.DirectMessages)
		api.POST("/updateProfile", h.UpdateProfile)
		api.POST("/checkPermissions", h.CheckPermissions)
		api.POST("/updatePlot", h.UpdatePlot)
		api.GET("/sessions/:id/players", h.ListPlayers)
	}

	router.GET("/media/:id", mediaLimit, h.ServeMedia)

	router.GET("/health", probe.Liveness())
	router.GET("/ready", probe.Readiness())
}
