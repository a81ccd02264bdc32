package server

import (
	"net/http"

	"github.com/ceyewan/dworld/model"
	"github.com/ceyewan/dworld/world"
	"github.com/gin-gonic/gin"
)

// DirectMessages POST /api/v1/directMessages — 动作分发：send/get/markAsRead/delete
func (h *Handler) DirectMessages(c *gin.Context) {
	var req directMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	player, err := h.locatePlayer(req.SessionID, req.PlayerID)
	if err != nil {
		h.fail(c, err)
		return
	}

	switch req.Action {
	case "send":
		if req.Message == nil || len(req.Message.Recipients) == 0 {
			h.fail(c, world.ErrBadRequest)
			return
		}
		msg, err := h.world.SendDirectMessage(&model.DirectMessage{
			SenderID:    req.PlayerID,
			SenderName:  player.DisplayName,
			Title:       req.Message.Title,
			Content:     req.Message.Content,
			ContentType: req.Message.ContentType,
			ImageURL:    req.Message.ImageURL,
			VideoURL:    req.Message.VideoURL,
			AudioURL:    req.Message.AudioURL,
		}, req.Message.Recipients)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})

	case "get":
		inbox := h.world.DirectMessages(req.PlayerID)
		for _, msg := range inbox {
			world.AbsolutizeMessage(msg, h.baseURL)
		}
		c.JSON(http.StatusOK, gin.H{"messages": inbox})

	case "markAsRead":
		// 消息不存在也按成功返回，保持客户端简单
		h.world.MarkMessageRead(req.PlayerID, req.MessageID)
		c.JSON(http.StatusOK, gin.H{"success": true})

	case "delete":
		h.world.DeleteMessage(req.PlayerID, req.MessageID)
		c.JSON(http.StatusOK, gin.H{"success": true})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown directMessages action: " + req.Action})
	}
}

// ServeMedia GET /media/:id — 原始字节加内容类型头
func (h *Handler) ServeMedia(c *gin.Context) {
	data, contentType, err := h.world.Media().Serve(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
