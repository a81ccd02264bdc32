package server

import (
	"net/http"

	"github.com/ceyewan/dworld/model"
	"github.com/ceyewan/dworld/world"
	"github.com/gin-gonic/gin"
)

// Feed POST /api/v1/feed — 动作分发：publish/get/getComments/update/delete/directMessage
func (h *Handler) Feed(c *gin.Context) {
	var req feedRequest
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
	case "publish":
		if req.FeedItem == nil {
			h.fail(c, world.ErrBadRequest)
			return
		}
		item, err := h.world.PublishFeedItem(feedItemFromBody(req.FeedItem, player.DisplayName))
		if err != nil {
			h.fail(c, err)
			return
		}
		world.AbsolutizeItem(item, h.baseURL)
		c.JSON(http.StatusOK, gin.H{"success": true, "feedItem": item})

	case "get":
		items := h.world.FeedItems()
		for _, item := range items {
			world.AbsolutizeItem(item, h.baseURL)
		}
		c.JSON(http.StatusOK, gin.H{"feedItems": items})

	case "getComments":
		comments, err := h.world.FeedComments(req.FeedItemID)
		if err != nil {
			h.fail(c, err)
			return
		}
		for _, item := range comments {
			world.AbsolutizeItem(item, h.baseURL)
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments})

	case "update":
		if req.FeedItem == nil || req.FeedItem.ID == "" {
			h.fail(c, world.ErrBadRequest)
			return
		}
		item, err := h.world.UpdateFeedItem(feedItemFromBody(req.FeedItem, player.DisplayName))
		if err != nil {
			h.fail(c, err)
			return
		}
		world.AbsolutizeItem(item, h.baseURL)
		c.JSON(http.StatusOK, gin.H{"success": true, "feedItem": item})

	case "delete":
		if req.FeedItemID == "" {
			h.fail(c, world.ErrBadRequest)
			return
		}
		if err := h.world.DeleteFeedItem(req.FeedItemID, player.DisplayName); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})

	case "directMessage":
		if req.FeedItem == nil || len(req.FeedItem.Recipients) == 0 {
			h.fail(c, world.ErrBadRequest)
			return
		}
		msg, err := h.world.SendDirectMessage(&model.DirectMessage{
			SenderID:    req.PlayerID,
			SenderName:  player.DisplayName,
			Title:       req.FeedItem.Title,
			Content:     req.FeedItem.Content,
			ContentType: req.FeedItem.Type,
			ImageURL:    req.FeedItem.ImageURL,
			VideoURL:    req.FeedItem.VideoURL,
			AudioURL:    req.FeedItem.AudioURL,
		}, req.FeedItem.Recipients)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown feed action: " + req.Action})
	}
}

// locatePlayer 校验房间与玩家并返回玩家快照
func (h *Handler) locatePlayer(sessionID, playerID string) (*model.Player, error) {
	return h.world.LocatePlayer(sessionID, playerID)
}

// feedItemFromBody 入站载体转领域条目，作者取调用方显示名
func feedItemFromBody(body *feedItemBody, author string) *model.FeedItem {
	return &model.FeedItem{
		ID:              body.ID,
		Type:            model.FeedItemType(body.Type),
		Title:           body.Title,
		Content:         body.Content,
		Author:          author,
		ParentID:        body.ParentID,
		IsDirectMessage: body.IsDirectMessage,
		Recipients:      body.Recipients,
		ImageURL:        body.ImageURL,
		VideoURL:        body.VideoURL,
		AudioURL:        body.AudioURL,
	}
}

// patchFromRequest 入站档案补丁转领域补丁
func patchFromRequest(p profilePatch) world.ProfilePatch {
	return world.ProfilePatch{
		Username:      p.Username,
		Organizations: p.Organizations,
		TopicFilters:  p.TopicFilters,
		DateJoined:    p.DateJoined,
		Role:          p.Role,
	}
}
