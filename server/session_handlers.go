package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Join POST /api/v1/join
func (h *Handler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.world.JoinRoom(req.SessionID, req.SessionName, req.PlayerName)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, joinResponse{
		SessionID:   result.Session.ID,
		SessionName: result.Session.Name,
		ShortCode:   result.Session.ShortCode,
		Player:      result.Player,
		GlobalTurn:  result.Session.GlobalTurn,
		TimeElapsed: result.Session.TimeElapsed,
	})
}

// Leave POST /api/v1/leave
func (h *Handler) Leave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.world.LeaveRoom(req.SessionID, req.PlayerID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Lookup POST /api/v1/lookup
func (h *Handler) Lookup(c *gin.Context) {
	c.JSON(http.StatusOK, lookupResponse{Sessions: h.world.Lookup()})
}

// Sync POST /api/v1/sync
func (h *Handler) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	snap, err := h.world.Sync(req.SessionID, req.PlayerID, req.IncludeAllItems, h.baseURL)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, syncResponse{
		SessionID:      snap.Session.ID,
		SessionName:    snap.Session.Name,
		ShortCode:      snap.Session.ShortCode,
		AllPlayers:     snap.AllPlayers,
		PlayersHere:    snap.Colocated,
		Messages:       snap.MessageLog,
		WorldFacts:     snap.WorldFacts,
		GlobalTurn:     snap.GlobalTurn,
		TimeElapsed:    snap.TimeElapsed,
		PlotState:      snap.PlotState,
		FeedItems:      snap.Feed,
		DirectMessages: snap.Messages,
		HasUnread:      snap.HasUnread,
	})
}

// Action POST /api/v1/action
func (h *Handler) Action(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, turn, err := h.world.Action(req.SessionID, req.PlayerID, req.Action)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "globalTurn": turn})
}

// UpdateLocation POST /api/v1/updateLocation
func (h *Handler) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	previous, current, err := h.world.UpdateLocation(req.SessionID, req.PlayerID, req.LocationID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"previousLocation": previous,
		"newLocation":      current,
	})
}

// UpdateTime POST /api/v1/updateTime
func (h *Handler) UpdateTime(c *gin.Context) {
	var req updateTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	elapsed, err := h.world.UpdateTime(req.SessionID, req.TimeElapsed)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "timeElapsed": elapsed})
}

// TransferItem POST /api/v1/transferItem
func (h *Handler) TransferItem(c *gin.Context) {
	var req transferItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.world.TransferItem(req.SessionID, req.FromPlayerID, req.ToPlayerID, req.Item, req.Quantity); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListPlayers GET /api/v1/sessions/:id/players
func (h *Handler) ListPlayers(c *gin.Context) {
	players, err := h.world.ActivePlayers(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": players})
}

// UpdateProfile POST /api/v1/updateProfile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	player, err := h.world.UpdateProfile(req.SessionID, req.PlayerID, patchFromRequest(req.UserProfile))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "player": player})
}

// CheckPermissions POST /api/v1/checkPermissions
func (h *Handler) CheckPermissions(c *gin.Context) {
	var req checkPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	canPost, role, err := h.world.CheckPermissions(req.SessionID, req.PlayerID, req.Organization)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"canPost":      canPost,
		"role":         role,
		"organization": req.Organization,
	})
}

// UpdatePlot POST /api/v1/updatePlot
func (h *Handler) UpdatePlot(c *gin.Context) {
	var req updatePlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.world.UpdatePlot(req.SessionID, req.PlayerID, req.QuestionKey, req.Answer); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
