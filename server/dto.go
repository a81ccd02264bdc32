package server

import "github.com/ceyewan/dworld/model"

// ============================================================================
// 请求/响应载体。请求一律 JSON over POST（媒体字节与玩家列表为 GET）。
// ============================================================================

type joinRequest struct {
	AppName     string `json:"appName"`
	SessionID   string `json:"sessionId"`
	SessionName string `json:"sessionName"`
	PlayerName  string `json:"playerName" binding:"required"`
}

type joinResponse struct {
	SessionID   string        `json:"sessionId"`
	SessionName string        `json:"sessionName"`
	ShortCode   string        `json:"shortCode"`
	Player      *model.Player `json:"player"`
	GlobalTurn  int64         `json:"globalTurn"`
	TimeElapsed string        `json:"timeElapsed"`
}

type leaveRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	PlayerID  string `json:"playerId" binding:"required"`
}

type lookupResponse struct {
	Sessions []model.SessionInfo `json:"sessions"`
}

type syncRequest struct {
	SessionID       string `json:"sessionId" binding:"required"`
	PlayerID        string `json:"playerId" binding:"required"`
	IncludeAllItems bool   `json:"includeAllItems"`
}

type syncResponse struct {
	SessionID      string                      `json:"sessionId"`
	SessionName    string                      `json:"sessionName"`
	ShortCode      string                      `json:"shortCode"`
	AllPlayers     []*model.Player             `json:"allPlayers"`
	PlayersHere    []*model.Player             `json:"playersHere"`
	Messages       []model.Notification        `json:"messages"`
	WorldFacts     map[string]string           `json:"worldFacts"`
	GlobalTurn     int64                       `json:"globalTurn"`
	TimeElapsed    string                      `json:"timeElapsed"`
	PlotState      map[string]model.PlotAnswer `json:"plotState"`
	FeedItems      []*model.FeedItem           `json:"feedItems"`
	DirectMessages []*model.DirectMessage      `json:"directMessages"`
	HasUnread      bool                        `json:"hasUnreadMessages"`
}

type actionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	PlayerID  string `json:"playerId" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

type updateLocationRequest struct {
	SessionID  string `json:"sessionId" binding:"required"`
	PlayerID   string `json:"playerId" binding:"required"`
	LocationID string `json:"locationId" binding:"required"`
}

type updateTimeRequest struct {
	SessionID   string `json:"sessionId" binding:"required"`
	TimeElapsed string `json:"timeElapsed"`
}

type transferItemRequest struct {
	SessionID    string `json:"sessionId" binding:"required"`
	FromPlayerID string `json:"fromPlayerId" binding:"required"`
	ToPlayerID   string `json:"toPlayerId" binding:"required"`
	Item         string `json:"item" binding:"required"`
	Quantity     int    `json:"quantity"`
}

type feedRequest struct {
	SessionID  string        `json:"sessionId" binding:"required"`
	PlayerID   string        `json:"playerId" binding:"required"`
	Action     string        `json:"action" binding:"required"`
	FeedItem   *feedItemBody `json:"feedItem"`
	FeedItemID string        `json:"feedItemId"`
}

// feedItemBody 入站动态条目
type feedItemBody struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	ParentID        string   `json:"parentId"`
	IsDirectMessage bool     `json:"isDirectMessage"`
	Recipients      []string `json:"recipients"`
	ImageURL        string   `json:"imageUrl"`
	VideoURL        string   `json:"videoUrl"`
	AudioURL        string   `json:"audioUrl"`
}

type directMessageRequest struct {
	SessionID string       `json:"sessionId" binding:"required"`
	PlayerID  string       `json:"playerId" binding:"required"`
	Action    string       `json:"action" binding:"required"`
	Message   *messageBody `json:"message"`
	MessageID string       `json:"messageId"`
}

// messageBody 入站私信
type messageBody struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	ContentType string   `json:"contentType"`
	Recipients  []string `json:"recipients"`
	ImageURL    string   `json:"imageUrl"`
	VideoURL    string   `json:"videoUrl"`
	AudioURL    string   `json:"audioUrl"`
}

type updateProfileRequest struct {
	SessionID   string       `json:"sessionId" binding:"required"`
	PlayerID    string       `json:"playerId" binding:"required"`
	UserProfile profilePatch `json:"userProfile"`
}

// profilePatch 浅合并补丁：缺失字段不改动
type profilePatch struct {
	Username      *string   `json:"username"`
	Organizations *[]string `json:"organizations"`
	TopicFilters  *[]string `json:"topicFilters"`
	DateJoined    *string   `json:"dateJoined"`
	Role          *string   `json:"role"`
}

type checkPermissionsRequest struct {
	SessionID    string `json:"sessionId" binding:"required"`
	PlayerID     string `json:"playerId" binding:"required"`
	Organization string `json:"organization" binding:"required"`
}

type updatePlotRequest struct {
	SessionID   string `json:"sessionId" binding:"required"`
	PlayerID    string `json:"playerId" binding:"required"`
	QuestionKey string `json:"questionKey" binding:"required"`
	Answer      string `json:"answer"`
}
