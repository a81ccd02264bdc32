package model

import (
	"strings"
	"time"
)

// ============================================================================
// 共享领域模型（纯内存，无持久化）
// world 包持有这些结构体的唯一可变副本；对外（HTTP 响应）一律返回深拷贝，
// 调用方拿到的永远是快照，不会与内部状态共享可变引用。
// ============================================================================

// Role 玩家角色
type Role string

const (
	RoleMember Role = "member"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// ParseRole 解析角色字符串，未知值回落为 member
func ParseRole(s string) Role {
	switch Role(strings.ToLower(s)) {
	case RoleEditor:
		return RoleEditor
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleMember
	}
}

// FeedItemType 动态条目类型
type FeedItemType string

const (
	FeedTypeText         FeedItemType = "text"
	FeedTypeImage        FeedItemType = "image"
	FeedTypeVideo        FeedItemType = "video"
	FeedTypeAudio        FeedItemType = "audio"
	FeedTypeWeb          FeedItemType = "web"
	FeedTypePresentation FeedItemType = "presentation"
	FeedTypeEvent        FeedItemType = "event"
)

// HasMedia 该类型是否可能携带内联媒体载荷
func (t FeedItemType) HasMedia() bool {
	return t == FeedTypeImage || t == FeedTypeVideo || t == FeedTypeAudio
}

// UserProfile 玩家档案
type UserProfile struct {
	Username      string   `json:"username"`
	Organizations []string `json:"organizations"`
	TopicFilters  []string `json:"topicFilters"`
	DateJoined    string   `json:"dateJoined"`
}

// Player 房间内的玩家记录，归属且仅归属一个房间
type Player struct {
	ID              string         `json:"id"`
	DisplayName     string         `json:"name"`
	Role            Role           `json:"role"`
	IsHuman         bool           `json:"isHuman"`
	CurrentLocation string         `json:"currentLocation"`
	Inventory       map[string]int `json:"inventory"`
	LastActivityAt  time.Time      `json:"lastActivity"`
	Profile         UserProfile    `json:"userProfile"`
}

// Clone 深拷贝，用于构造响应快照
func (p *Player) Clone() *Player {
	cp := *p
	cp.Inventory = make(map[string]int, len(p.Inventory))
	for k, v := range p.Inventory {
		cp.Inventory[k] = v
	}
	cp.Profile.Organizations = append([]string(nil), p.Profile.Organizations...)
	cp.Profile.TopicFilters = append([]string(nil), p.Profile.TopicFilters...)
	return &cp
}

// FeedItem 动态条目。全局池中按 ID 去重，各房间镜像为其子集。
type FeedItem struct {
	ID              string       `json:"id"`
	Type            FeedItemType `json:"type"`
	Title           string       `json:"title"`
	Content         string       `json:"content"`
	Author          string       `json:"author"`
	ParentID        string       `json:"parentId,omitempty"`
	CommentCount    int          `json:"commentCount"`
	IsDirectMessage bool         `json:"isDirectMessage,omitempty"`
	Recipients      []string     `json:"recipients,omitempty"`
	ImageURL        string       `json:"imageUrl,omitempty"`
	VideoURL        string       `json:"videoUrl,omitempty"`
	AudioURL        string       `json:"audioUrl,omitempty"`
	Timestamp       time.Time    `json:"timestamp"`
}

// Clone 深拷贝
func (f *FeedItem) Clone() *FeedItem {
	cp := *f
	cp.Recipients = append([]string(nil), f.Recipients...)
	return &cp
}

// DirectMessage 私信。存在于且仅存在于收件人信箱（或待投递队列）中，
// 不进入全局动态池。
type DirectMessage struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	SenderName  string    `json:"senderName"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentType string    `json:"contentType"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
	OriginalID  string    `json:"originalId,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	AudioURL    string    `json:"audioUrl,omitempty"`
}

// Clone 深拷贝
func (m *DirectMessage) Clone() *DirectMessage {
	cp := *m
	return &cp
}

// NotificationKind 房间消息日志条目类型
type NotificationKind string

const (
	NotifyFeedNew     NotificationKind = "feed"
	NotifyFeedUpdate  NotificationKind = "feed_update"
	NotifyFeedDelete  NotificationKind = "feed_delete"
	NotifyPlayerJoin  NotificationKind = "player_join"
	NotifyPlayerLeave NotificationKind = "player_leave"
	NotifyDirect      NotificationKind = "dm"
	NotifyAction      NotificationKind = "action"
)

// Notification 房间消息日志条目（FIFO，有界）
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	ItemID    string           `json:"itemId,omitempty"`
	Actor     string           `json:"actor,omitempty"`
	Text      string           `json:"text"`
	Timestamp time.Time        `json:"timestamp"`
}

// PlotAnswer 剧情问答状态
type PlotAnswer struct {
	Answer     string    `json:"answer"`
	AnsweredBy string    `json:"answeredBy,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SessionInfo lookup 响应中的房间摘要
type SessionInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ShortCode   string `json:"shortCode"`
	PlayerCount int    `json:"playerCount"`
	GlobalTurn  int64  `json:"globalTurn"`
	TimeElapsed string `json:"timeElapsed"`
}

// NormalizeUsername 用户名归一化：身份映射与待投递队列统一按小写键存取
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
