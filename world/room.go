package world

import (
	"strings"
	"sync"
	"time"

	"github.com/ceyewan/dworld/model"
)

const (
	// WellKnownRoomKey 众所周知的全局房间键，进程内单例
	WellKnownRoomKey = "dworld-global-session"

	// messageLogBound 房间消息日志上限（FIFO，先进先出逐出）
	messageLogBound = 100

	// shortCodeLength 房间短码长度（房间 ID 前缀大写）
	shortCodeLength = 6
)

// defaultWorldFacts 新房间的初始世界设定。真正的世界百科由外部目录服务提供，
// 这里只保留同步快照需要回传的基础条目。
var defaultWorldFacts = map[string]string{
	"worldName":   "dworld",
	"era":         "present",
	"startingLoc": defaultLocation,
}

const defaultLocation = "plaza"

// Room 一个独立的会话房间：玩家名册、回合计数、本地镜像。
// 所有字段由 mu 保护；跨房间编排（扇出、同步）由 World 负责，
// Room 的方法从不嵌套获取其它房间或子系统的锁。
type Room struct {
	mu sync.RWMutex

	id          string
	displayName string
	createdAt   time.Time

	turnCounter int64
	elapsedTime string

	players     map[string]*model.Player
	feedMirror  []*model.FeedItem
	mirrorIndex map[string]*model.FeedItem
	messageLog  []model.Notification
	plotState   map[string]model.PlotAnswer
	worldFacts  map[string]string
}

func newRoom(id, displayName string, now time.Time, seed []*model.FeedItem) *Room {
	r := &Room{
		id:          id,
		displayName: displayName,
		createdAt:   now,
		elapsedTime: "0 minutes",
		players:     make(map[string]*model.Player),
		mirrorIndex: make(map[string]*model.FeedItem),
		plotState:   make(map[string]model.PlotAnswer),
		worldFacts:  make(map[string]string, len(defaultWorldFacts)),
	}
	for k, v := range defaultWorldFacts {
		r.worldFacts[k] = v
	}
	for _, item := range seed {
		cp := item.Clone()
		r.feedMirror = append(r.feedMirror, cp)
		r.mirrorIndex[cp.ID] = cp
	}
	return r
}

// ID 房间标识
func (r *Room) ID() string { return r.id }

// DisplayName 房间显示名
func (r *Room) DisplayName() string { return r.displayName }

// ShortCode 房间短码：ID 前 6 字符大写
func (r *Room) ShortCode() string {
	id := r.id
	if len(id) > shortCodeLength {
		id = id[:shortCodeLength]
	}
	return strings.ToUpper(id)
}

// Info lookup 摘要
func (r *Room) Info() model.SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.SessionInfo{
		ID:          r.id,
		Name:        r.displayName,
		ShortCode:   r.ShortCode(),
		PlayerCount: len(r.players),
		GlobalTurn:  r.turnCounter,
		TimeElapsed: r.elapsedTime,
	}
}

// ============================================================================
// 玩家名册
// ============================================================================

// AddPlayer 挂入玩家（ID 已存在则覆盖）
func (r *Room) AddPlayer(p *model.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.ID] = p
}

// RemovePlayer 摘除玩家，不存在则返回 ErrPlayerNotFound
func (r *Room) RemovePlayer(playerID string) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	delete(r.players, playerID)
	return p, nil
}

// GetPlayer 返回玩家快照
func (r *Room) GetPlayer(playerID string) (*model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p.Clone(), nil
}

// HasPlayer 玩家是否在本房间
func (r *Room) HasPlayer(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.players[playerID]
	return ok
}

// PlayerCount 玩家数
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Touch 刷新玩家活跃时间戳，返回玩家是否存在
func (r *Room) Touch(playerID string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return false
	}
	p.LastActivityAt = now
	return true
}

// ActivePlayers 活跃集：now - lastActivity < window 的玩家快照。
// 纯读时求值，没有后台过期进程。
func (r *Room) ActivePlayers(now time.Time, window time.Duration) []*model.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	active := make([]*model.Player, 0, len(r.players))
	for _, p := range r.players {
		if now.Sub(p.LastActivityAt) < window {
			active = append(active, p.Clone())
		}
	}
	return active
}

// MutatePlayer 在房间锁内对玩家原地变更，返回变更后的快照
func (r *Room) MutatePlayer(playerID string, fn func(p *model.Player) error) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// ============================================================================
// 回合计数与时钟
// ============================================================================

// BumpTurn 回合计数 +1
func (r *Room) BumpTurn() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turnCounter++
	return r.turnCounter
}

// Turn 当前回合
func (r *Room) Turn() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.turnCounter
}

// Elapsed 已流逝时间
func (r *Room) Elapsed() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.elapsedTime
}

// SetElapsed 设置已流逝时间
func (r *Room) SetElapsed(elapsed string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elapsedTime = elapsed
}

// ============================================================================
// 本地动态镜像
// ============================================================================

// MirrorInsert 按 ID 幂等插入镜像，已存在则不动
func (r *Room) MirrorInsert(item *model.FeedItem) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mirrorIndex[item.ID]; ok {
		return false
	}
	cp := item.Clone()
	r.feedMirror = append(r.feedMirror, cp)
	r.mirrorIndex[cp.ID] = cp
	return true
}

// MirrorUpsert 替换镜像中的同 ID 条目，缺失则插入
func (r *Room) MirrorUpsert(item *model.FeedItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := item.Clone()
	if old, ok := r.mirrorIndex[item.ID]; ok {
		for i, it := range r.feedMirror {
			if it == old {
				r.feedMirror[i] = cp
				break
			}
		}
		r.mirrorIndex[item.ID] = cp
		return
	}
	r.feedMirror = append(r.feedMirror, cp)
	r.mirrorIndex[cp.ID] = cp
}

// MirrorRemove 按 ID 从镜像摘除
func (r *Room) MirrorRemove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.mirrorIndex[id]
	if !ok {
		return false
	}
	delete(r.mirrorIndex, id)
	for i, it := range r.feedMirror {
		if it == old {
			r.feedMirror = append(r.feedMirror[:i], r.feedMirror[i+1:]...)
			break
		}
	}
	return true
}

// MirrorIncrementComment 镜像内父条目评论数 +1（尽力而为：父条目不在镜像则跳过）
func (r *Room) MirrorIncrementComment(parentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	parent, ok := r.mirrorIndex[parentID]
	if !ok {
		return false
	}
	parent.CommentCount++
	return true
}

// MirrorContains 镜像中是否已有该 ID
func (r *Room) MirrorContains(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.mirrorIndex[id]
	return ok
}

// MirrorSnapshot 镜像快照（深拷贝，保持插入顺序）
func (r *Room) MirrorSnapshot() []*model.FeedItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.FeedItem, 0, len(r.feedMirror))
	for _, it := range r.feedMirror {
		out = append(out, it.Clone())
	}
	return out
}

// ============================================================================
// 消息日志与剧情状态
// ============================================================================

// AppendNotification 追加日志条目，超出上限时逐出最旧的
func (r *Room) AppendNotification(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messageLog = append(r.messageLog, n)
	if len(r.messageLog) > messageLogBound {
		r.messageLog = r.messageLog[len(r.messageLog)-messageLogBound:]
	}
}

// LogSnapshot 消息日志快照，最旧在前
func (r *Room) LogSnapshot() []model.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Notification(nil), r.messageLog...)
}

// SetPlot 写入剧情问答
func (r *Room) SetPlot(questionKey string, answer model.PlotAnswer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plotState[questionKey] = answer
}

// PlotSnapshot 剧情状态快照
func (r *Room) PlotSnapshot() map[string]model.PlotAnswer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.PlotAnswer, len(r.plotState))
	for k, v := range r.plotState {
		out[k] = v
	}
	return out
}

// FactsSnapshot 世界设定快照
func (r *Room) FactsSnapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.worldFacts))
	for k, v := range r.worldFacts {
		out[k] = v
	}
	return out
}
