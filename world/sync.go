package world

import (
	"github.com/ceyewan/dworld/model"
)

// SyncSnapshot 单次同步调用的出站快照
type SyncSnapshot struct {
	Session     model.SessionInfo
	AllPlayers  []*model.Player
	Colocated   []*model.Player
	MessageLog  []model.Notification
	WorldFacts  map[string]string
	GlobalTurn  int64
	TimeElapsed string
	PlotState   map[string]model.PlotAnswer
	Feed        []*model.FeedItem
	Messages    []*model.DirectMessage
	HasUnread   bool
}

// Sync 每次轮询执行的调和协议：
//  1. 房间或玩家缺失即 NotFound
//  2. 刷新调用方活跃时间戳
//  3. 计算活跃集与同位置子集（位置为精确字符串相等，无层级）
//  4. 调和：全局池中尚不在镜像里的条目按 ID 单向补入镜像；
//     此处从不从镜像移除——删除只经由显式删除扇出
//  5. includeAll 时返回整个全局池，否则返回房间镜像
//  6. 返回的动态切片与私信信箱做媒体定位符补全（仅响应期）
//  7. 组装快照
func (w *World) Sync(sessionID, playerID string, includeAll bool, baseURL string) (*SyncSnapshot, error) {
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return nil, err
	}

	now := w.now()
	if !room.Touch(playerID, now) {
		return nil, ErrPlayerNotFound
	}
	caller, err := room.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}

	active := room.ActivePlayers(now, w.livenessWindow)
	colocated := make([]*model.Player, 0, len(active))
	for _, p := range active {
		if p.CurrentLocation == caller.CurrentLocation {
			colocated = append(colocated, p)
		}
	}

	poolItems := w.pool.Snapshot()
	for _, item := range poolItems {
		room.MirrorInsert(item)
	}

	feed := poolItems
	if !includeAll {
		feed = room.MirrorSnapshot()
	}
	for _, item := range feed {
		AbsolutizeItem(item, baseURL)
	}

	inbox := w.dm.Inbox(playerID)
	for _, msg := range inbox {
		AbsolutizeMessage(msg, baseURL)
	}
	hasUnread := false
	for _, msg := range inbox {
		if !msg.Read {
			hasUnread = true
			break
		}
	}

	return &SyncSnapshot{
		Session:     room.Info(),
		AllPlayers:  active,
		Colocated:   colocated,
		MessageLog:  room.LogSnapshot(),
		WorldFacts:  room.FactsSnapshot(),
		GlobalTurn:  room.Turn(),
		TimeElapsed: room.Elapsed(),
		PlotState:   room.PlotSnapshot(),
		Feed:        feed,
		Messages:    inbox,
		HasUnread:   hasUnread,
	}, nil
}
