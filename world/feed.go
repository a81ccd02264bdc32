package world

import (
	"sync"

	"github.com/ceyewan/dworld/model"
	"github.com/ceyewan/genesis/clog"
	"github.com/google/uuid"
)

// FeedPool 全局动态池：全体已发布条目的唯一去重存储，跨房间可见。
// 各房间镜像是它的子集，靠写时扇出与同步时单向补齐保持收敛。
type FeedPool struct {
	mu    sync.RWMutex
	items []*model.FeedItem
	index map[string]*model.FeedItem
}

// NewFeedPool 创建空池
func NewFeedPool() *FeedPool {
	return &FeedPool{index: make(map[string]*model.FeedItem)}
}

// Insert 按 ID 幂等插入，重复 ID 视为无操作
func (p *FeedPool) Insert(item *model.FeedItem) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.index[item.ID]; ok {
		return false
	}
	cp := item.Clone()
	p.items = append(p.items, cp)
	p.index[cp.ID] = cp
	return true
}

// Upsert 替换同 ID 条目，缺失则插入（更新即插入语义）
func (p *FeedPool) Upsert(item *model.FeedItem) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := item.Clone()
	if old, ok := p.index[item.ID]; ok {
		for i, it := range p.items {
			if it == old {
				p.items[i] = cp
				break
			}
		}
		p.index[item.ID] = cp
		return true
	}
	p.items = append(p.items, cp)
	p.index[cp.ID] = cp
	return false
}

// Remove 按 ID 摘除
func (p *FeedPool) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	old, ok := p.index[id]
	if !ok {
		return false
	}
	delete(p.index, id)
	for i, it := range p.items {
		if it == old {
			p.items = append(p.items[:i], p.items[i+1:]...)
			break
		}
	}
	return true
}

// Get 按 ID 取条目快照
func (p *FeedPool) Get(id string) (*model.FeedItem, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	it, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return it.Clone(), true
}

// IncrementComment 父条目评论数 +1，父条目不在池中则无操作
func (p *FeedPool) IncrementComment(parentID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	parent, ok := p.index[parentID]
	if !ok {
		return false
	}
	parent.CommentCount++
	return true
}

// Comments 线性扫描池中 ParentID 匹配的条目，按池内插入顺序返回
func (p *FeedPool) Comments(parentID string) []*model.FeedItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*model.FeedItem
	for _, it := range p.items {
		if it.ParentID == parentID {
			out = append(out, it.Clone())
		}
	}
	return out
}

// Snapshot 整池快照（深拷贝，插入顺序）
func (p *FeedPool) Snapshot() []*model.FeedItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*model.FeedItem, 0, len(p.items))
	for _, it := range p.items {
		out = append(out, it.Clone())
	}
	return out
}

// ============================================================================
// 动态传播引擎（World 编排的跨子系统操作）
// 条目状态机：Published →（若干次）Updated → Deleted（终态，不复活）。
// ============================================================================

// PublishFeedItem 发布条目：
//  1. 媒体类型先做内联载荷提取
//  2. 父条目存在时先在池中、再在各镜像中分别累加评论数（尽力而为，非事务）
//  3. 幂等入池；重复 ID 不再扇出
//  4. 镜像进每个现存房间并追加传播通知
func (w *World) PublishFeedItem(item *model.FeedItem) (*model.FeedItem, error) {
	if item == nil || item.Title == "" && item.Content == "" {
		return nil, ErrBadRequest
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = w.now()
	}

	// 重复 ID 的发布整体视为无操作：不累加评论数、不再次扇出
	if existing, ok := w.pool.Get(item.ID); ok {
		w.logger.Debug("duplicate feed item id, publish is a no-op",
			clog.String("item_id", item.ID))
		return existing, nil
	}

	if item.Type.HasMedia() {
		w.media.ExtractItem(item)
	}

	if item.ParentID != "" {
		if w.pool.IncrementComment(item.ParentID) {
			for _, room := range w.sessions.All() {
				room.MirrorIncrementComment(item.ParentID)
			}
		}
	}

	w.pool.Insert(item)

	w.fanOut(item, model.Notification{
		Kind:      model.NotifyFeedNew,
		ItemID:    item.ID,
		Actor:     item.Author,
		Text:      item.Title,
		Timestamp: w.now(),
	}, false)

	w.logger.Info("feed item published",
		clog.String("item_id", item.ID),
		clog.String("type", string(item.Type)),
		clog.String("author", item.Author))
	return item.Clone(), nil
}

// fanOut 把条目镜像进每个房间并追加通知。upsert 为真时走替换语义（更新），
// 否则按 ID 幂等插入（发布）。逐房间尽力而为，单房失败不影响其余房间。
func (w *World) fanOut(item *model.FeedItem, note model.Notification, upsert bool) {
	for _, room := range w.sessions.All() {
		if upsert {
			room.MirrorUpsert(item)
		} else {
			room.MirrorInsert(item)
		}
		room.AppendNotification(note)
	}
}

// FeedItems 返回整个全局池——跨房间共享同一条社交动态是本部署的刻意取舍
func (w *World) FeedItems() []*model.FeedItem {
	return w.pool.Snapshot()
}

// FeedComments 某条目的全部评论
func (w *World) FeedComments(parentID string) ([]*model.FeedItem, error) {
	if parentID == "" {
		return nil, ErrBadRequest
	}
	return w.pool.Comments(parentID), nil
}

// UpdateFeedItem 更新条目：池内替换（缺失则插入），各镜像同样替换或插入，
// 逐房间追加更新通知。条目本身是私信（带收件人）时，额外对每个收件人
// 重跑一次私信分发：信箱或待投递队列里已有同 ID（或 originalId 指向）的
// 消息被原地覆盖并置为未读，否则新建一条。
func (w *World) UpdateFeedItem(item *model.FeedItem) (*model.FeedItem, error) {
	if item == nil || item.ID == "" {
		return nil, ErrBadRequest
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = w.now()
	}
	if item.Type.HasMedia() {
		w.media.ExtractItem(item)
	}

	w.pool.Upsert(item)
	w.fanOut(item, model.Notification{
		Kind:      model.NotifyFeedUpdate,
		ItemID:    item.ID,
		Actor:     item.Author,
		Text:      item.Title,
		Timestamp: w.now(),
	}, true)

	if item.IsDirectMessage && len(item.Recipients) > 0 {
		w.redistributeAsDirectMessage(item)
	}

	w.logger.Info("feed item updated", clog.String("item_id", item.ID))
	return item.Clone(), nil
}

// redistributeAsDirectMessage 更新路径上的私信再分发
func (w *World) redistributeAsDirectMessage(item *model.FeedItem) {
	msg := &model.DirectMessage{
		ID:          item.ID,
		SenderID:    item.Author,
		SenderName:  item.Author,
		Title:       item.Title,
		Content:     item.Content,
		ContentType: string(item.Type),
		Timestamp:   w.now(),
		ImageURL:    item.ImageURL,
		VideoURL:    item.VideoURL,
		AudioURL:    item.AudioURL,
	}

	for _, username := range item.Recipients {
		if playerID, ok := w.directory.Resolve(username); ok {
			w.dm.UpsertInbox(playerID, msg)
		} else {
			w.dm.UpsertPending(username, msg)
		}
	}
}

// DeleteFeedItem 删除条目：池与各镜像按 ID 摘除，通知只携带 ID 不带原文。
// 终态，之后不可复活。
func (w *World) DeleteFeedItem(id, actor string) error {
	if id == "" {
		return ErrBadRequest
	}
	removed := w.pool.Remove(id)
	note := model.Notification{
		Kind:      model.NotifyFeedDelete,
		ItemID:    id,
		Actor:     actor,
		Timestamp: w.now(),
	}
	for _, room := range w.sessions.All() {
		room.MirrorRemove(id)
		room.AppendNotification(note)
	}
	if !removed {
		w.logger.Debug("delete for unknown feed item id", clog.String("item_id", id))
	}
	return nil
}
