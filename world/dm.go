package world

import (
	"sync"

	"github.com/ceyewan/dworld/model"
	"github.com/ceyewan/genesis/clog"
	"github.com/google/uuid"
)

// DMStore 私信存储：已投递信箱（playerId → 有序消息）与待投递队列
// （归一化用户名 → 有序消息）。投递给尚未解析的用户名的消息先进队列，
// 身份映射建立的瞬间整队迁入真实信箱。
type DMStore struct {
	mu      sync.Mutex
	inboxes map[string][]*model.DirectMessage
	pending map[string][]*model.DirectMessage
}

// NewDMStore 创建空存储
func NewDMStore() *DMStore {
	return &DMStore{
		inboxes: make(map[string][]*model.DirectMessage),
		pending: make(map[string][]*model.DirectMessage),
	}
}

// Append 追加进信箱。各收件人各存一份拷贝：已读标记和删除都只作用于
// 单个信箱，不会透过共享引用串扰到其他收件人。
func (s *DMStore) Append(playerID string, msg *model.DirectMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inboxes[playerID] = append(s.inboxes[playerID], msg.Clone())
}

// AppendPending 追加进待投递队列
func (s *DMStore) AppendPending(username string, msg *model.DirectMessage) {
	key := model.NormalizeUsername(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = append(s.pending[key], msg.Clone())
}

// FlushPending 把某用户名的整个待投递队列按到达顺序迁入信箱并清空队列，
// 返回迁移条数
func (s *DMStore) FlushPending(username, playerID string) int {
	key := model.NormalizeUsername(username)
	s.mu.Lock()
	defer s.mu.Unlock()

	queued, ok := s.pending[key]
	if !ok || len(queued) == 0 {
		return 0
	}
	s.inboxes[playerID] = append(s.inboxes[playerID], queued...)
	delete(s.pending, key)
	return len(queued)
}

// Inbox 整个信箱的快照，最旧在前；首次访问创建空信箱
func (s *DMStore) Inbox(playerID string) []*model.DirectMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	box, ok := s.inboxes[playerID]
	if !ok {
		s.inboxes[playerID] = nil
		return nil
	}
	out := make([]*model.DirectMessage, 0, len(box))
	for _, m := range box {
		out = append(out, m.Clone())
	}
	return out
}

// MarkRead 置已读。消息不存在时静默成功，保持客户端简单。
func (s *DMStore) MarkRead(playerID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.inboxes[playerID] {
		if m.ID == messageID {
			m.Read = true
			return
		}
	}
}

// Delete 只从该信箱过滤掉这条消息
func (s *DMStore) Delete(playerID, messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	box := s.inboxes[playerID]
	for i, m := range box {
		if m.ID == messageID {
			s.inboxes[playerID] = append(box[:i], box[i+1:]...)
			return true
		}
	}
	return false
}

// HasUnread 信箱中是否有未读消息
func (s *DMStore) HasUnread(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.inboxes[playerID] {
		if !m.Read {
			return true
		}
	}
	return false
}

// UpsertInbox 更新分发：信箱内已有同 ID（或 originalId 指向同源）的消息
// 原地覆盖并置未读，否则新建
func (s *DMStore) UpsertInbox(playerID string, msg *model.DirectMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	box := s.inboxes[playerID]
	for i, m := range box {
		if sameMessage(m, msg) {
			cp := msg.Clone()
			cp.Read = false
			box[i] = cp
			return
		}
	}
	s.inboxes[playerID] = append(box, msg.Clone())
}

// UpsertPending 更新分发的待投递侧，语义同 UpsertInbox
func (s *DMStore) UpsertPending(username string, msg *model.DirectMessage) {
	key := model.NormalizeUsername(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.pending[key]
	for i, m := range queue {
		if sameMessage(m, msg) {
			cp := msg.Clone()
			cp.Read = false
			queue[i] = cp
			return
		}
	}
	s.pending[key] = append(queue, msg.Clone())
}

func sameMessage(existing, incoming *model.DirectMessage) bool {
	if existing.ID == incoming.ID {
		return true
	}
	if incoming.OriginalID != "" && existing.ID == incoming.OriginalID {
		return true
	}
	if existing.OriginalID != "" && existing.OriginalID == incoming.OriginalID {
		return true
	}
	return false
}

// MediaCitations 收集已投递与待投递消息引用的全部媒体定位符 ID，清扫用
func (s *DMStore) MediaCitations(collect func(field string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, box := range s.inboxes {
		for _, m := range box {
			collect(m.ImageURL)
			collect(m.VideoURL)
			collect(m.AudioURL)
		}
	}
	for _, queue := range s.pending {
		for _, m := range queue {
			collect(m.ImageURL)
			collect(m.VideoURL)
			collect(m.AudioURL)
		}
	}
}

// DropPending 丢弃某用户名的整个待投递队列（运维操作，永不投递时手动清理）
func (s *DMStore) DropPending(username string) int {
	key := model.NormalizeUsername(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending[key])
	delete(s.pending, key)
	return n
}

// ============================================================================
// World 编排的私信操作
// ============================================================================

// SendDirectMessage 发送私信：一次调用构造一条逻辑消息，媒体类型先做内联
// 提取，然后逐收件人解析身份——已解析的进信箱并在其所在的每个房间追加
// 上线通知，未解析的进该用户名的待投递队列。
func (w *World) SendDirectMessage(msg *model.DirectMessage, recipients []string) (*model.DirectMessage, error) {
	if msg == nil || len(recipients) == 0 {
		return nil, ErrBadRequest
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = w.now()
	}
	if model.FeedItemType(msg.ContentType).HasMedia() {
		w.media.ExtractMessage(msg)
	}

	for _, username := range recipients {
		playerID, ok := w.directory.Resolve(username)
		if !ok {
			w.dm.AppendPending(username, msg)
			w.logger.Info("direct message parked for unresolved recipient",
				clog.String("recipient", username),
				clog.String("message_id", msg.ID))
			continue
		}

		w.dm.Append(playerID, msg)
		note := model.Notification{
			Kind:      model.NotifyDirect,
			ItemID:    msg.ID,
			Actor:     msg.SenderName,
			Text:      msg.Title,
			Timestamp: w.now(),
		}
		for _, room := range w.sessions.All() {
			if room.HasPlayer(playerID) {
				room.AppendNotification(note)
			}
		}
	}

	return msg.Clone(), nil
}

// DirectMessages 收件人的完整信箱，最旧在前
func (w *World) DirectMessages(playerID string) []*model.DirectMessage {
	return w.dm.Inbox(playerID)
}

// MarkMessageRead 置已读（找不到也返回成功）
func (w *World) MarkMessageRead(playerID, messageID string) {
	w.dm.MarkRead(playerID, messageID)
}

// DeleteMessage 从该收件人信箱删除
func (w *World) DeleteMessage(playerID, messageID string) {
	if !w.dm.Delete(playerID, messageID) {
		w.logger.Debug("delete for unknown message id",
			clog.String("player_id", playerID),
			clog.String("message_id", messageID))
	}
}
