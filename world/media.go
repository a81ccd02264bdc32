package world

import (
	"encoding/base64"
	"strings"
	"sync"

	"github.com/ceyewan/dworld/model"
	"github.com/ceyewan/genesis/clog"
	"github.com/google/uuid"
)

// LocatorPrefix 媒体定位符前缀。定位符形如 /media/<referenceId>，
// 响应期再按服务源补全为绝对 URL。
const LocatorPrefix = "/media/"

// MediaRef 离线存储的二进制载荷
type MediaRef struct {
	ID          string
	Kind        string
	Bytes       []byte
	ContentType string
}

// MediaStore 媒体引用仓库：解码内联 data URI 载荷，离线存储，把字段改写为
// 定位符；周期清扫不再被任何动态条目或私信引用的存根。
type MediaStore struct {
	mu       sync.RWMutex
	refs     map[string]*MediaRef
	maxBytes int
	logger   clog.Logger
}

// NewMediaStore 创建空仓库
func NewMediaStore(maxBytes int, logger clog.Logger) *MediaStore {
	if maxBytes <= 0 {
		maxBytes = defaultMediaMaxBytes
	}
	return &MediaStore{
		refs:     make(map[string]*MediaRef),
		maxBytes: maxBytes,
		logger:   logger.WithNamespace("media"),
	}
}

// ExtractItem 提取动态条目的三个媒体字段。已是定位符或普通远程 URL 的
// 字段原样通过。
func (s *MediaStore) ExtractItem(item *model.FeedItem) {
	item.ImageURL = s.extractField(item.ImageURL, "image")
	item.VideoURL = s.extractField(item.VideoURL, "video")
	item.AudioURL = s.extractField(item.AudioURL, "audio")
}

// ExtractMessage 提取私信的媒体字段
func (s *MediaStore) ExtractMessage(msg *model.DirectMessage) {
	msg.ImageURL = s.extractField(msg.ImageURL, "image")
	msg.VideoURL = s.extractField(msg.VideoURL, "video")
	msg.AudioURL = s.extractField(msg.AudioURL, "audio")
}

// extractField 单字段提取：内联 data URI 解码入库并返回定位符；
// 超限载荷按现行为静默丢弃，字段原样保留（见 DESIGN.md）。
func (s *MediaStore) extractField(value, kind string) string {
	contentType, body, ok := parseDataURI(value)
	if !ok {
		return value
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		s.logger.Warn("inline media payload is not valid base64",
			clog.String("kind", kind),
			clog.Error(err))
		return value
	}
	if len(raw) > s.maxBytes {
		s.logger.Warn("inline media payload over size limit, field left unchanged",
			clog.String("kind", kind),
			clog.Int("size", len(raw)),
			clog.Int("limit", s.maxBytes))
		return value
	}

	ref := &MediaRef{
		ID:          uuid.New().String(),
		Kind:        kind,
		Bytes:       raw,
		ContentType: contentType,
	}

	s.mu.Lock()
	s.refs[ref.ID] = ref
	s.mu.Unlock()

	s.logger.Debug("inline media extracted",
		clog.String("ref_id", ref.ID),
		clog.String("content_type", contentType),
		clog.Int("size", len(raw)))
	return LocatorPrefix + ref.ID
}

// parseDataURI 解析 data:<mime>;base64,<body> 标记
func parseDataURI(value string) (contentType, body string, ok bool) {
	if !strings.HasPrefix(value, "data:") {
		return "", "", false
	}
	rest := strings.TrimPrefix(value, "data:")
	meta, body, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	contentType, encoding, found := strings.Cut(meta, ";")
	if !found || encoding != "base64" || contentType == "" {
		return "", "", false
	}
	return contentType, body, true
}

// Serve 按引用 ID 取字节与内容类型
func (s *MediaStore) Serve(refID string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.refs[refID]
	if !ok {
		return nil, "", ErrMediaNotFound
	}
	return ref.Bytes, ref.ContentType, nil
}

// Count 当前存根数
func (s *MediaStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.refs)
}

// Sweep 删除引用集之外的所有存根，返回回收条数
func (s *MediaStore) Sweep(cited map[string]struct{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id := range s.refs {
		if _, ok := cited[id]; !ok {
			delete(s.refs, id)
			removed++
		}
	}
	return removed
}

// ParseLocator 从字段值解析定位符引用 ID
func ParseLocator(value string) (string, bool) {
	if !strings.HasPrefix(value, LocatorPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(value, LocatorPrefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// absolutizeField 响应期改写：定位符 → 绝对 URL。只作用于返回值，从不落库。
func absolutizeField(value, baseURL string) string {
	if baseURL == "" {
		return value
	}
	if _, ok := ParseLocator(value); !ok {
		return value
	}
	return strings.TrimSuffix(baseURL, "/") + value
}

// AbsolutizeItem 补全动态条目的媒体字段
func AbsolutizeItem(item *model.FeedItem, baseURL string) {
	item.ImageURL = absolutizeField(item.ImageURL, baseURL)
	item.VideoURL = absolutizeField(item.VideoURL, baseURL)
	item.AudioURL = absolutizeField(item.AudioURL, baseURL)
}

// AbsolutizeMessage 补全私信的媒体字段
func AbsolutizeMessage(msg *model.DirectMessage, baseURL string) {
	msg.ImageURL = absolutizeField(msg.ImageURL, baseURL)
	msg.VideoURL = absolutizeField(msg.VideoURL, baseURL)
	msg.AudioURL = absolutizeField(msg.AudioURL, baseURL)
}

// ============================================================================
// 清扫编排
// ============================================================================

// SweepMedia 扫描全局池与全部私信存储（已投递和待投递）得到存活引用集，
// 删除其余存根。依次获取各子系统的锁取一致快照，满足与并发写的串行化要求。
func (w *World) SweepMedia() int {
	cited := make(map[string]struct{})
	collect := func(field string) {
		if id, ok := ParseLocator(field); ok {
			cited[id] = struct{}{}
		}
	}

	for _, item := range w.pool.Snapshot() {
		collect(item.ImageURL)
		collect(item.VideoURL)
		collect(item.AudioURL)
	}
	w.dm.MediaCitations(collect)

	removed := w.media.Sweep(cited)
	if removed > 0 {
		w.logger.Info("media sweep reclaimed unreferenced payloads",
			clog.Int("removed", removed),
			clog.Int("cited", len(cited)))
	}
	return removed
}
