// Package world 实现共享世界同步核心：身份目录、会话仓库、全局动态池及其
// 房间镜像扇出、私信信箱与待投递队列、媒体引用仓库和按次拉取的同步协议。
// 全部状态驻留内存，进程停止即消失；持久化（如需要）由外部存储在同一组
// 接口后替换。
package world

import (
	"time"

	"github.com/ceyewan/dworld/model"
	"github.com/ceyewan/genesis/clog"
)

const (
	// defaultLivenessWindow 活跃窗口：最近活动在窗口内的玩家计为活跃
	defaultLivenessWindow = 5 * time.Minute

	// defaultMediaMaxBytes 内联媒体解码后的大小上限（10 MiB）
	defaultMediaMaxBytes = 10 << 20
)

// World 聚合全部进程内状态。各子系统持有自己的互斥范围；
// World 的跨子系统编排依次获取锁，除 池→房间 的扇出外从不嵌套持锁。
type World struct {
	logger clog.Logger

	directory *Directory
	sessions  *SessionStore
	pool      *FeedPool
	dm        *DMStore
	media     *MediaStore

	livenessWindow time.Duration
	now            func() time.Time
}

// Option 配置 World 的选项
type Option func(*options)

type options struct {
	logger         clog.Logger
	livenessWindow time.Duration
	mediaMaxBytes  int
	now            func() time.Time
}

// WithLogger 设置日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLivenessWindow 设置活跃窗口
func WithLivenessWindow(window time.Duration) Option {
	return func(o *options) { o.livenessWindow = window }
}

// WithMediaMaxBytes 设置内联媒体大小上限
func WithMediaMaxBytes(maxBytes int) Option {
	return func(o *options) { o.mediaMaxBytes = maxBytes }
}

// WithClock 注入时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New 创建空世界
func New(opts ...Option) *World {
	o := &options{
		logger:         clog.Discard(),
		livenessWindow: defaultLivenessWindow,
		mediaMaxBytes:  defaultMediaMaxBytes,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger.WithNamespace("world")
	return &World{
		logger:         logger,
		directory:      NewDirectory(),
		sessions:       NewSessionStore(),
		pool:           NewFeedPool(),
		dm:             NewDMStore(),
		media:          NewMediaStore(o.mediaMaxBytes, logger),
		livenessWindow: o.livenessWindow,
		now:            o.now,
	}
}

// Lookup 全部房间摘要
func (w *World) Lookup() []model.SessionInfo {
	rooms := w.sessions.All()
	out := make([]model.SessionInfo, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Info())
	}
	return out
}

// Media 媒体引用仓库（HTTP 层直接服务 GET /media/:id）
func (w *World) Media() *MediaStore { return w.media }
