package world

import (
	"context"
	"time"

	"github.com/ceyewan/genesis/clog"
)

const defaultSweepInterval = time.Hour

// Sweeper 周期触发媒体清扫的后台任务。清扫永不内联在请求路径上执行。
type Sweeper struct {
	world    *World
	interval time.Duration
	logger   clog.Logger
}

// NewSweeper 创建清扫任务，interval 非正时采用默认的一小时
func NewSweeper(w *World, interval time.Duration, logger clog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{
		world:    w,
		interval: interval,
		logger:   logger.WithNamespace("media_sweeper"),
	}
}

// Start 启动清扫循环，阻塞直到 ctx 取消
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("starting media sweep job", clog.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("media sweep job stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						s.logger.Error("panic in media sweep job", clog.Any("panic", r))
					}
				}()
				s.world.SweepMedia()
			}()
		}
	}
}
