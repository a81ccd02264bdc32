package world

import (
	"sync"

	"github.com/ceyewan/dworld/model"
	"github.com/ceyewan/genesis/clog"
)

// Directory 身份目录：用户名（大小写不敏感）到玩家 ID 的映射。
// 映射只增不删：玩家重新加入时覆盖为新 ID，历史 ID 随之失效。
type Directory struct {
	mu         sync.RWMutex
	byUsername map[string]string
}

// NewDirectory 创建空目录
func NewDirectory() *Directory {
	return &Directory{byUsername: make(map[string]string)}
}

// Register 幂等注册映射，返回映射是否发生变化
func (d *Directory) Register(username, playerID string) bool {
	key := model.NormalizeUsername(username)
	if key == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.byUsername[key] == playerID {
		return false
	}
	d.byUsername[key] = playerID
	return true
}

// Resolve 纯查询
func (d *Directory) Resolve(username string) (string, bool) {
	key := model.NormalizeUsername(username)

	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byUsername[key]
	return id, ok
}

// RegisterIdentity 注册身份映射并触发该用户名的待投递私信冲洗。
// 加入房间和档案改名都会走到这里。
func (w *World) RegisterIdentity(username, playerID string) {
	if model.NormalizeUsername(username) == "" {
		return
	}
	w.directory.Register(username, playerID)

	if n := w.dm.FlushPending(username, playerID); n > 0 {
		w.logger.Info("flushed pending direct messages",
			clog.String("username", username),
			clog.String("player_id", playerID),
			clog.Int("count", n))
	}
}
