package world

import (
	"strings"
	"sync"
	"time"

	"github.com/ceyewan/dworld/model"
)

// SessionStore 房间集合。map 本身由 mu 保护，房间内部状态由各自的锁保护。
type SessionStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewSessionStore 创建空会话仓库
func NewSessionStore() *SessionStore {
	return &SessionStore{rooms: make(map[string]*Room)}
}

// GetOrCreate 按键取房间，缺失则创建并以 seed 初始化镜像。
// 众所周知的全局键创建进程内单例，其余键按需建房。
// 返回值第二项表示是否新建。
func (s *SessionStore) GetOrCreate(key, displayName string, now time.Time, seed []*model.FeedItem) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.rooms[key]; ok {
		return room, false
	}

	if displayName == "" {
		if key == WellKnownRoomKey {
			displayName = "dworld"
		} else {
			displayName = key
		}
	}
	room := newRoom(key, displayName, now, seed)
	s.rooms[key] = room
	return room, true
}

// Get 按精确 ID 取房间
func (s *SessionStore) Get(id string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	return room, ok
}

// Resolve 按选择器取房间，优先级依次为：
//  1. 精确 ID（大小写不敏感）
//  2. 6 字符短码（ID 前缀，大小写不敏感）
//  3. 显示名（大小写不敏感，仅当选择器超过 6 字符时才尝试，避免与短码歧义）
//
// 同一优先级内先命中者胜。
func (s *SessionStore) Resolve(selector string) (*Room, error) {
	sel := strings.ToLower(strings.TrimSpace(selector))
	if sel == "" {
		return nil, ErrRoomNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, room := range s.rooms {
		if strings.ToLower(id) == sel {
			return room, nil
		}
	}

	if len(sel) == shortCodeLength {
		for id, room := range s.rooms {
			if strings.HasPrefix(strings.ToLower(id), sel) {
				return room, nil
			}
		}
	}

	if len(sel) > shortCodeLength {
		for _, room := range s.rooms {
			if strings.ToLower(room.displayName) == sel {
				return room, nil
			}
		}
	}

	return nil, ErrRoomNotFound
}

// RemoveIfEmpty 玩家离开后调用：名册为空则删除房间。
// 全局单例房间豁免（见 DESIGN.md 的取舍记录）。
func (s *SessionStore) RemoveIfEmpty(room *Room) bool {
	if room.ID() == WellKnownRoomKey {
		return false
	}
	if room.PlayerCount() > 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if room.PlayerCount() > 0 {
		return false
	}
	delete(s.rooms, room.ID())
	return true
}

// All 当前全部房间
func (s *SessionStore) All() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	return out
}
