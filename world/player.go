package world

import (
	"fmt"
	"strings"

	"github.com/ceyewan/dworld/model"
	"github.com/ceyewan/genesis/clog"
	"github.com/google/uuid"
)

// JoinResult 加入房间的结果
type JoinResult struct {
	Session model.SessionInfo
	Player  *model.Player
}

// JoinRoom 加入房间：优先按选择器解析既有房间；解析不中时按键建房
//（空选择器落到全局单例）。生成全新身份、默认位置、默认档案、空背包，
// 注册身份映射（触发待投递冲洗），并向房间日志追加加入通知。
func (w *World) JoinRoom(selector, sessionName, playerName string) (*JoinResult, error) {
	if strings.TrimSpace(playerName) == "" {
		return nil, ErrBadRequest
	}

	now := w.now()
	room := w.locateOrCreateRoom(selector, sessionName)

	player := &model.Player{
		ID:              uuid.New().String(),
		DisplayName:     playerName,
		Role:            model.RoleMember,
		IsHuman:         true,
		CurrentLocation: defaultLocation,
		Inventory:       make(map[string]int),
		LastActivityAt:  now,
		Profile: model.UserProfile{
			Username:      playerName,
			Organizations: []string{},
			TopicFilters:  []string{},
			DateJoined:    now.Format("2006-01-02"),
		},
	}
	room.AddPlayer(player)
	room.AppendNotification(model.Notification{
		Kind:      model.NotifyPlayerJoin,
		Actor:     playerName,
		Text:      fmt.Sprintf("%s joined the world", playerName),
		Timestamp: now,
	})

	w.RegisterIdentity(playerName, player.ID)

	w.logger.Info("player joined",
		clog.String("session_id", room.ID()),
		clog.String("player_id", player.ID),
		clog.String("player_name", playerName))
	return &JoinResult{Session: room.Info(), Player: player.Clone()}, nil
}

// locateOrCreateRoom 选择器命中既有房间则复用；否则按键（缺省为全局单例键）
// 建房，新房以当前全局池的快照拷贝播种镜像。
func (w *World) locateOrCreateRoom(selector, sessionName string) *Room {
	sel := strings.TrimSpace(selector)
	if sel == "" {
		sel = strings.TrimSpace(sessionName)
	}
	if sel != "" {
		if room, err := w.sessions.Resolve(sel); err == nil {
			return room
		}
	}

	key := sel
	if key == "" {
		key = WellKnownRoomKey
	} else if key != WellKnownRoomKey && strings.TrimSpace(selector) == "" {
		// 只给了房间名：生成新 ID，名字用作显示名
		key = uuid.New().String()
	}

	room, created := w.sessions.GetOrCreate(key, strings.TrimSpace(sessionName), w.now(), w.pool.Snapshot())
	if created {
		w.logger.Info("session created",
			clog.String("session_id", room.ID()),
			clog.String("name", room.DisplayName()))
	}
	return room
}

// LeaveRoom 离开房间：移除玩家并触发空房清理
func (w *World) LeaveRoom(sessionID, playerID string) error {
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return err
	}
	p, err := room.RemovePlayer(playerID)
	if err != nil {
		return err
	}
	room.AppendNotification(model.Notification{
		Kind:      model.NotifyPlayerLeave,
		Actor:     p.DisplayName,
		Text:      fmt.Sprintf("%s left the world", p.DisplayName),
		Timestamp: w.now(),
	})

	if w.sessions.RemoveIfEmpty(room) {
		w.logger.Info("empty session removed", clog.String("session_id", room.ID()))
	}
	return nil
}

// LocatePlayer 解析房间并返回玩家快照，任一缺失即 NotFound
func (w *World) LocatePlayer(sessionID, playerID string) (*model.Player, error) {
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return nil, err
	}
	return room.GetPlayer(playerID)
}

// ActivePlayers 房间活跃玩家（GET 列表端点用）
func (w *World) ActivePlayers(sessionID string) ([]*model.Player, error) {
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return nil, err
	}
	return room.ActivePlayers(w.now(), w.livenessWindow), nil
}

// Action 记录一次玩家动作：刷新活跃时间戳、房间回合 +1、日志追加动作通知
func (w *World) Action(sessionID, playerID, action string) (string, int64, error) {
	if strings.TrimSpace(action) == "" {
		return "", 0, ErrBadRequest
	}
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return "", 0, err
	}
	p, err := room.GetPlayer(playerID)
	if err != nil {
		return "", 0, err
	}
	room.Touch(playerID, w.now())
	turn := room.BumpTurn()

	result := fmt.Sprintf("%s: %s", p.DisplayName, action)
	room.AppendNotification(model.Notification{
		Kind:      model.NotifyAction,
		Actor:     p.DisplayName,
		Text:      result,
		Timestamp: w.now(),
	})
	return result, turn, nil
}

// UpdateLocation 位置更新，返回新旧位置
func (w *World) UpdateLocation(sessionID, playerID, locationID string) (previous, current string, err error) {
	if strings.TrimSpace(locationID) == "" {
		return "", "", ErrBadRequest
	}
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return "", "", err
	}
	updated, err := room.MutatePlayer(playerID, func(p *model.Player) error {
		previous = p.CurrentLocation
		p.CurrentLocation = locationID
		p.LastActivityAt = w.now()
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return previous, updated.CurrentLocation, nil
}

// UpdateTime 设置房间的已流逝时间。拒绝空串和零时长字面量。
func (w *World) UpdateTime(sessionID, elapsed string) (string, error) {
	trimmed := strings.TrimSpace(elapsed)
	if trimmed == "" || trimmed == "0" {
		return "", ErrBadRequest
	}
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return "", err
	}
	room.SetElapsed(trimmed)
	return trimmed, nil
}

// TransferItem 玩家间物品转移。数量不足返回 ErrInsufficientQuantity；
// 扣减到 0 及以下的背包条目直接删除，从不存零。
func (w *World) TransferItem(sessionID, fromPlayerID, toPlayerID, item string, quantity int) error {
	if item == "" || quantity <= 0 || fromPlayerID == toPlayerID {
		return ErrBadRequest
	}
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return err
	}
	if !room.HasPlayer(toPlayerID) {
		return ErrPlayerNotFound
	}

	if _, err := room.MutatePlayer(fromPlayerID, func(p *model.Player) error {
		if p.Inventory[item] < quantity {
			return ErrInsufficientQuantity
		}
		p.Inventory[item] -= quantity
		if p.Inventory[item] <= 0 {
			delete(p.Inventory, item)
		}
		return nil
	}); err != nil {
		return err
	}

	if _, err := room.MutatePlayer(toPlayerID, func(p *model.Player) error {
		p.Inventory[item] += quantity
		return nil
	}); err != nil {
		// 收款方在扣减后消失：单请求内不回滚，与整体无事务语义一致
		w.logger.Warn("transfer target vanished after debit",
			clog.String("session_id", room.ID()),
			clog.String("to_player", toPlayerID))
		return err
	}
	return nil
}

// ProfilePatch 档案补丁：nil 字段表示不改动
type ProfilePatch struct {
	Username      *string
	Organizations *[]string
	TopicFilters  *[]string
	DateJoined    *string
	Role          *string
}

// UpdateProfile 浅合并补丁。username/role 同时提升到顶层字段；
// 用户名变更会重新注册身份映射（进而触发该名字的待投递冲洗）。
func (w *World) UpdateProfile(sessionID, playerID string, patch ProfilePatch) (*model.Player, error) {
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return nil, err
	}

	var newUsername string
	updated, err := room.MutatePlayer(playerID, func(p *model.Player) error {
		if patch.Username != nil && *patch.Username != "" {
			p.Profile.Username = *patch.Username
			p.DisplayName = *patch.Username
			newUsername = *patch.Username
		}
		if patch.Organizations != nil {
			p.Profile.Organizations = append([]string(nil), (*patch.Organizations)...)
		}
		if patch.TopicFilters != nil {
			p.Profile.TopicFilters = append([]string(nil), (*patch.TopicFilters)...)
		}
		if patch.DateJoined != nil && *patch.DateJoined != "" {
			p.Profile.DateJoined = *patch.DateJoined
		}
		if patch.Role != nil && *patch.Role != "" {
			p.Role = model.ParseRole(*patch.Role)
		}
		p.LastActivityAt = w.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if newUsername != "" {
		w.RegisterIdentity(newUsername, playerID)
	}
	return updated, nil
}

// CheckPermissions 组织发布权限：admin/editor 永真，member 看档案组织归属
//（大小写不敏感）
func (w *World) CheckPermissions(sessionID, playerID, organization string) (bool, model.Role, error) {
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return false, "", err
	}
	p, err := room.GetPlayer(playerID)
	if err != nil {
		return false, "", err
	}

	if p.Role == model.RoleAdmin || p.Role == model.RoleEditor {
		return true, p.Role, nil
	}
	for _, org := range p.Profile.Organizations {
		if strings.EqualFold(org, organization) {
			return true, p.Role, nil
		}
	}
	return false, p.Role, nil
}

// UpdatePlot 写入剧情问答状态
func (w *World) UpdatePlot(sessionID, playerID, questionKey, answer string) error {
	if strings.TrimSpace(questionKey) == "" {
		return ErrBadRequest
	}
	room, err := w.sessions.Resolve(sessionID)
	if err != nil {
		return err
	}
	p, err := room.GetPlayer(playerID)
	if err != nil {
		return err
	}
	room.Touch(playerID, w.now())
	room.SetPlot(questionKey, model.PlotAnswer{
		Answer:     answer,
		AnsweredBy: p.DisplayName,
		UpdatedAt:  w.now(),
	})
	return nil
}
