package world

import (
	"testing"
	"time"

	"github.com/ceyewan/dworld/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinRoom(t *testing.T) {
	w, _ := newTestWorld(t)

	t.Run("空选择器落到全局单例", func(t *testing.T) {
		result, err := w.JoinRoom("", "", "alice")
		require.NoError(t, err)
		assert.Equal(t, WellKnownRoomKey, result.Session.ID)
		assert.Equal(t, "DWORLD", result.Session.ShortCode)
		assert.Equal(t, model.RoleMember, result.Player.Role)
		assert.True(t, result.Player.IsHuman)
		assert.Equal(t, defaultLocation, result.Player.CurrentLocation)
		assert.Empty(t, result.Player.Inventory)
	})

	t.Run("加入即注册身份映射", func(t *testing.T) {
		result, err := w.JoinRoom("", "", "Bob")
		require.NoError(t, err)
		id, ok := w.directory.Resolve("bob")
		require.True(t, ok)
		assert.Equal(t, result.Player.ID, id)
	})

	t.Run("重复加入覆盖映射", func(t *testing.T) {
		again, err := w.JoinRoom("", "", "bob")
		require.NoError(t, err)
		id, _ := w.directory.Resolve("BOB")
		assert.Equal(t, again.Player.ID, id)
	})

	t.Run("空玩家名BadRequest", func(t *testing.T) {
		_, err := w.JoinRoom("", "", "  ")
		assert.ErrorIs(t, err, ErrBadRequest)
	})
}

func TestLeaveRoom(t *testing.T) {
	w, _ := newTestWorld(t)
	result, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	t.Run("未知玩家NotFound", func(t *testing.T) {
		assert.ErrorIs(t, w.LeaveRoom(result.Session.ID, "ghost"), ErrPlayerNotFound)
	})

	t.Run("未知房间NotFound", func(t *testing.T) {
		assert.ErrorIs(t, w.LeaveRoom("no-such-room", result.Player.ID), ErrRoomNotFound)
	})

	t.Run("正常离开", func(t *testing.T) {
		require.NoError(t, w.LeaveRoom(result.Session.ID, result.Player.ID))
		assert.ErrorIs(t, w.LeaveRoom(result.Session.ID, result.Player.ID), ErrPlayerNotFound)
	})
}

func TestLivenessWindow(t *testing.T) {
	w, clock := newTestWorld(t)

	stale, err := w.JoinRoom("", "", "stale")
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	fresh, err := w.JoinRoom("", "", "fresh")
	require.NoError(t, err)
	clock.Advance(4 * time.Minute)

	// stale 最后活动于 6 分钟前（窗口 5 分钟，排除）；fresh 于 4 分钟前（包含）
	players, err := w.ActivePlayers(WellKnownRoomKey)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, fresh.Player.ID, players[0].ID)

	t.Run("活跃只在读时求值，触碰即复活", func(t *testing.T) {
		room, _ := w.sessions.Get(WellKnownRoomKey)
		require.True(t, room.Touch(stale.Player.ID, clock.Now()))
		players, err := w.ActivePlayers(WellKnownRoomKey)
		require.NoError(t, err)
		assert.Len(t, players, 2)
	})
}

func TestTransferItem(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)
	bob, err := w.JoinRoom("", "", "bob")
	require.NoError(t, err)

	room, _ := w.sessions.Get(WellKnownRoomKey)
	_, err = room.MutatePlayer(alice.Player.ID, func(p *model.Player) error {
		p.Inventory["gold"] = 10
		return nil
	})
	require.NoError(t, err)

	t.Run("正常转移", func(t *testing.T) {
		require.NoError(t, w.TransferItem(WellKnownRoomKey, alice.Player.ID, bob.Player.ID, "gold", 4))

		a, _ := room.GetPlayer(alice.Player.ID)
		b, _ := room.GetPlayer(bob.Player.ID)
		assert.Equal(t, 6, a.Inventory["gold"])
		assert.Equal(t, 4, b.Inventory["gold"])
	})

	t.Run("数量不足", func(t *testing.T) {
		err := w.TransferItem(WellKnownRoomKey, alice.Player.ID, bob.Player.ID, "gold", 100)
		assert.ErrorIs(t, err, ErrInsufficientQuantity)
	})

	t.Run("扣到零的条目直接删除，从不存零", func(t *testing.T) {
		require.NoError(t, w.TransferItem(WellKnownRoomKey, alice.Player.ID, bob.Player.ID, "gold", 6))
		a, _ := room.GetPlayer(alice.Player.ID)
		_, exists := a.Inventory["gold"]
		assert.False(t, exists)
	})

	t.Run("非法参数BadRequest", func(t *testing.T) {
		assert.ErrorIs(t, w.TransferItem(WellKnownRoomKey, alice.Player.ID, bob.Player.ID, "gold", 0), ErrBadRequest)
		assert.ErrorIs(t, w.TransferItem(WellKnownRoomKey, alice.Player.ID, alice.Player.ID, "gold", 1), ErrBadRequest)
	})
}

func TestUpdateProfile(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	t.Run("浅合并补丁", func(t *testing.T) {
		orgs := []string{"scribes", "cartographers"}
		role := "editor"
		updated, err := w.UpdateProfile(WellKnownRoomKey, alice.Player.ID, ProfilePatch{
			Organizations: &orgs,
			Role:          &role,
		})
		require.NoError(t, err)
		assert.Equal(t, model.RoleEditor, updated.Role)
		assert.Equal(t, orgs, updated.Profile.Organizations)
		// 未补丁的字段保持不变
		assert.Equal(t, "alice", updated.Profile.Username)
	})

	t.Run("改名重新注册身份映射并触发待投递冲洗", func(t *testing.T) {
		_, err := w.SendDirectMessage(&model.DirectMessage{
			SenderID: "p", SenderName: "system", Title: "hi", Content: "for wanderer", ContentType: "text",
		}, []string{"wanderer"})
		require.NoError(t, err)

		name := "Wanderer"
		_, err = w.UpdateProfile(WellKnownRoomKey, alice.Player.ID, ProfilePatch{Username: &name})
		require.NoError(t, err)

		inbox := w.DirectMessages(alice.Player.ID)
		require.Len(t, inbox, 1)
		assert.Equal(t, "for wanderer", inbox[0].Content)
	})
}

func TestAction(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	result, turn, err := w.Action(WellKnownRoomKey, alice.Player.ID, "opens the gate")
	require.NoError(t, err)
	assert.Equal(t, "alice: opens the gate", result)
	assert.Equal(t, int64(1), turn)

	_, turn, err = w.Action(WellKnownRoomKey, alice.Player.ID, "waves")
	require.NoError(t, err)
	assert.Equal(t, int64(2), turn)

	t.Run("空动作BadRequest", func(t *testing.T) {
		_, _, err := w.Action(WellKnownRoomKey, alice.Player.ID, " ")
		assert.ErrorIs(t, err, ErrBadRequest)
	})
}

func TestUpdateLocationAndTime(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	t.Run("位置更新返回新旧位置", func(t *testing.T) {
		prev, curr, err := w.UpdateLocation(WellKnownRoomKey, alice.Player.ID, "tavern")
		require.NoError(t, err)
		assert.Equal(t, defaultLocation, prev)
		assert.Equal(t, "tavern", curr)
	})

	t.Run("时间更新", func(t *testing.T) {
		elapsed, err := w.UpdateTime(WellKnownRoomKey, "3 days")
		require.NoError(t, err)
		assert.Equal(t, "3 days", elapsed)

		room, _ := w.sessions.Get(WellKnownRoomKey)
		assert.Equal(t, "3 days", room.Elapsed())
	})

	t.Run("拒绝零时长字面量", func(t *testing.T) {
		_, err := w.UpdateTime(WellKnownRoomKey, "0")
		assert.ErrorIs(t, err, ErrBadRequest)
		_, err = w.UpdateTime(WellKnownRoomKey, "")
		assert.ErrorIs(t, err, ErrBadRequest)
	})
}

func TestCheckPermissions(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	t.Run("member看组织归属", func(t *testing.T) {
		canPost, role, err := w.CheckPermissions(WellKnownRoomKey, alice.Player.ID, "scribes")
		require.NoError(t, err)
		assert.False(t, canPost)
		assert.Equal(t, model.RoleMember, role)

		orgs := []string{"Scribes"}
		_, err = w.UpdateProfile(WellKnownRoomKey, alice.Player.ID, ProfilePatch{Organizations: &orgs})
		require.NoError(t, err)

		canPost, _, err = w.CheckPermissions(WellKnownRoomKey, alice.Player.ID, "scribes")
		require.NoError(t, err)
		assert.True(t, canPost, "组织匹配大小写不敏感")
	})

	t.Run("admin永真", func(t *testing.T) {
		role := "admin"
		_, err := w.UpdateProfile(WellKnownRoomKey, alice.Player.ID, ProfilePatch{Role: &role})
		require.NoError(t, err)

		canPost, got, err := w.CheckPermissions(WellKnownRoomKey, alice.Player.ID, "anything")
		require.NoError(t, err)
		assert.True(t, canPost)
		assert.Equal(t, model.RoleAdmin, got)
	})
}
