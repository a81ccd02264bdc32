package world

import (
	"fmt"
	"testing"

	"github.com/ceyewan/dworld/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendText(t *testing.T, w *World, title, content string, recipients ...string) *model.DirectMessage {
	t.Helper()
	msg, err := w.SendDirectMessage(&model.DirectMessage{
		SenderID:    "sender-1",
		SenderName:  "sender",
		Title:       title,
		Content:     content,
		ContentType: "text",
	}, recipients)
	require.NoError(t, err)
	return msg
}

func TestDirectMessage_DeliveryAndPending(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	t.Run("已解析收件人直接进信箱", func(t *testing.T) {
		sendText(t, w, "hi", "hello alice", "alice")
		inbox := w.DirectMessages(alice.Player.ID)
		require.Len(t, inbox, 1)
		assert.Equal(t, "hello alice", inbox[0].Content)
		assert.False(t, inbox[0].Read)
	})

	t.Run("收件人所在房间收到上线通知", func(t *testing.T) {
		room, _ := w.sessions.Get(alice.Session.ID)
		log := room.LogSnapshot()
		var found bool
		for _, n := range log {
			if n.Kind == model.NotifyDirect {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("未解析收件人进待投递队列", func(t *testing.T) {
		sendText(t, w, "future", "for bob", "bob")
		assert.Empty(t, w.DirectMessages("nonexistent-player"))
	})
}

func TestDirectMessage_PendingFlush(t *testing.T) {
	w, _ := newTestWorld(t)

	// 未知用户名，按发送顺序积压三条
	for i := 1; i <= 3; i++ {
		sendText(t, w, fmt.Sprintf("msg %d", i), fmt.Sprintf("content %d", i), "zoe")
	}

	// 该用户名加入（大小写不同也要命中归一化键）
	zoe, err := w.JoinRoom("", "", "Zoe")
	require.NoError(t, err)

	inbox := w.DirectMessages(zoe.Player.ID)
	require.Len(t, inbox, 3, "整队迁入，恰好一次")
	for i, msg := range inbox {
		assert.Equal(t, fmt.Sprintf("content %d", i+1), msg.Content, "保持原始发送顺序")
	}

	t.Run("冲洗后队列清空，重复加入不重复投递", func(t *testing.T) {
		rejoined, err := w.JoinRoom("", "", "zoe")
		require.NoError(t, err)
		assert.Empty(t, w.DirectMessages(rejoined.Player.ID))
	})
}

func TestDirectMessage_ReadAndDelete(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)
	msg := sendText(t, w, "hi", "hello", "alice")

	t.Run("置已读", func(t *testing.T) {
		assert.True(t, w.dm.HasUnread(alice.Player.ID))
		w.MarkMessageRead(alice.Player.ID, msg.ID)
		inbox := w.DirectMessages(alice.Player.ID)
		require.Len(t, inbox, 1)
		assert.True(t, inbox[0].Read)
		assert.False(t, w.dm.HasUnread(alice.Player.ID))
	})

	t.Run("置已读对不存在的消息静默成功", func(t *testing.T) {
		w.MarkMessageRead(alice.Player.ID, "no-such-message")
	})

	t.Run("删除只影响该信箱", func(t *testing.T) {
		bob, err := w.JoinRoom("", "", "bob")
		require.NoError(t, err)
		shared := sendText(t, w, "both", "to both", "alice", "bob")

		w.DeleteMessage(alice.Player.ID, shared.ID)
		assert.Len(t, w.DirectMessages(alice.Player.ID), 1) // 只剩最早那条
		require.Len(t, w.DirectMessages(bob.Player.ID), 1)
		assert.Equal(t, "to both", w.DirectMessages(bob.Player.ID)[0].Content)
	})
}

func TestDirectMessage_PerRecipientCopies(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)
	bob, err := w.JoinRoom("", "", "bob")
	require.NoError(t, err)

	msg := sendText(t, w, "shared", "one logical message", "alice", "bob")

	// 同一条逻辑消息对每个收件人各存一份：已读标记不串扰
	w.MarkMessageRead(alice.Player.ID, msg.ID)
	assert.True(t, w.DirectMessages(alice.Player.ID)[0].Read)
	assert.False(t, w.DirectMessages(bob.Player.ID)[0].Read)
}

func TestDMStore_UpsertMatchesOriginalID(t *testing.T) {
	store := NewDMStore()
	store.Append("p1", &model.DirectMessage{ID: "m1", Content: "v1"})

	// originalId 指向旧消息时原地覆盖
	store.UpsertInbox("p1", &model.DirectMessage{ID: "m2", OriginalID: "m1", Content: "v2", Read: true})

	box := store.Inbox("p1")
	require.Len(t, box, 1)
	assert.Equal(t, "v2", box[0].Content)
	assert.False(t, box[0].Read, "覆盖后重新置为未读")
}
