package world

import (
	"testing"
	"time"

	"github.com/ceyewan/dworld/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncNotFound(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	_, err = w.Sync("no-such-room", alice.Player.ID, false, "")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = w.Sync(WellKnownRoomKey, "ghost", false, "")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestSyncTouchesCaller(t *testing.T) {
	w, clock := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	snap, err := w.Sync(WellKnownRoomKey, alice.Player.ID, false, "")
	require.NoError(t, err)

	// 同步本身就是一次活跃触碰，调用方重新进入活跃集
	require.Len(t, snap.AllPlayers, 1)
	assert.Equal(t, alice.Player.ID, snap.AllPlayers[0].ID)
}

func TestSyncReconcilesMirror(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	// 绕过扇出直接写池，模拟镜像落后于全局池
	w.pool.Insert(&model.FeedItem{ID: "orphan", Type: model.FeedTypeText, Content: "late"})

	room, _ := w.sessions.Get(WellKnownRoomKey)
	assert.False(t, room.MirrorContains("orphan"))

	snap, err := w.Sync(WellKnownRoomKey, alice.Player.ID, false, "")
	require.NoError(t, err)

	assert.True(t, room.MirrorContains("orphan"), "同步单向补入缺失条目")
	found := false
	for _, item := range snap.Feed {
		if item.ID == "orphan" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSyncIncludeAll(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	_, err = w.PublishFeedItem(&model.FeedItem{Type: model.FeedTypeText, Author: "alice", Content: "hello"})
	require.NoError(t, err)

	full, err := w.Sync(WellKnownRoomKey, alice.Player.ID, true, "")
	require.NoError(t, err)
	mirror, err := w.Sync(WellKnownRoomKey, alice.Player.ID, false, "")
	require.NoError(t, err)

	// 调和之后镜像与池内容一致，只是来源不同
	assert.Equal(t, len(full.Feed), len(mirror.Feed))
	require.NotEmpty(t, full.Feed)
	assert.Equal(t, "hello", full.Feed[0].Content)
}

func TestSyncColocatedFilter(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)
	bob, err := w.JoinRoom("", "", "bob")
	require.NoError(t, err)
	carol, err := w.JoinRoom("", "", "carol")
	require.NoError(t, err)

	_, _, err = w.UpdateLocation(WellKnownRoomKey, bob.Player.ID, "tavern")
	require.NoError(t, err)
	// 位置是精确字符串比较，"Plaza" 与 "plaza" 不同位置
	_, _, err = w.UpdateLocation(WellKnownRoomKey, carol.Player.ID, "Plaza")
	require.NoError(t, err)

	snap, err := w.Sync(WellKnownRoomKey, alice.Player.ID, false, "")
	require.NoError(t, err)

	assert.Len(t, snap.AllPlayers, 3)
	require.Len(t, snap.Colocated, 1)
	assert.Equal(t, alice.Player.ID, snap.Colocated[0].ID)
}

func TestSyncUnreadFlag(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	snap, err := w.Sync(WellKnownRoomKey, alice.Player.ID, false, "")
	require.NoError(t, err)
	assert.False(t, snap.HasUnread)
	assert.Empty(t, snap.Messages)

	sent, err := w.SendDirectMessage(&model.DirectMessage{
		SenderID: "sys", SenderName: "system", Title: "t", Content: "c", ContentType: "text",
	}, []string{"alice"})
	require.NoError(t, err)

	snap, err = w.Sync(WellKnownRoomKey, alice.Player.ID, false, "")
	require.NoError(t, err)
	assert.True(t, snap.HasUnread)
	require.Len(t, snap.Messages, 1)

	w.MarkMessageRead(alice.Player.ID, sent.ID)
	snap, err = w.Sync(WellKnownRoomKey, alice.Player.ID, false, "")
	require.NoError(t, err)
	assert.False(t, snap.HasUnread)
}

func TestSyncAbsolutizesMedia(t *testing.T) {
	w, _ := newTestWorld(t)
	alice, err := w.JoinRoom("", "", "alice")
	require.NoError(t, err)

	item, err := w.PublishFeedItem(&model.FeedItem{
		Type:     model.FeedTypeImage,
		Author:   "alice",
		Content:  "look",
		ImageURL: "data:image/png;base64,aGVsbG8=",
	})
	require.NoError(t, err)
	assert.True(t, len(item.ImageURL) > len(LocatorPrefix))

	snap, err := w.Sync(WellKnownRoomKey, alice.Player.ID, false, "http://host:8080/")
	require.NoError(t, err)

	var got *model.FeedItem
	for _, f := range snap.Feed {
		if f.ID == item.ID {
			got = f
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, "http://host:8080"+item.ImageURL, got.ImageURL)

	// 池里的原始条目保持相对定位符，补全只发生在响应拷贝上
	stored, ok := w.pool.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, item.ImageURL, stored.ImageURL)
}
