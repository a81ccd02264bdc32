package world

import (
	"fmt"
	"testing"
	"time"

	"github.com/ceyewan/dworld/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoom_MessageLogBound(t *testing.T) {
	now := time.Now()
	room := newRoom("room-1", "bounded", now, nil)

	for i := 0; i < 150; i++ {
		room.AppendNotification(model.Notification{
			Kind:      model.NotifyAction,
			Text:      fmt.Sprintf("event %d", i),
			Timestamp: now,
		})
	}

	log := room.LogSnapshot()
	require.Len(t, log, 100)
	// 保留的是最近的 100 条，最旧在前
	assert.Equal(t, "event 50", log[0].Text)
	assert.Equal(t, "event 149", log[99].Text)
}

func TestRoom_MirrorOperations(t *testing.T) {
	now := time.Now()
	room := newRoom("room-1", "mirrors", now, nil)
	item := &model.FeedItem{ID: "item-1", Type: model.FeedTypeText, Title: "hello"}

	t.Run("按ID幂等插入", func(t *testing.T) {
		assert.True(t, room.MirrorInsert(item))
		assert.False(t, room.MirrorInsert(item))
		assert.Len(t, room.MirrorSnapshot(), 1)
	})

	t.Run("替换保持位置", func(t *testing.T) {
		room.MirrorInsert(&model.FeedItem{ID: "item-2", Title: "second"})
		updated := &model.FeedItem{ID: "item-1", Title: "edited"}
		room.MirrorUpsert(updated)

		snap := room.MirrorSnapshot()
		require.Len(t, snap, 2)
		assert.Equal(t, "edited", snap[0].Title)
	})

	t.Run("摘除后不再存在", func(t *testing.T) {
		assert.True(t, room.MirrorRemove("item-1"))
		assert.False(t, room.MirrorRemove("item-1"))
		assert.False(t, room.MirrorContains("item-1"))
	})

	t.Run("快照是深拷贝", func(t *testing.T) {
		snap := room.MirrorSnapshot()
		require.NotEmpty(t, snap)
		snap[0].Title = "mutated"
		assert.Equal(t, "second", room.MirrorSnapshot()[0].Title)
	})
}

func TestRoom_PlotState(t *testing.T) {
	room := newRoom("room-1", "plot", time.Now(), nil)
	room.SetPlot("who-stole-the-crown", model.PlotAnswer{Answer: "the butler", AnsweredBy: "alice"})

	snap := room.PlotSnapshot()
	require.Contains(t, snap, "who-stole-the-crown")
	assert.Equal(t, "the butler", snap["who-stole-the-crown"].Answer)
}
