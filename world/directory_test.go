package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectory(t *testing.T) {
	d := NewDirectory()

	t.Run("查询按小写归一", func(t *testing.T) {
		assert.True(t, d.Register("Alice", "p1"))
		id, ok := d.Resolve("ALICE")
		assert.True(t, ok)
		assert.Equal(t, "p1", id)
	})

	t.Run("相同映射重复注册返回未变化", func(t *testing.T) {
		assert.False(t, d.Register("alice", "p1"))
	})

	t.Run("重新加入覆盖为新ID", func(t *testing.T) {
		assert.True(t, d.Register("alice", "p2"))
		id, _ := d.Resolve("alice")
		assert.Equal(t, "p2", id)
	})

	t.Run("空用户名拒绝", func(t *testing.T) {
		assert.False(t, d.Register("  ", "p3"))
		_, ok := d.Resolve("")
		assert.False(t, ok)
	})
}
