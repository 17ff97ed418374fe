package observable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	t.Run("set notifies subscribers with old and new", func(t *testing.T) {
		v := NewValue(10)
		var gotOld, gotNew int
		v.Subscribe(func(old, new int) {
			gotOld, gotNew = old, new
		})

		changed := v.Set(11)
		assert.True(t, changed)
		assert.Equal(t, 10, gotOld)
		assert.Equal(t, 11, gotNew)
		assert.Equal(t, 11, v.Get())
	})

	t.Run("setting the same value does not notify", func(t *testing.T) {
		v := NewValue("hello")
		calls := 0
		v.Subscribe(func(_, _ string) { calls++ })

		assert.False(t, v.Set("hello"))
		assert.Zero(t, calls)
	})

	t.Run("unsubscribe stops notifications", func(t *testing.T) {
		v := NewValue(0)
		calls := 0
		unsub := v.Subscribe(func(_, _ int) { calls++ })

		require.True(t, v.Set(1))
		unsub()
		require.True(t, v.Set(2))
		assert.Equal(t, 1, calls)
	})

	t.Run("multiple subscribers each observe the change", func(t *testing.T) {
		v := NewValue(0)
		a, b := 0, 0
		v.Subscribe(func(_, n int) { a = n })
		v.Subscribe(func(_, n int) { b = n })

		v.Set(7)
		assert.Equal(t, 7, a)
		assert.Equal(t, 7, b)
	})
}
