package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/milk9111/leap/common"
	"github.com/milk9111/leap/ecs"
)

const pingEvent ecs.EventType = "ping"

func TestDoAfterFiresAfterDelay(t *testing.T) {
	w := ecs.NewWorld()
	s := NewDoAfterSystem(zaptest.NewLogger(t))
	user := ecs.CreateEntity(w)

	var fired []ecs.Entity
	w.Events().Subscribe(pingEvent, func(_ *ecs.World, evt *ecs.Event) {
		fired = append(fired, evt.Entity)
		assert.Equal(t, "payload", evt.Data)
	})

	_, ok := s.TryStartDoAfter(w, DoAfterArgs{User: user, Target: user, Delay: 0.25, Event: pingEvent, Data: "payload"})
	require.True(t, ok)

	ticks := common.Ticks(0.25)
	for i := 0; i < ticks-1; i++ {
		s.Update(w)
	}
	assert.Empty(t, fired)
	assert.True(t, s.Pending(w, user, pingEvent))

	s.Update(w)
	assert.Equal(t, []ecs.Entity{user}, fired)
	assert.False(t, s.Pending(w, user, pingEvent))

	s.Update(w)
	assert.Len(t, fired, 1, "fires once")
}

func TestDoAfterDuplicates(t *testing.T) {
	tests := []struct {
		name          string
		cancel, block bool
		wantStart     bool
		wantCancelled int
		wantFireTicks int
	}{
		{name: "allow", wantStart: true, wantFireTicks: 2},
		{name: "block", block: true, wantStart: false, wantFireTicks: 1},
		{name: "cancel", cancel: true, wantStart: true, wantCancelled: 1, wantFireTicks: 1},
		{name: "cancel_and_block_replaces", cancel: true, block: true, wantStart: true, wantCancelled: 1, wantFireTicks: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			s := NewDoAfterSystem(nil)
			user := ecs.CreateEntity(w)

			fires := 0
			cancelled := 0
			w.Events().Subscribe(pingEvent, func(*ecs.World, *ecs.Event) { fires++ })
			w.Events().Subscribe(DoAfterCancelledEvent, func(_ *ecs.World, evt *ecs.Event) {
				c, ok := evt.Data.(DoAfterCancelled)
				require.True(t, ok)
				assert.Equal(t, pingEvent, c.Event)
				cancelled++
			})

			first, ok := s.TryStartDoAfter(w, DoAfterArgs{User: user, Target: user, Delay: 1, Event: pingEvent})
			require.True(t, ok)
			s.Update(w)

			second, ok := s.TryStartDoAfter(w, DoAfterArgs{
				User: user, Target: user, Delay: 1, Event: pingEvent,
				CancelDuplicate: tc.cancel, BlockDuplicate: tc.block,
			})
			assert.Equal(t, tc.wantStart, ok)
			if ok {
				assert.NotEqual(t, first, second)
			}
			assert.Equal(t, tc.wantCancelled, cancelled)

			for i := 0; i < common.Ticks(2)+1; i++ {
				s.Update(w)
			}
			assert.Equal(t, tc.wantFireTicks, fires)
		})
	}
}

func TestDoAfterSkipsDeadTarget(t *testing.T) {
	w := ecs.NewWorld()
	s := NewDoAfterSystem(nil)
	user := ecs.CreateEntity(w)
	target := ecs.CreateEntity(w)

	fired := false
	w.Events().Subscribe(pingEvent, func(*ecs.World, *ecs.Event) { fired = true })

	_, ok := s.TryStartDoAfter(w, DoAfterArgs{User: user, Target: target, Delay: common.FixedDelta, Event: pingEvent})
	require.True(t, ok)
	require.True(t, ecs.DestroyEntity(w, target))

	s.Update(w)
	assert.False(t, fired)
}

func TestDoAfterRejectsBadArgs(t *testing.T) {
	w := ecs.NewWorld()
	s := NewDoAfterSystem(nil)
	user := ecs.CreateEntity(w)

	_, ok := s.TryStartDoAfter(w, DoAfterArgs{User: user, Target: user, Delay: 1})
	assert.False(t, ok, "missing event")

	require.True(t, ecs.DestroyEntity(w, user))
	_, ok = s.TryStartDoAfter(w, DoAfterArgs{User: user, Target: user, Delay: 1, Event: pingEvent})
	assert.False(t, ok, "dead user")
}
