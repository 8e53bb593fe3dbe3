package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/leap/common"
	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
)

func TestPopupRisesAndExpires(t *testing.T) {
	tests := []struct {
		name     string
		typ      component.PopupType
		rise     float64
		duration float64
	}{
		{"small", component.PopupSmall, 16, 1},
		{"medium", component.PopupMedium, 24, 1.5},
		{"large", component.PopupLarge, 32, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			s := NewPopupSystem()
			owner := ecs.CreateEntity(w)
			require.NoError(t, ecs.Add(w, owner, component.TransformComponent.Kind(), &component.Transform{X: 5, Y: 7}))

			e, ok := s.PopupEntity(w, "hello", owner, tc.typ)
			require.True(t, ok)
			popup, _ := ecs.Get(w, e, component.PopupComponent.Kind())
			assert.Equal(t, 5.0, popup.X)
			assert.Equal(t, 7.0, popup.Y)

			s.Update(w)
			assert.Greater(t, popup.Offset, 0.0)
			assert.Less(t, popup.Offset, tc.rise)

			// Follows the owner.
			tr, _ := ecs.Get(w, owner, component.TransformComponent.Kind())
			tr.X = 50
			s.Update(w)
			assert.Equal(t, 50.0, popup.X)

			for i := 0; i < common.Ticks(tc.duration); i++ {
				s.Update(w)
			}
			assert.False(t, ecs.IsAlive(w, e))
		})
	}
}

func TestPopupEmptyMessage(t *testing.T) {
	w := ecs.NewWorld()
	_, ok := NewPopupSystem().PopupEntity(w, "", ecs.CreateEntity(w), component.PopupSmall)
	assert.False(t, ok)
}
