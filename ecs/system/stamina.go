package system

import (
	"github.com/milk9111/leap/common"
	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
)

type StaminaSystem struct{}

func NewStaminaSystem() *StaminaSystem {
	return &StaminaSystem{}
}

// TryTakeStamina deducts cost from e. Entities without stamina always pass.
func (s *StaminaSystem) TryTakeStamina(w *ecs.World, e ecs.Entity, cost float64) bool {
	st, ok := ecs.Get(w, e, component.StaminaComponent.Kind())
	if !ok {
		return true
	}
	if cost > st.Current {
		return false
	}
	st.Current -= cost
	st.SinceSpent = 0
	return true
}

func (s *StaminaSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.StaminaComponent.Kind(), func(e ecs.Entity, st *component.Stamina) {
		st.SinceSpent += common.FixedDelta
		if st.SinceSpent < st.RegenDelay || st.Current >= st.Max {
			return
		}
		st.Current = common.Clamp(st.Current+st.RegenPerSecond*common.FixedDelta, 0, st.Max)
	})
}
