package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
)

func TestGravityQueries(t *testing.T) {
	tests := []struct {
		name           string
		scale          *component.GravityScale
		ground         *component.GroundContact
		wantWeightless bool
		wantSupported  bool
	}{
		{name: "bare"},
		{name: "normal_gravity_grounded", scale: &component.GravityScale{Scale: 1}, ground: &component.GroundContact{Grounded: true}, wantSupported: true},
		{name: "zero_gravity", scale: &component.GravityScale{Scale: 0}, wantWeightless: true},
		{name: "negative_gravity", scale: &component.GravityScale{Scale: -1}, wantWeightless: true},
		{name: "airborne", ground: &component.GroundContact{}},
		{name: "grace", ground: &component.GroundContact{GroundGrace: 1}, wantSupported: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			e := ecs.CreateEntity(w)
			if tc.scale != nil {
				require.NoError(t, ecs.Add(w, e, component.GravityScaleComponent.Kind(), tc.scale))
			}
			if tc.ground != nil {
				require.NoError(t, ecs.Add(w, e, component.GroundContactComponent.Kind(), tc.ground))
			}
			s := NewGravitySystem()
			assert.Equal(t, tc.wantWeightless, s.IsWeightless(w, e))
			assert.Equal(t, tc.wantSupported, s.IsSupported(w, e))
		})
	}
}
