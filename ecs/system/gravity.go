package system

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
)

// GravitySystem applies per-entity gravity scale to Chipmunk bodies and
// answers weightless/supported queries.
type GravitySystem struct {
	installed map[*cp.Body]struct{}
}

func NewGravitySystem() *GravitySystem {
	return &GravitySystem{installed: make(map[*cp.Body]struct{})}
}

func (s *GravitySystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	kind := component.GravityScaleComponent.Kind()
	seen := make(map[*cp.Body]struct{}, len(s.installed))
	ecs.ForEach2(w, kind, component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, _ *component.GravityScale, body *component.PhysicsBody) {
		if body.Body == nil {
			return
		}
		seen[body.Body] = struct{}{}
		if _, ok := s.installed[body.Body]; ok {
			return
		}
		s.installed[body.Body] = struct{}{}
		body.Body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
			scale := 1.0
			if gs, ok := ecs.Get(w, e, kind); ok {
				scale = gs.Scale
			}
			cp.BodyUpdateVelocity(b, gravity.Mult(scale), damping, dt)
		})
	})
	for b := range s.installed {
		if _, ok := seen[b]; !ok {
			delete(s.installed, b)
		}
	}
}

// IsWeightless reports whether e has its gravity scaled to nothing.
func (s *GravitySystem) IsWeightless(w *ecs.World, e ecs.Entity) bool {
	gs, ok := ecs.Get(w, e, component.GravityScaleComponent.Kind())
	return ok && gs.Scale <= 0
}

// IsSupported reports whether e is standing on something, counting the
// short grace window after leaving a surface.
func (s *GravitySystem) IsSupported(w *ecs.World, e ecs.Entity) bool {
	gc, ok := ecs.Get(w, e, component.GroundContactComponent.Kind())
	if !ok {
		return false
	}
	return gc.Grounded || gc.GroundGrace > 0
}
