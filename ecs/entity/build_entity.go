package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
	"github.com/milk9111/leap/prefabs"
)

var (
	ErrInvalidLeap    = errors.New("invalid leap profile")
	ErrInvalidFixture = errors.New("invalid fixture")
)

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag":     addPlayerTag,
	"identity":       addIdentity,
	"transform":      addTransform,
	"physics_body":   addPhysicsBody,
	"fixtures":       addFixtures,
	"ground_contact": addGroundContact,
	"gravity_scale":  addGravityScale,
	"stamina":        addStamina,
	"climbable":      addClimbable,
	"leap":           addLeap,
}

// Leap goes last: its add observer binds an action and may read the rest.
var componentBuildOrder = []string{
	"player_tag",
	"identity",
	"transform",
	"physics_body",
	"fixtures",
	"ground_contact",
	"gravity_scale",
	"stamina",
	"climbable",
	"leap",
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	// Validate everything before creating the entity so a bad prefab never
	// leaves a half-built entity behind.
	names := make([]string, 0, len(spec.Components))
	for name := range spec.Components {
		if _, ok := componentRegistry[name]; !ok {
			return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool { return buildRank(names[i]) < buildRank(names[j]) })

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}
	for _, name := range names {
		if err := componentRegistry[name](w, e, spec.Components[name], ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
	}

	return e, nil
}

func buildRank(name string) int {
	for i, n := range componentBuildOrder {
		if n == name {
			return i
		}
	}
	return len(componentBuildOrder)
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
}

func addClimbable(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.ClimbableComponent.Kind(), &component.Climbable{})
}

func addGroundContact(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.GroundContactComponent.Kind(), &component.GroundContact{})
}

type identitySpec = prefabs.IdentityComponentSpec

func addIdentity(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[identitySpec](raw)
	if err != nil {
		return fmt.Errorf("decode identity spec: %w", err)
	}
	if spec.Name == "" {
		spec.Name = ctx.PrefabPath
	}
	return ecs.Add(w, e, component.IdentityComponent.Kind(), &component.Identity{Name: spec.Name})
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		Rotation: spec.Rotation,
	})
}

type physicsBodySpec = prefabs.PhysicsBodyComponentSpec

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[physicsBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}
	if !spec.Static && spec.Mass == 0 {
		spec.Mass = 1
	}
	return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Mass:       spec.Mass,
		Static:     spec.Static,
		Kinematic:  spec.Kinematic,
		Elasticity: spec.Elasticity,
	})
}

type fixtureSpec = prefabs.FixtureComponentSpec

func addFixtures(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	specs, err := prefabs.DecodeComponentSpec[[]fixtureSpec](raw)
	if err != nil {
		return fmt.Errorf("decode fixtures spec: %w", err)
	}
	defs := make([]component.FixtureDef, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		def, err := FixtureDefFromSpec(spec)
		if err != nil {
			return err
		}
		if _, dup := seen[def.Name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidFixture, def.Name)
		}
		seen[def.Name] = struct{}{}
		defs = append(defs, def)
	}
	return ecs.Add(w, e, component.FixturesComponent.Kind(), &component.Fixtures{Defs: defs})
}

// FixtureDefFromSpec converts a prefab fixture block. Fixtures are hard unless
// the block says otherwise.
func FixtureDefFromSpec(spec fixtureSpec) (component.FixtureDef, error) {
	if spec.Name == "" {
		return component.FixtureDef{}, fmt.Errorf("%w: missing name", ErrInvalidFixture)
	}
	layer, err := component.ParseCollisionGroups(spec.Layer)
	if err != nil {
		return component.FixtureDef{}, fmt.Errorf("%w: %q layer: %w", ErrInvalidFixture, spec.Name, err)
	}
	mask, err := component.ParseCollisionGroups(spec.Mask)
	if err != nil {
		return component.FixtureDef{}, fmt.Errorf("%w: %q mask: %w", ErrInvalidFixture, spec.Name, err)
	}

	shape := component.FixtureShape{
		Kind:    component.FixtureBox,
		Width:   spec.Shape.Width,
		Height:  spec.Shape.Height,
		OffsetX: spec.Shape.OffsetX,
		OffsetY: spec.Shape.OffsetY,
	}
	if spec.Shape.Circle > 0 {
		shape.Kind = component.FixtureCircle
		shape.Radius = spec.Shape.Circle
	} else if shape.Width <= 0 || shape.Height <= 0 {
		return component.FixtureDef{}, fmt.Errorf("%w: %q needs a circle radius or a positive box", ErrInvalidFixture, spec.Name)
	}

	hard := true
	if spec.Hard != nil {
		hard = *spec.Hard
	}
	return component.FixtureDef{
		Name:     spec.Name,
		Shape:    shape,
		Layer:    layer,
		Mask:     mask,
		Hard:     hard,
		Friction: spec.Friction,
	}, nil
}

type gravityScaleSpec = prefabs.GravityScaleComponentSpec

func addGravityScale(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[gravityScaleSpec](raw)
	if err != nil {
		return fmt.Errorf("decode gravity scale spec: %w", err)
	}
	return ecs.Add(w, e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: spec.Scale})
}

type staminaSpec = prefabs.StaminaComponentSpec

func addStamina(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[staminaSpec](raw)
	if err != nil {
		return fmt.Errorf("decode stamina spec: %w", err)
	}
	if spec.Max < 0 {
		return fmt.Errorf("stamina max must be non-negative, got %v", spec.Max)
	}
	current := spec.Max
	if spec.Current != nil {
		current = *spec.Current
	}
	return ecs.Add(w, e, component.StaminaComponent.Kind(), &component.Stamina{
		Current:        current,
		Max:            spec.Max,
		RegenPerSecond: spec.RegenPerSecond,
		RegenDelay:     spec.RegenDelay,
	})
}

type leapSpec = prefabs.LeapComponentSpec

func addLeap(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[leapSpec](raw)
	if err != nil {
		return fmt.Errorf("decode leap spec: %w", err)
	}
	profile, err := LeapProfileFromSpec(spec)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.LeapComponent.Kind(), &component.Leap{
		Profile:              profile,
		DisabledFixtureMasks: make(map[string]component.CollisionGroup),
	})
}

// LeapProfileFromSpec fills omitted fields from component.DefaultLeapProfile
// and rejects non-positive duration or speed and negative cost.
func LeapProfileFromSpec(spec leapSpec) (component.LeapProfile, error) {
	profile := component.DefaultLeapProfile()
	if spec.Duration != nil {
		profile.Duration = *spec.Duration
	}
	if spec.Speed != nil {
		profile.Speed = *spec.Speed
	}
	if spec.StaminaCost != nil {
		profile.StaminaCost = *spec.StaminaCost
	}
	if spec.RequiresGravity != nil {
		profile.RequiresGravity = *spec.RequiresGravity
	}
	if spec.RequiresGrounded != nil {
		profile.RequiresGrounded = *spec.RequiresGrounded
	}
	if spec.Action != "" {
		profile.Action = spec.Action
	}

	switch {
	case profile.Duration <= 0:
		return component.LeapProfile{}, fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidLeap, profile.Duration)
	case profile.Speed <= 0:
		return component.LeapProfile{}, fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidLeap, profile.Speed)
	case profile.StaminaCost < 0:
		return component.LeapProfile{}, fmt.Errorf("%w: stamina cost must be non-negative, got %d", ErrInvalidLeap, profile.StaminaCost)
	}
	return profile, nil
}

// ReloadLeapProfile re-reads the leap block of a prefab and applies it to an
// existing entity. Runtime leap state is left alone.
func ReloadLeapProfile(w *ecs.World, e ecs.Entity, prefabPath string) error {
	leap, ok := ecs.Get(w, e, component.LeapComponent.Kind())
	if !ok {
		return fmt.Errorf("reload leap: %s has no leap component", e)
	}
	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return fmt.Errorf("reload leap: %w", err)
	}
	raw, ok := spec.Components["leap"]
	if !ok {
		return fmt.Errorf("reload leap: prefab %q has no leap component", prefabPath)
	}
	decoded, err := prefabs.DecodeComponentSpec[leapSpec](raw)
	if err != nil {
		return fmt.Errorf("reload leap: decode: %w", err)
	}
	profile, err := LeapProfileFromSpec(decoded)
	if err != nil {
		return fmt.Errorf("reload leap: %w", err)
	}
	// The bound action was created from the old profile; keep its id.
	profile.Action = leap.Profile.Action
	leap.Profile = profile
	return nil
}
