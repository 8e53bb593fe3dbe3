package system

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/leap/common"
	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
	"github.com/milk9111/leap/logging"
)

const fixtureCollisionType cp.CollisionType = 1

const groundGraceFrames = 6

var (
	ErrNoBody         = errors.New("physics: entity has no body")
	ErrFixtureMissing = errors.New("physics: fixture not found")
	ErrFixtureExists  = errors.New("physics: fixture already exists")
	ErrSpaceLocked    = errors.New("physics: space is locked")
)

type PhysicsConfig struct {
	Gravity    float64
	Iterations int
}

func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{Gravity: common.Gravity, Iterations: 20}
}

// PhysicsSystem owns the Chipmunk space. Bodies are built from PhysicsBody,
// Transform and Fixtures components; fixture interaction follows the
// layer/mask rule in component.Fixture.Interacts, enforced from PreSolve.
//
// Contact begin/end events are published synchronously from inside Chipmunk
// callbacks, while the space is locked. Handlers must not add or remove
// shapes from there; TryCreateFixture and DestroyFixture refuse to.
type PhysicsSystem struct {
	space         *cp.Space
	cfg           PhysicsConfig
	handlersReady bool
	log           *zap.Logger

	// world is the world whose bodies live in space. Callbacks publish to it.
	world *ecs.World

	entities   map[ecs.Entity]*bodyInfo
	contacts   *contactTracker
	ground     map[ecs.Entity]*groundState
	nextHandle component.FixtureHandle

	stepping      bool
	callbackDepth int
}

type bodyInfo struct {
	body   *cp.Body
	static bool
}

type groundState struct {
	grounded bool
	grace    int
}

func NewPhysicsSystem(cfg PhysicsConfig, log *zap.Logger) *PhysicsSystem {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 20
	}
	ps := &PhysicsSystem{
		cfg:      cfg,
		log:      logging.OrNop(log),
		entities: make(map[ecs.Entity]*bodyInfo),
		contacts: newContactTracker(),
		ground:   make(map[ecs.Entity]*groundState),
	}
	ps.space = ps.newSpace()
	return ps
}

func (ps *PhysicsSystem) newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = uint(ps.cfg.Iterations)
	space.SetGravity(cp.Vector{X: 0, Y: ps.cfg.Gravity})
	return space
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// Locked reports whether the space is mid-step or inside a collision callback.
func (ps *PhysicsSystem) Locked() bool {
	return ps != nil && (ps.stepping || ps.callbackDepth > 0)
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	ps.world = w

	ps.ensureHandlers()
	ps.syncEntities(w)
	ps.resetGroundContacts(w)

	ps.stepping = true
	ps.space.Step(common.FixedDelta)
	ps.stepping = false

	ps.syncTransforms(w)
	ps.flushGroundContacts(w)
}

// Reset drops every body and contact and starts from an empty space.
func (ps *PhysicsSystem) Reset() {
	if ps == nil {
		return
	}
	ps.space = ps.newSpace()
	ps.handlersReady = false
	ps.entities = make(map[ecs.Entity]*bodyInfo)
	ps.contacts.clear()
	ps.ground = make(map[ecs.Entity]*groundState)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	handler := ps.space.NewCollisionHandler(fixtureCollisionType, fixtureCollisionType)
	handler.UserData = ps
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		return true
	}
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		return sys.preSolve(arb)
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return
		}
		sys.separate(arb)
	}

	ps.handlersReady = true
}

func (ps *PhysicsSystem) preSolve(arb *cp.Arbiter) bool {
	ps.callbackDepth++
	defer func() { ps.callbackDepth-- }()

	shapeA, shapeB := arb.Shapes()
	fa, okA := shapeA.UserData.(*component.Fixture)
	fb, okB := shapeB.UserData.(*component.Fixture)
	if !okA || !okB {
		return true
	}

	if !fa.Interacts(fb) {
		// A mask change can end a contact whose shapes still overlap.
		if ps.contacts.end(fa, fb) {
			ps.publishContact(CollisionEndedEvent, fa, fb)
			ps.publishContact(CollisionEndedEvent, fb, fa)
		}
		return false
	}

	if ps.contacts.begin(fa, fb) {
		ps.publishContact(CollisionStartedEvent, fa, fb)
		ps.publishContact(CollisionStartedEvent, fb, fa)
	}

	if fa.Hard && fb.Hard {
		// Normal points from A to B; screen-down coordinates.
		n := arb.Normal()
		if n.Y > 0.5 {
			ps.markGrounded(ecs.Entity(fa.Owner))
		} else if n.Y < -0.5 {
			ps.markGrounded(ecs.Entity(fb.Owner))
		}
	}
	return true
}

func (ps *PhysicsSystem) separate(arb *cp.Arbiter) {
	ps.callbackDepth++
	defer func() { ps.callbackDepth-- }()

	shapeA, shapeB := arb.Shapes()
	fa, okA := shapeA.UserData.(*component.Fixture)
	fb, okB := shapeB.UserData.(*component.Fixture)
	if !okA || !okB {
		return
	}
	if ps.contacts.end(fa, fb) {
		ps.publishContact(CollisionEndedEvent, fa, fb)
		ps.publishContact(CollisionEndedEvent, fb, fa)
	}
}

func (ps *PhysicsSystem) publishContact(t ecs.EventType, ours, other *component.Fixture) {
	if ps.world == nil {
		return
	}
	ps.world.Publish(&ecs.Event{
		Type:   t,
		Entity: ecs.Entity(ours.Owner),
		Data: Collision{
			OurFixture:   ours.Name,
			OurHandle:    ours.Handle,
			OtherEntity:  ecs.Entity(other.Owner),
			OtherFixture: other.Name,
		},
	})
}

func (ps *PhysicsSystem) markGrounded(e ecs.Entity) {
	st := ps.ground[e]
	if st == nil {
		return
	}
	st.grounded = true
	st.grace = groundGraceFrames
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	if ps.space == nil {
		return
	}

	ps.cleanupEntities(w)

	entities := w.Query(
		component.PhysicsBodyComponent.Kind().ID(),
		component.TransformComponent.Kind().ID(),
		component.FixturesComponent.Kind().ID(),
	)
	for _, e := range entities {
		if _, ok := ps.entities[e]; ok {
			continue
		}
		if err := ps.createBody(w, e); err != nil {
			ps.log.Warn("create body", zap.Stringer("entity", e), zap.Error(err))
		}
	}
}

func (ps *PhysicsSystem) createBody(w *ecs.World, e ecs.Entity) error {
	bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return ErrNoBody
	}
	transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("physics: create body %s: missing transform", e)
	}
	fixtures, ok := ecs.Get(w, e, component.FixturesComponent.Kind())
	if !ok {
		return fmt.Errorf("physics: create body %s: missing fixtures", e)
	}

	var body *cp.Body
	switch {
	case bodyComp.Static:
		body = cp.NewStaticBody()
	case bodyComp.Kinematic:
		body = cp.NewKinematicBody()
	default:
		mass := bodyComp.Mass
		if mass <= 0 {
			mass = 1
		}
		// Infinite moment keeps actors upright.
		body = cp.NewBody(mass, cp.INFINITY)
	}
	body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
	body.SetAngle(transform.Rotation)
	body.UserData = e
	ps.space.AddBody(body)

	ps.entities[e] = &bodyInfo{body: body, static: bodyComp.Static}
	bodyComp.Body = body

	fixtures.Live = make(map[string]*component.Fixture, len(fixtures.Defs))
	for _, def := range fixtures.Defs {
		if _, dup := fixtures.Live[def.Name]; dup {
			return fmt.Errorf("physics: create body %s: fixture %q: %w", e, def.Name, ErrFixtureExists)
		}
		ps.attachFixture(e, body, fixtures, def, bodyComp.Status == component.BodyInAir, bodyComp.Elasticity)
	}
	return nil
}

func (ps *PhysicsSystem) newShape(body *cp.Body, s component.FixtureShape) *cp.Shape {
	offset := cp.Vector{X: s.OffsetX, Y: s.OffsetY}
	if s.Kind == component.FixtureCircle {
		radius := s.Radius
		if radius <= 0 {
			radius = 1
		}
		return cp.NewCircle(body, radius, offset)
	}
	width, height := s.Width, s.Height
	if width <= 0 || height <= 0 {
		width, height = 32, 32
	}
	bb := cp.BB{
		L: offset.X - width/2,
		B: offset.Y - height/2,
		R: offset.X + width/2,
		T: offset.Y + height/2,
	}
	return cp.NewBox2(body, bb, 0)
}

func (ps *PhysicsSystem) attachFixture(e ecs.Entity, body *cp.Body, fixtures *component.Fixtures, def component.FixtureDef, airborne bool, elasticity float64) *component.Fixture {
	shape := ps.newShape(body, def.Shape)
	ps.nextHandle++
	f := &component.Fixture{
		Name:     def.Name,
		Owner:    uint64(e),
		Handle:   ps.nextHandle,
		Layer:    def.Layer,
		Mask:     def.Mask,
		Hard:     def.Hard,
		Friction: def.Friction,
		Shape:    shape,
	}
	shape.UserData = f
	shape.SetSensor(!def.Hard)
	shape.SetCollisionType(fixtureCollisionType)
	// Filtering happens in PreSolve so that live mask edits apply without
	// touching Chipmunk's own filter.
	shape.SetFilter(cp.SHAPE_FILTER_ALL)
	shape.SetElasticity(elasticity)
	if airborne {
		shape.SetFriction(0)
	} else {
		shape.SetFriction(def.Friction)
	}
	ps.space.AddShape(shape)

	if fixtures.Live == nil {
		fixtures.Live = make(map[string]*component.Fixture)
	}
	fixtures.Live[def.Name] = f
	return f
}

func (ps *PhysicsSystem) removeFixture(fixtures *component.Fixtures, f *component.Fixture) {
	if f.Shape != nil && f.Shape.Space() == ps.space {
		ps.space.RemoveShape(f.Shape)
	}
	for _, other := range ps.contacts.forget(f) {
		ps.publishContact(CollisionEndedEvent, f, other)
		ps.publishContact(CollisionEndedEvent, other, f)
	}
	if fixtures != nil && fixtures.Live[f.Name] == f {
		delete(fixtures.Live, f.Name)
	}
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) && ecs.Has(w, e, component.FixturesComponent.Kind()) {
			continue
		}

		var live []*component.Fixture
		info.body.EachShape(func(shape *cp.Shape) {
			if f, ok := shape.UserData.(*component.Fixture); ok {
				live = append(live, f)
			}
		})
		fixtures, _ := ecs.Get(w, e, component.FixturesComponent.Kind())
		for _, f := range live {
			ps.removeFixture(fixtures, f)
		}
		ps.space.RemoveBody(info.body)
		if bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
			bodyComp.Body = nil
		}

		delete(ps.entities, e)
		delete(ps.ground, e)
	}
}

func (ps *PhysicsSystem) resetGroundContacts(w *ecs.World) {
	seen := make(map[ecs.Entity]struct{})
	ecs.ForEach(w, component.GroundContactComponent.Kind(), func(e ecs.Entity, gc *component.GroundContact) {
		seen[e] = struct{}{}
		st := ps.ground[e]
		if st == nil {
			st = &groundState{}
			ps.ground[e] = st
		}
		st.grace = gc.GroundGrace
		if st.grace > 0 {
			st.grace--
		}
		st.grounded = false
	})

	for e := range ps.ground {
		if _, ok := seen[e]; !ok {
			delete(ps.ground, e)
		}
	}
}

func (ps *PhysicsSystem) flushGroundContacts(w *ecs.World) {
	for e, st := range ps.ground {
		gc, ok := ecs.Get(w, e, component.GroundContactComponent.Kind())
		if !ok {
			continue
		}
		gc.Grounded = st.grounded
		gc.GroundGrace = st.grace
	}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if info.static {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		pos := info.body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = info.body.Angle()
	}
}

func (ps *PhysicsSystem) body(e ecs.Entity) *cp.Body {
	info := ps.entities[e]
	if info == nil {
		return nil
	}
	return info.body
}

// Fixtures returns the live fixtures of e ordered by name.
func (ps *PhysicsSystem) Fixtures(w *ecs.World, e ecs.Entity) []*component.Fixture {
	if ps == nil || w == nil {
		return nil
	}
	fixtures, ok := ecs.Get(w, e, component.FixturesComponent.Kind())
	if !ok {
		return nil
	}
	return sortedFixtures(fixtures)
}

func sortedFixtures(fixtures *component.Fixtures) []*component.Fixture {
	out := make([]*component.Fixture, 0, len(fixtures.Live))
	for _, f := range fixtures.Live {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (ps *PhysicsSystem) Fixture(w *ecs.World, e ecs.Entity, name string) (*component.Fixture, bool) {
	if ps == nil || w == nil {
		return nil, false
	}
	fixtures, ok := ecs.Get(w, e, component.FixturesComponent.Kind())
	if !ok {
		return nil, false
	}
	f, ok := fixtures.Live[name]
	return f, ok
}

// SetCollisionMask replaces a fixture's live mask. It takes effect from the
// next PreSolve, which may be within the current step.
func (ps *PhysicsSystem) SetCollisionMask(w *ecs.World, e ecs.Entity, name string, mask component.CollisionGroup) bool {
	f, ok := ps.Fixture(w, e, name)
	if !ok {
		return false
	}
	f.Mask = mask
	return true
}

// TryCreateFixture adds a fixture to an existing body. It fails when the name
// is taken, the entity has no body yet, or the space is locked.
func (ps *PhysicsSystem) TryCreateFixture(w *ecs.World, e ecs.Entity, def component.FixtureDef) (*component.Fixture, bool) {
	if ps == nil || w == nil {
		return nil, false
	}
	if ps.Locked() {
		ps.log.Warn("create fixture while locked", zap.Stringer("entity", e), zap.String("fixture", def.Name))
		return nil, false
	}
	body := ps.body(e)
	if body == nil {
		return nil, false
	}
	fixtures, ok := ecs.Get(w, e, component.FixturesComponent.Kind())
	if !ok {
		return nil, false
	}
	if _, exists := fixtures.Live[def.Name]; exists {
		return nil, false
	}
	bodyComp, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	airborne := bodyComp != nil && bodyComp.Status == component.BodyInAir
	elasticity := 0.0
	if bodyComp != nil {
		elasticity = bodyComp.Elasticity
	}
	return ps.attachFixture(e, body, fixtures, def, airborne, elasticity), true
}

// DestroyFixture removes the named fixture if it is still the instance
// identified by handle.
func (ps *PhysicsSystem) DestroyFixture(w *ecs.World, e ecs.Entity, name string, handle component.FixtureHandle) error {
	if ps == nil || w == nil {
		return ErrNoBody
	}
	if ps.Locked() {
		return fmt.Errorf("physics: destroy fixture %q on %s: %w", name, e, ErrSpaceLocked)
	}
	if ps.body(e) == nil {
		return fmt.Errorf("physics: destroy fixture %q on %s: %w", name, e, ErrNoBody)
	}
	fixtures, ok := ecs.Get(w, e, component.FixturesComponent.Kind())
	if !ok {
		return fmt.Errorf("physics: destroy fixture %q on %s: %w", name, e, ErrFixtureMissing)
	}
	f, ok := fixtures.Live[name]
	if !ok || f.Handle != handle {
		return fmt.Errorf("physics: destroy fixture %q on %s: %w", name, e, ErrFixtureMissing)
	}
	ps.world = w
	ps.removeFixture(fixtures, f)
	return nil
}

// SetBodyStatus records the status and zeroes fixture friction while in air.
func (ps *PhysicsSystem) SetBodyStatus(w *ecs.World, e ecs.Entity, status component.BodyStatus) bool {
	if ps == nil || w == nil {
		return false
	}
	bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return false
	}
	bodyComp.Status = status
	for _, f := range ps.Fixtures(w, e) {
		if f.Shape == nil {
			continue
		}
		if status == component.BodyInAir {
			f.Shape.SetFriction(0)
		} else {
			f.Shape.SetFriction(f.Friction)
		}
	}
	return true
}

func (ps *PhysicsSystem) BodyStatus(w *ecs.World, e ecs.Entity) (component.BodyStatus, bool) {
	if ps == nil || w == nil {
		return component.BodyOnGround, false
	}
	bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return component.BodyOnGround, false
	}
	return bodyComp.Status, true
}

func (ps *PhysicsSystem) WorldRotation(w *ecs.World, e ecs.Entity) float64 {
	if body := ps.body(e); body != nil {
		return body.Angle()
	}
	if transform, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		return transform.Rotation
	}
	return 0
}

func (ps *PhysicsSystem) SetLinearVelocity(w *ecs.World, e ecs.Entity, x, y float64) bool {
	body := ps.body(e)
	if body == nil {
		return false
	}
	body.SetVelocity(x, y)
	return true
}

func (ps *PhysicsSystem) LinearVelocity(e ecs.Entity) (float64, float64) {
	body := ps.body(e)
	if body == nil {
		return 0, 0
	}
	v := body.Velocity()
	return v.X, v.Y
}

// EntitiesIntersectingBody returns other entities with a fixture overlapping
// any fixture of e whose layer intersects mask, ordered by entity.
func (ps *PhysicsSystem) EntitiesIntersectingBody(w *ecs.World, e ecs.Entity, mask component.CollisionGroup) []ecs.Entity {
	if ps == nil || w == nil || ps.body(e) == nil {
		return nil
	}
	seen := make(map[ecs.Entity]struct{})
	for _, f := range ps.Fixtures(w, e) {
		if f.Shape == nil || f.Shape.Space() != ps.space {
			continue
		}
		ps.space.ShapeQuery(f.Shape, func(shape *cp.Shape, _ *cp.ContactPointSet) {
			other, ok := shape.UserData.(*component.Fixture)
			if !ok || other.Owner == uint64(e) || other.Layer&mask == 0 {
				return
			}
			seen[ecs.Entity(other.Owner)] = struct{}{}
		})
	}
	out := make([]ecs.Entity, 0, len(seen))
	for other := range seen {
		out = append(out, other)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FixtureContacts returns the active contacts of one fixture.
func (ps *PhysicsSystem) FixtureContacts(w *ecs.World, e ecs.Entity, name string) []Collision {
	f, ok := ps.Fixture(w, e, name)
	if !ok {
		return nil
	}
	others := ps.contacts.others(f)
	out := make([]Collision, 0, len(others))
	for _, other := range others {
		out = append(out, Collision{
			OurFixture:   f.Name,
			OurHandle:    f.Handle,
			OtherEntity:  ecs.Entity(other.Owner),
			OtherFixture: other.Name,
		})
	}
	return out
}
