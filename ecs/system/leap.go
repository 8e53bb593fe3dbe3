package system

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milk9111/leap/common"
	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
	"github.com/milk9111/leap/locale"
	"github.com/milk9111/leap/logging"
)

// probeRadius is the radius of the Leaping sensor in world units.
const probeRadius = 0.35

// LeapPhysics is the physics surface the leap state machine drives.
// *PhysicsSystem implements it.
type LeapPhysics interface {
	FixtureDestroyer

	Fixtures(w *ecs.World, e ecs.Entity) []*component.Fixture
	Fixture(w *ecs.World, e ecs.Entity, name string) (*component.Fixture, bool)
	SetCollisionMask(w *ecs.World, e ecs.Entity, name string, mask component.CollisionGroup) bool
	TryCreateFixture(w *ecs.World, e ecs.Entity, def component.FixtureDef) (*component.Fixture, bool)
	SetBodyStatus(w *ecs.World, e ecs.Entity, status component.BodyStatus) bool
	WorldRotation(w *ecs.World, e ecs.Entity) float64
	SetLinearVelocity(w *ecs.World, e ecs.Entity, x, y float64) bool
	EntitiesIntersectingBody(w *ecs.World, e ecs.Entity, mask component.CollisionGroup) []ecs.Entity
	FixtureContacts(w *ecs.World, e ecs.Entity, name string) []Collision
}

// LeapDeps are the collaborators a LeapSystem calls into. Only Physics is
// required; a nil system skips the step it backs.
type LeapDeps struct {
	Physics LeapPhysics
	Gravity *GravitySystem
	Stamina *StaminaSystem
	DoAfter *DoAfterSystem
	Popups  *PopupSystem
	Actions *ActionsSystem
}

// LeapSystem runs the leap state machine:
//
//	idle -> jumping -> checking clearance -> idle
//
// While jumping the leap-exempt bits are removed from the masks of the
// actor's hard fixtures and a Leaping sensor tracks overlap with exempt
// obstacles. Masks come back once the actor has landed and is clear of
// anything climbable. The sensor is destroyed from Update, never from an
// event handler, since those may run inside a physics step.
type LeapSystem struct {
	Queue *FixtureRemoveQueue

	physics LeapPhysics
	gravity *GravitySystem
	stamina *StaminaSystem
	doAfter *DoAfterSystem
	popups  *PopupSystem
	actions *ActionsSystem
	log     *zap.Logger
}

// NewLeapSystem wires the state machine into w's event bus and component
// observers. It must be created before any Leap component is added to w.
func NewLeapSystem(w *ecs.World, deps LeapDeps, log *zap.Logger) *LeapSystem {
	s := &LeapSystem{
		Queue:   NewFixtureRemoveQueue(),
		physics: deps.Physics,
		gravity: deps.Gravity,
		stamina: deps.Stamina,
		doAfter: deps.DoAfter,
		popups:  deps.Popups,
		actions: deps.Actions,
		log:     logging.OrNop(log),
	}
	if w == nil {
		return s
	}

	bus := w.Events()
	bus.Subscribe(LeapForwardEvent, s.HandleLeap)
	bus.Subscribe(LeapFinishEvent, s.handleFinish)
	bus.Subscribe(CollisionEndedEvent, s.handleCollisionEnded)
	bus.Subscribe(RoundRestartCleanupEvent, func(*ecs.World, *ecs.Event) { s.Reset() })

	kind := component.LeapComponent.Kind()
	w.OnAdd(kind.ID(), s.onLeapAdded)
	w.OnRemove(kind.ID(), s.onLeapRemoved)
	return s
}

func (s *LeapSystem) onLeapAdded(w *ecs.World, e ecs.Entity) {
	leap, ok := ecs.Get(w, e, component.LeapComponent.Kind())
	if !ok {
		return
	}
	if leap.DisabledFixtureMasks == nil {
		leap.DisabledFixtureMasks = make(map[string]component.CollisionGroup)
	}
	if s.actions == nil {
		return
	}
	action, ok := s.actions.AddAction(w, e, leap.Profile.Action)
	if !ok {
		return
	}
	if a, ok := ecs.Get(w, action, component.ActionComponent.Kind()); ok {
		leap.StoredAction = a.ID
	}
}

func (s *LeapSystem) onLeapRemoved(w *ecs.World, e ecs.Entity) {
	leap, ok := ecs.Get(w, e, component.LeapComponent.Kind())
	if !ok || leap.StoredAction == uuid.Nil || s.actions == nil {
		return
	}
	if action, ok := s.actions.ActionByID(w, e, leap.StoredAction); ok {
		s.actions.RemoveAction(w, e, action)
	}
	leap.StoredAction = uuid.Nil
}

// HandleLeap consumes a leap intent raised on an actor. Intents raised by an
// action other than the one bound to the actor's leap are left unhandled.
func (s *LeapSystem) HandleLeap(w *ecs.World, evt *ecs.Event) {
	if evt == nil || evt.Handled {
		return
	}
	if performed, ok := evt.Data.(ActionPerformed); ok {
		leap, ok := ecs.Get(w, evt.Entity, component.LeapComponent.Kind())
		if ok && leap.StoredAction != uuid.Nil && performed.ActionID != leap.StoredAction {
			s.log.Debug("ignoring unbound leap action", zap.Stringer("entity", evt.Entity), zap.Stringer("action", performed.ActionID))
			return
		}
	}
	s.log.Debug("preparing leap", zap.Stringer("entity", evt.Entity))
	ok := s.AttemptLeap(w, evt.Entity)
	s.log.Debug("leap handled", zap.Stringer("entity", evt.Entity), zap.Bool("success", ok))
	evt.Handled = ok
}

// AttemptLeap starts a leap. Any failed precondition returns false with no
// side effects. Stamina is taken before the probe is created and is not given
// back if creating it fails.
func (s *LeapSystem) AttemptLeap(w *ecs.World, e ecs.Entity) bool {
	if s == nil || w == nil || s.physics == nil {
		return false
	}
	leap, ok := ecs.Get(w, e, component.LeapComponent.Kind())
	if !ok ||
		!ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) ||
		!ecs.Has(w, e, component.FixturesComponent.Kind()) {
		return false
	}

	if leap.Jumping {
		return false
	}
	if leap.Profile.RequiresGravity && s.gravity != nil && s.gravity.IsWeightless(w, e) {
		return false
	}
	if leap.Profile.RequiresGrounded && s.gravity != nil && !s.gravity.IsSupported(w, e) {
		return false
	}
	if s.stamina != nil && !s.stamina.TryTakeStamina(w, e, float64(leap.Profile.StaminaCost)) {
		s.log.Debug("not enough stamina", zap.Stringer("entity", e))
		return false
	}

	if leap.DisabledFixtureMasks == nil {
		leap.DisabledFixtureMasks = make(map[string]component.CollisionGroup)
	}
	var suppressed []string
	for _, f := range s.physics.Fixtures(w, e) {
		if _, done := leap.DisabledFixtureMasks[f.Name]; done {
			continue
		}
		bits := f.Mask & component.LeapingCollisionGroup
		if !f.Hard || bits == 0 {
			continue
		}
		leap.DisabledFixtureMasks[f.Name] = bits
		s.physics.SetCollisionMask(w, e, f.Name, f.Mask&^component.LeapingCollisionGroup)
		suppressed = append(suppressed, f.Name)
	}

	if probe, exists := s.physics.Fixture(w, e, component.LeapingFixtureName); exists {
		// A probe still waiting for the flush is reused by this leap.
		if s.Queue.Cancel(e, probe.Name) {
			s.log.Debug("reusing queued probe", zap.Stringer("entity", e))
		}
	} else if _, created := s.physics.TryCreateFixture(w, e, probeDef()); !created {
		s.log.Debug("could not create probe", zap.Stringer("entity", e))
		s.restoreMasks(w, e, leap, suppressed)
		return false
	}

	s.physics.SetBodyStatus(w, e, component.BodyInAir)
	vx, vy := common.Rotate(0, -leap.Profile.Speed*common.PixelsPerUnit, s.physics.WorldRotation(w, e))
	s.physics.SetLinearVelocity(w, e, vx, vy)

	if s.popups != nil {
		s.popups.PopupEntity(w, locale.Get("comp-leap-user-leaps-other", identityName(w, e)), e, component.PopupMedium)
	}

	leap.Jumping = true
	leap.CheckColliding = false
	leap.CompleteTime = w.Time() + leap.Profile.Duration

	if s.doAfter != nil {
		s.doAfter.TryStartDoAfter(w, DoAfterArgs{
			User:            e,
			Target:          e,
			Delay:           leap.Profile.Duration,
			Event:           LeapFinishEvent,
			CancelDuplicate: true,
			BlockDuplicate:  true,
		})
	}
	return true
}

// restoreMasks undoes the suppression done by a leap attempt that failed
// after touching masks.
func (s *LeapSystem) restoreMasks(w *ecs.World, e ecs.Entity, leap *component.Leap, names []string) {
	for _, name := range names {
		if f, ok := s.physics.Fixture(w, e, name); ok {
			s.physics.SetCollisionMask(w, e, name, f.Mask|leap.DisabledFixtureMasks[name])
		}
		delete(leap.DisabledFixtureMasks, name)
	}
}

func probeDef() component.FixtureDef {
	return component.FixtureDef{
		Name: component.LeapingFixtureName,
		Shape: component.FixtureShape{
			Kind:   component.FixtureCircle,
			Radius: probeRadius * common.PixelsPerUnit,
		},
		Layer: component.CollisionNone,
		Mask:  component.LeapingCollisionGroup,
		Hard:  false,
	}
}

func identityName(w *ecs.World, e ecs.Entity) string {
	if id, ok := ecs.Get(w, e, component.IdentityComponent.Kind()); ok && id.Name != "" {
		return id.Name
	}
	return e.String()
}

func (s *LeapSystem) handleFinish(w *ecs.World, evt *ecs.Event) {
	if evt == nil {
		return
	}
	if s.FinishLeap(w, evt.Entity) {
		evt.Handled = true
	}
}

// FinishLeap lands the actor and runs the clearance check. It is a no-op for
// an actor that is not jumping.
func (s *LeapSystem) FinishLeap(w *ecs.World, e ecs.Entity) bool {
	if s == nil || w == nil || s.physics == nil {
		return false
	}
	leap, ok := ecs.Get(w, e, component.LeapComponent.Kind())
	if !ok || !leap.Jumping {
		return false
	}
	if !s.physics.SetBodyStatus(w, e, component.BodyOnGround) {
		return false
	}
	leap.CheckColliding = true
	leap.Jumping = false

	s.checkClearance(w, e, leap)
	return true
}

// checkClearance restores collisions unless the actor still overlaps a
// climbable entity.
func (s *LeapSystem) checkClearance(w *ecs.World, e ecs.Entity, leap *component.Leap) bool {
	for _, other := range s.physics.EntitiesIntersectingBody(w, e, component.LeapClearanceMask) {
		if ecs.Has(w, other, component.ClimbableComponent.Kind()) {
			s.log.Debug("still over climbable", zap.Stringer("entity", e), zap.Stringer("other", other))
			return false
		}
	}
	s.ReturnLeapCollisions(w, e)
	leap.CheckColliding = false
	return true
}

// handleCollisionEnded re-checks clearance when the probe stops touching
// something after landing.
func (s *LeapSystem) handleCollisionEnded(w *ecs.World, evt *ecs.Event) {
	if evt == nil || s.physics == nil {
		return
	}
	ended, ok := evt.Data.(Collision)
	if !ok || ended.OurFixture != component.LeapingFixtureName {
		return
	}
	e := evt.Entity
	leap, ok := ecs.Get(w, e, component.LeapComponent.Kind())
	if !ok || leap.Jumping || !leap.CheckColliding {
		return
	}

	s.log.Debug("exited contact", zap.Stringer("entity", e), zap.Stringer("other", ended.OtherEntity))

	for _, c := range s.physics.FixtureContacts(w, e, component.LeapingFixtureName) {
		if c.OtherEntity == ended.OtherEntity && c.OtherFixture == ended.OtherFixture {
			continue
		}
		if ecs.Has(w, c.OtherEntity, component.ClimbableComponent.Kind()) {
			return
		}
	}

	s.log.Debug("confirmed clear", zap.Stringer("entity", e))

	leap.Jumping = false
	leap.CheckColliding = false
	s.ReturnLeapCollisions(w, e)
}

// ReturnLeapCollisions ORs the saved bits back into fixtures that still exist
// and queues the probe for destruction.
func (s *LeapSystem) ReturnLeapCollisions(w *ecs.World, e ecs.Entity) {
	if s == nil || w == nil || s.physics == nil {
		return
	}
	leap, ok := ecs.Get(w, e, component.LeapComponent.Kind())
	if !ok || !ecs.Has(w, e, component.FixturesComponent.Kind()) {
		return
	}

	for name, bits := range leap.DisabledFixtureMasks {
		f, ok := s.physics.Fixture(w, e, name)
		if !ok {
			continue
		}
		s.physics.SetCollisionMask(w, e, name, f.Mask|bits)
	}
	clear(leap.DisabledFixtureMasks)

	if probe, ok := s.physics.Fixture(w, e, component.LeapingFixtureName); ok {
		s.Queue.Enqueue(e, probe.Name, probe.Handle)
	}
}

// Update re-checks clearance for landed actors, then flushes the fixture
// remove queue. Run it after the physics step.
//
// The probe is smaller than the actor's hard fixtures, so the actor can land
// overlapping a climbable the probe never touched. No overlap end would ever
// arrive for that case, hence the per-tick check.
func (s *LeapSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	if s.physics != nil {
		ecs.ForEach(w, component.LeapComponent.Kind(), func(e ecs.Entity, leap *component.Leap) {
			if leap.Jumping || !leap.CheckColliding {
				return
			}
			s.checkClearance(w, e, leap)
		})
	}
	if err := s.Queue.Flush(w, s.physics); err != nil {
		s.log.Debug("flush fixture queue", zap.Error(err))
	}
}

// Reset drops pending fixture destruction. Called on round restart.
func (s *LeapSystem) Reset() {
	if s == nil {
		return
	}
	s.Queue.Reset()
}
