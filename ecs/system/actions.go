package system

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milk9111/leap/common"
	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
	"github.com/milk9111/leap/locale"
	"github.com/milk9111/leap/logging"
	"github.com/milk9111/leap/prefabs"
)

// ActionsSystem grants prototype actions to entities and raises their events
// when performed. Each granted action is its own entity.
type ActionsSystem struct {
	prototypes map[string]prefabs.ActionPrototype
	log        *zap.Logger
}

func NewActionsSystem(prototypes map[string]prefabs.ActionPrototype, log *zap.Logger) *ActionsSystem {
	if prototypes == nil {
		prototypes = map[string]prefabs.ActionPrototype{}
	}
	return &ActionsSystem{prototypes: prototypes, log: logging.OrNop(log)}
}

// AddAction creates an action entity from the prototype and registers it with
// owner. Prototype names and descriptions may be locale keys.
func (s *ActionsSystem) AddAction(w *ecs.World, owner ecs.Entity, prototype string) (ecs.Entity, bool) {
	if s == nil || w == nil || !w.IsAlive(owner) {
		return 0, false
	}
	proto, ok := s.prototypes[prototype]
	if !ok {
		s.log.Warn("unknown action prototype", zap.String("prototype", prototype), zap.Stringer("owner", owner))
		return 0, false
	}

	action := ecs.CreateEntity(w)
	if err := ecs.Add(w, action, component.ActionComponent.Kind(), &component.Action{
		ID:          uuid.New(),
		Prototype:   proto.ID,
		Name:        locale.Get(proto.Name),
		Description: locale.Get(proto.Description),
		EventType:   proto.Event,
		UseDelay:    proto.UseDelay,
		Owner:       uint64(owner),
	}); err != nil {
		ecs.DestroyEntity(w, action)
		s.log.Warn("add action", zap.Stringer("owner", owner), zap.Error(err))
		return 0, false
	}

	container, ok := ecs.Get(w, owner, component.ActionContainerComponent.Kind())
	if !ok {
		container = &component.ActionContainer{}
		if err := ecs.Add(w, owner, component.ActionContainerComponent.Kind(), container); err != nil {
			ecs.DestroyEntity(w, action)
			s.log.Warn("add action container", zap.Stringer("owner", owner), zap.Error(err))
			return 0, false
		}
	}
	container.Actions = append(container.Actions, uint64(action))
	return action, true
}

// RemoveAction unregisters action from owner and destroys it.
func (s *ActionsSystem) RemoveAction(w *ecs.World, owner, action ecs.Entity) bool {
	if s == nil || w == nil {
		return false
	}
	removed := false
	if container, ok := ecs.Get(w, owner, component.ActionContainerComponent.Kind()); ok {
		kept := container.Actions[:0]
		for _, id := range container.Actions {
			if ecs.Entity(id) == action {
				removed = true
				continue
			}
			kept = append(kept, id)
		}
		container.Actions = kept
	}
	if ecs.DestroyEntity(w, action) {
		removed = true
	}
	return removed
}

// Actions returns the action entities granted to owner.
func (s *ActionsSystem) Actions(w *ecs.World, owner ecs.Entity) []ecs.Entity {
	container, ok := ecs.Get(w, owner, component.ActionContainerComponent.Kind())
	if !ok {
		return nil
	}
	out := make([]ecs.Entity, 0, len(container.Actions))
	for _, id := range container.Actions {
		out = append(out, ecs.Entity(id))
	}
	return out
}

// ActionByPrototype finds owner's action created from prototype.
func (s *ActionsSystem) ActionByPrototype(w *ecs.World, owner ecs.Entity, prototype string) (ecs.Entity, bool) {
	for _, e := range s.Actions(w, owner) {
		action, ok := ecs.Get(w, e, component.ActionComponent.Kind())
		if ok && action.Prototype == prototype {
			return e, true
		}
	}
	return 0, false
}

// ActionByID finds owner's action with the given instance id.
func (s *ActionsSystem) ActionByID(w *ecs.World, owner ecs.Entity, id uuid.UUID) (ecs.Entity, bool) {
	if id == uuid.Nil {
		return 0, false
	}
	for _, e := range s.Actions(w, owner) {
		action, ok := ecs.Get(w, e, component.ActionComponent.Kind())
		if ok && action.ID == id {
			return e, true
		}
	}
	return 0, false
}

// PerformAction raises the action's event on user. The use delay starts only
// when a handler reports the event handled.
func (s *ActionsSystem) PerformAction(w *ecs.World, user, action ecs.Entity) bool {
	if s == nil || w == nil || !w.IsAlive(user) {
		return false
	}
	a, ok := ecs.Get(w, action, component.ActionComponent.Kind())
	if !ok || ecs.Entity(a.Owner) != user {
		return false
	}
	if a.Cooldown > 0 {
		return false
	}

	handled := w.Publish(&ecs.Event{
		Type:   ecs.EventType(a.EventType),
		Entity: user,
		Data:   ActionPerformed{Action: action, ActionID: a.ID, Performer: user},
	})
	if handled {
		a.Cooldown = a.UseDelay
	}
	return handled
}

func (s *ActionsSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	ecs.ForEach(w, component.ActionComponent.Kind(), func(_ ecs.Entity, a *component.Action) {
		if a.Cooldown <= 0 {
			return
		}
		a.Cooldown -= common.FixedDelta
		if a.Cooldown < doAfterEpsilon {
			a.Cooldown = 0
		}
	})
}
