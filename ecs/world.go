package ecs

import "github.com/milk9111/leap/ecs/component"

// Observer is called when a component kind is attached to or detached from an entity.
type Observer func(w *World, e Entity)

type observers struct {
	onAdd    []Observer
	onRemove []Observer
}

// World owns entities, component storage, the event bus and the simulation clock.
type World struct {
	entities  entityStore
	stores    map[component.ComponentID]*SparseSet
	observers map[component.ComponentID]*observers
	events    EventBus

	tick uint64
	time float64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores:    make(map[component.ComponentID]*SparseSet),
		observers: make(map[component.ComponentID]*observers),
	}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	if w == nil {
		return 0
	}
	return w.entities.create()
}

// DestroyEntity detaches every component (running remove observers) and frees
// the entity id. It reports false for dead or unknown entities.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for id, store := range w.stores {
		if store.Has(e.id()) {
			w.RemoveComponent(e, id)
		}
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns every live entity.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// AddComponent stores value for e under id, replacing any previous value.
// Add observers run only when the component is newly attached.
func (w *World) AddComponent(e Entity, id component.ComponentID, value any) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	store := w.stores[id]
	if store == nil {
		store = &SparseSet{}
		w.stores[id] = store
	}
	if store.Set(e.id(), value) {
		if obs := w.observers[id]; obs != nil {
			for _, fn := range obs.onAdd {
				fn(w, e)
			}
		}
	}
	return nil
}

// RemoveComponent detaches id from e. Remove observers run before the value is
// dropped so they can still read it.
func (w *World) RemoveComponent(e Entity, id component.ComponentID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	store := w.stores[id]
	if !store.Has(e.id()) {
		return false
	}
	if obs := w.observers[id]; obs != nil {
		for _, fn := range obs.onRemove {
			fn(w, e)
		}
	}
	return store.Remove(e.id())
}

// HasComponent reports whether e carries id.
func (w *World) HasComponent(e Entity, id component.ComponentID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.stores[id].Has(e.id())
}

// GetComponent returns the raw stored value.
func (w *World) GetComponent(e Entity, id component.ComponentID) (any, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	store := w.stores[id]
	if !store.Has(e.id()) {
		return nil, false
	}
	return store.Get(e.id()), true
}

// Query returns live entities carrying every listed component id.
func (w *World) Query(ids ...component.ComponentID) []Entity {
	if w == nil || len(ids) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(ids))
	for _, id := range ids {
		store := w.stores[id]
		if store == nil {
			return nil
		}
		sets = append(sets, store)
	}
	matched := intersectIDs(sets...)
	out := make([]Entity, 0, len(matched))
	for _, id := range matched {
		if e := w.entities.entity(id); e.Valid() {
			out = append(out, e)
		}
	}
	return out
}

// First returns any live entity carrying id.
func (w *World) First(id component.ComponentID) (Entity, bool) {
	ents := w.Query(id)
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}

// OnAdd registers fn to run whenever component id is newly attached.
func (w *World) OnAdd(id component.ComponentID, fn Observer) {
	if w == nil || fn == nil {
		return
	}
	w.observersFor(id).onAdd = append(w.observersFor(id).onAdd, fn)
}

// OnRemove registers fn to run whenever component id is detached, including
// during DestroyEntity.
func (w *World) OnRemove(id component.ComponentID, fn Observer) {
	if w == nil || fn == nil {
		return
	}
	w.observersFor(id).onRemove = append(w.observersFor(id).onRemove, fn)
}

func (w *World) observersFor(id component.ComponentID) *observers {
	obs := w.observers[id]
	if obs == nil {
		obs = &observers{}
		w.observers[id] = obs
	}
	return obs
}

// Events returns the world event bus.
func (w *World) Events() *EventBus {
	if w == nil {
		return nil
	}
	return &w.events
}

// Publish raises evt on the world event bus.
func (w *World) Publish(evt *Event) bool {
	if w == nil {
		return false
	}
	return w.events.Publish(w, evt)
}

// Tick returns the number of completed scheduler ticks.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Time returns elapsed simulation time in seconds.
func (w *World) Time() float64 {
	if w == nil {
		return 0
	}
	return w.time
}

func (w *World) advance(dt float64) {
	w.tick++
	w.time += dt
}
