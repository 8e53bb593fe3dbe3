package system

import (
	"errors"
	"sort"

	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
)

// FixtureDestroyer is the part of the physics backend the queue needs.
type FixtureDestroyer interface {
	DestroyFixture(w *ecs.World, e ecs.Entity, name string, handle component.FixtureHandle) error
}

// FixtureRemoveQueue buffers fixture destruction requested from event
// handlers, which may run inside a physics step, until the next Flush.
//
// Entries are keyed by fixture name. The handle recorded with each entry
// keeps a flush from destroying a newer fixture created under the same name.
type FixtureRemoveQueue struct {
	pending map[ecs.Entity]map[string]component.FixtureHandle
}

// NewFixtureRemoveQueue returns an empty queue.
func NewFixtureRemoveQueue() *FixtureRemoveQueue {
	return &FixtureRemoveQueue{pending: make(map[ecs.Entity]map[string]component.FixtureHandle)}
}

// Enqueue schedules a fixture for destruction. Enqueueing a name twice keeps
// the latest handle.
func (q *FixtureRemoveQueue) Enqueue(e ecs.Entity, name string, handle component.FixtureHandle) {
	if q == nil {
		return
	}
	if q.pending == nil {
		q.pending = make(map[ecs.Entity]map[string]component.FixtureHandle)
	}
	set := q.pending[e]
	if set == nil {
		set = make(map[string]component.FixtureHandle)
		q.pending[e] = set
	}
	set[name] = handle
}

// Cancel drops a pending request and reports whether there was one.
func (q *FixtureRemoveQueue) Cancel(e ecs.Entity, name string) bool {
	if q == nil {
		return false
	}
	set := q.pending[e]
	if _, ok := set[name]; !ok {
		return false
	}
	delete(set, name)
	if len(set) == 0 {
		delete(q.pending, e)
	}
	return true
}

// Queued reports whether name is pending destruction on e.
func (q *FixtureRemoveQueue) Queued(e ecs.Entity, name string) bool {
	if q == nil {
		return false
	}
	_, ok := q.pending[e][name]
	return ok
}

// Len is the number of fixtures pending destruction.
func (q *FixtureRemoveQueue) Len() int {
	if q == nil {
		return 0
	}
	n := 0
	for _, set := range q.pending {
		n += len(set)
	}
	return n
}

// Flush destroys every queued fixture whose entity still has a body and a
// fixture container, then clears the queue whether or not each destruction
// succeeded. Requests for vanished entities are dropped silently; destroy
// failures are returned joined.
func (q *FixtureRemoveQueue) Flush(w *ecs.World, physics FixtureDestroyer) error {
	if q == nil || len(q.pending) == 0 {
		return nil
	}
	defer q.Reset()
	if w == nil || physics == nil {
		return nil
	}

	entities := make([]ecs.Entity, 0, len(q.pending))
	for e := range q.pending {
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })

	var errs []error
	for _, e := range entities {
		if !w.IsAlive(e) ||
			!ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) ||
			!ecs.Has(w, e, component.FixturesComponent.Kind()) {
			continue
		}
		set := q.pending[e]
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := physics.DestroyFixture(w, e, name, set[name]); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Reset discards every pending request.
func (q *FixtureRemoveQueue) Reset() {
	if q == nil {
		return
	}
	q.pending = make(map[ecs.Entity]map[string]component.FixtureHandle)
}
