package system

import (
	"go.uber.org/zap"

	"github.com/milk9111/leap/common"
	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
	"github.com/milk9111/leap/logging"
)

const doAfterEpsilon = 1e-9

// DoAfterArgs describes a timed callback. A duplicate is another pending
// callback from the same user raising the same event.
type DoAfterArgs struct {
	User   ecs.Entity
	Target ecs.Entity
	Delay  float64
	Event  ecs.EventType
	Data   any

	// CancelDuplicate removes running duplicates before starting.
	CancelDuplicate bool
	// BlockDuplicate refuses to start while a duplicate is still running.
	// Combined with CancelDuplicate the new callback replaces the old one.
	BlockDuplicate bool
}

// DoAfterCancelled is the payload of DoAfterCancelledEvent.
type DoAfterCancelled struct {
	ID    uint64
	Event ecs.EventType
}

// DoAfterSystem fires one-shot events after a delay measured in simulation
// time.
type DoAfterSystem struct {
	nextID uint64
	log    *zap.Logger
}

func NewDoAfterSystem(log *zap.Logger) *DoAfterSystem {
	return &DoAfterSystem{log: logging.OrNop(log)}
}

// TryStartDoAfter schedules args.Event and returns its id.
func (s *DoAfterSystem) TryStartDoAfter(w *ecs.World, args DoAfterArgs) (uint64, bool) {
	if s == nil || w == nil || !w.IsAlive(args.User) || args.Event == "" {
		return 0, false
	}
	queue, ok := ecs.Get(w, args.User, component.DoAftersComponent.Kind())
	if !ok {
		queue = &component.DoAfters{}
		if err := ecs.Add(w, args.User, component.DoAftersComponent.Kind(), queue); err != nil {
			s.log.Warn("start do-after", zap.Stringer("user", args.User), zap.Error(err))
			return 0, false
		}
	}

	if args.CancelDuplicate {
		kept := queue.Pending[:0]
		var cancelled []component.DoAfter
		for _, pending := range queue.Pending {
			if isDuplicate(pending, args) {
				cancelled = append(cancelled, pending)
				continue
			}
			kept = append(kept, pending)
		}
		queue.Pending = kept
		for _, c := range cancelled {
			w.Publish(&ecs.Event{
				Type:   DoAfterCancelledEvent,
				Entity: ecs.Entity(c.Target),
				Data:   DoAfterCancelled{ID: c.ID, Event: ecs.EventType(c.EventType)},
			})
		}
	}

	if args.BlockDuplicate {
		for _, pending := range queue.Pending {
			if isDuplicate(pending, args) {
				return 0, false
			}
		}
	}

	s.nextID++
	queue.Pending = append(queue.Pending, component.DoAfter{
		ID:        s.nextID,
		Target:    uint64(args.Target),
		Delay:     args.Delay,
		EventType: string(args.Event),
		Data:      args.Data,
	})
	return s.nextID, true
}

func isDuplicate(pending component.DoAfter, args DoAfterArgs) bool {
	return pending.EventType == string(args.Event)
}

// Pending reports whether user has a running callback for event.
func (s *DoAfterSystem) Pending(w *ecs.World, user ecs.Entity, event ecs.EventType) bool {
	queue, ok := ecs.Get(w, user, component.DoAftersComponent.Kind())
	if !ok {
		return false
	}
	for _, pending := range queue.Pending {
		if pending.EventType == string(event) {
			return true
		}
	}
	return false
}

// Update advances every pending callback by one tick and publishes the ones
// that are due. Events are raised after the queue is updated so handlers may
// schedule new callbacks.
func (s *DoAfterSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	var due []component.DoAfter
	ecs.ForEach(w, component.DoAftersComponent.Kind(), func(e ecs.Entity, queue *component.DoAfters) {
		kept := queue.Pending[:0]
		for _, pending := range queue.Pending {
			pending.Elapsed += common.FixedDelta
			if pending.Elapsed+doAfterEpsilon >= pending.Delay {
				due = append(due, pending)
				continue
			}
			kept = append(kept, pending)
		}
		queue.Pending = kept
	})

	for _, d := range due {
		target := ecs.Entity(d.Target)
		if !w.IsAlive(target) {
			continue
		}
		w.Publish(&ecs.Event{Type: ecs.EventType(d.EventType), Entity: target, Data: d.Data})
	}
}
