package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/leap/ecs/component"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			require.Len(t, Entities(w), c.create)
			if c.destroyIndex >= 0 {
				require.True(t, DestroyEntity(w, ents[c.destroyIndex]))
				assert.False(t, IsAlive(w, ents[c.destroyIndex]))
				assert.False(t, DestroyEntity(w, ents[c.destroyIndex]), "double destroy")
				assert.Len(t, Entities(w), c.create-1)
			}
		})
	}
}

func TestWorldRecycledIDGetsNewGeneration(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponentKind[int]()

	old := CreateEntity(w)
	require.NoError(t, Add(w, old, kind, intPtr(1)))
	require.True(t, DestroyEntity(w, old))

	fresh := CreateEntity(w)
	assert.Equal(t, old.id(), fresh.id())
	assert.NotEqual(t, old, fresh)
	assert.False(t, IsAlive(w, old))
	assert.False(t, Has(w, fresh, kind), "recycled id must not inherit components")

	_, ok := Get(w, old, kind)
	assert.False(t, ok)
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()

	ints := component.NewComponent[int]()
	strs := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, ints.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, ints.Kind())
				require.True(t, ok)
				assert.Equal(t, 10, *v)
			},
			teardown: func() bool { return Remove(w, e1, ints.Kind()) },
		},
		{
			name: "add_str_to_e1_and_e2",
			setup: func() error {
				if err := Add(w, e1, strs.Kind(), stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, strs.Kind(), stringPtr("b"))
			},
			check: func(t *testing.T) {
				assert.True(t, Has(w, e1, strs.Kind()))
				assert.True(t, Has(w, e2, strs.Kind()))
				assert.ElementsMatch(t, []Entity{e1, e2}, Query(w, strs.Kind()))
			},
			teardown: func() bool { return Remove(w, e1, strs.Kind()) },
		},
		{
			name: "mutate_through_pointer",
			setup: func() error {
				return Add(w, e2, ints.Kind(), intPtr(1))
			},
			check: func(t *testing.T) {
				v, _ := Get(w, e2, ints.Kind())
				*v = 42
				again, _ := Get(w, e2, ints.Kind())
				assert.Equal(t, 42, *again)
			},
			teardown: func() bool { return Remove(w, e2, ints.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.setup())
			tc.check(t)
			require.True(t, tc.teardown())
		})
	}
}

func TestWorldAddErrors(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponentKind[int]()
	e := CreateEntity(w)

	assert.ErrorIs(t, Add(w, e, kind, nil), component.ErrNilComponent)
	assert.ErrorIs(t, Add(w, e, component.ComponentKind[int]{}, intPtr(1)), component.ErrInvalidComponentKind)

	require.True(t, DestroyEntity(w, e))
	assert.ErrorIs(t, Add(w, e, kind, intPtr(1)), component.ErrEntityNotAlive)
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)

	require.NoError(t, Add(w, e1, h.Kind(), intPtr(1)))
	require.NoError(t, Add(w, e3, h.Kind(), intPtr(3)))

	var ents []Entity
	ForEach(w, h.Kind(), func(e Entity, _ *int) { ents = append(ents, e) })

	assert.ElementsMatch(t, []Entity{e1, e3}, ents)
	assert.NotContains(t, ents, e2)
}

func TestForEachIntersections(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "for_each2",
			run: func(t *testing.T) {
				w := NewWorld()
				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[string]()
				e1 := CreateEntity(w)
				e2 := CreateEntity(w)
				require.NoError(t, Add(w, e1, ka, intPtr(1)))
				require.NoError(t, Add(w, e2, ka, intPtr(2)))
				require.NoError(t, Add(w, e2, kb, stringPtr("x")))

				var res []Entity
				ForEach2(w, ka, kb, func(e Entity, a *int, b *string) {
					assert.Equal(t, 2, *a)
					assert.Equal(t, "x", *b)
					res = append(res, e)
				})
				assert.Equal(t, []Entity{e2}, res)
			},
		},
		{
			name: "for_each3_ignores_dead_entities",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)
				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()
				require.NoError(t, Add(w, e, ka, intPtr(1)))
				require.NoError(t, Add(w, e, kb, intPtr(2)))
				require.NoError(t, Add(w, e, kc, intPtr(3)))
				require.True(t, DestroyEntity(w, e))

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				assert.Empty(t, res)
			},
		},
		{
			name: "for_each4_intersection",
			run: func(t *testing.T) {
				w := NewWorld()
				e1 := CreateEntity(w)
				e2 := CreateEntity(w)
				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()
				kd := component.NewComponentKind[int]()

				// only e2 has all four
				require.NoError(t, Add(w, e1, ka, intPtr(1)))
				require.NoError(t, Add(w, e2, ka, intPtr(2)))
				require.NoError(t, Add(w, e2, kb, intPtr(3)))
				require.NoError(t, Add(w, e2, kc, intPtr(4)))
				require.NoError(t, Add(w, e2, kd, intPtr(5)))

				var res []Entity
				ForEach4(w, ka, kb, kc, kd, func(e Entity, _ *int, _ *int, _ *int, _ *int) { res = append(res, e) })
				assert.Equal(t, []Entity{e2}, res)
			},
		},
		{
			name: "missing_store_returns_nil",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)
				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				require.NoError(t, Add(w, e, ka, intPtr(1)))

				var res []Entity
				ForEach2(w, ka, kb, func(e Entity, _ *int, _ *int) { res = append(res, e) })
				assert.Empty(t, res)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

func TestWorldObservers(t *testing.T) {
	w := NewWorld()
	kind := component.NewComponentKind[int]()

	var added, removed []Entity
	var seenOnRemove int
	w.OnAdd(kind.ID(), func(_ *World, e Entity) { added = append(added, e) })
	w.OnRemove(kind.ID(), func(w *World, e Entity) {
		removed = append(removed, e)
		v, ok := Get(w, e, kind)
		require.True(t, ok, "value must still be readable during remove observer")
		seenOnRemove = *v
	})

	e := CreateEntity(w)
	require.NoError(t, Add(w, e, kind, intPtr(7)))
	require.NoError(t, Add(w, e, kind, intPtr(8)))
	assert.Equal(t, []Entity{e}, added, "replacement must not re-fire add")

	require.True(t, DestroyEntity(w, e))
	assert.Equal(t, []Entity{e}, removed)
	assert.Equal(t, 8, seenOnRemove)
}

func TestEventBus(t *testing.T) {
	const ping EventType = "ping"

	w := NewWorld()
	target := CreateEntity(w)

	var order []string
	w.Events().Subscribe(ping, func(_ *World, evt *Event) {
		order = append(order, "first")
		assert.True(t, w.Events().Dispatching())
		assert.Equal(t, target, evt.Entity)
	})
	w.Events().Subscribe(ping, func(_ *World, evt *Event) {
		order = append(order, "second")
		evt.Handled = true
	})

	assert.False(t, w.Events().Dispatching())
	handled := w.Publish(&Event{Type: ping, Entity: target})
	assert.True(t, handled)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.False(t, w.Events().Dispatching())
	assert.Equal(t, 2, w.Events().Subscribers(ping))
	assert.False(t, w.Publish(&Event{Type: "unknown"}))
}

type countingSystem struct {
	ticks []uint64
}

func (s *countingSystem) Update(w *World) {
	s.ticks = append(s.ticks, w.Tick())
}

func TestSchedulerAdvancesClock(t *testing.T) {
	w := NewWorld()
	a := &countingSystem{}
	b := &countingSystem{}
	s := NewScheduler(0.5, a)
	s.Add(b)
	s.Add(nil)

	s.Update(w)
	s.Update(w)

	assert.Equal(t, []uint64{0, 1}, a.ticks)
	assert.Equal(t, []uint64{0, 1}, b.ticks)
	assert.Equal(t, uint64(2), w.Tick())
	assert.InDelta(t, 1.0, w.Time(), 1e-9)
	assert.Len(t, s.Systems(), 2)
}

func TestEntityString(t *testing.T) {
	w := NewWorld()
	a := CreateEntity(w)
	assert.Equal(t, "none", Entity(0).String())
	require.True(t, DestroyEntity(w, a))
	b := CreateEntity(w)
	assert.Equal(t, a.id(), b.id())
	assert.NotEqual(t, a.String(), b.String())
}

func TestComponentKindString(t *testing.T) {
	assert.Equal(t, "int", component.NewComponentKind[int]().String())
	assert.Equal(t, "invalid", component.ComponentKind[int]{}.String())
}
