package system

import (
	"sort"

	"github.com/milk9111/leap/ecs/component"
)

// contactKey orders a fixture pair by handle so either side maps to the
// same entry.
type contactKey struct {
	a component.FixtureHandle
	b component.FixtureHandle
}

func makeContactKey(a, b *component.Fixture) contactKey {
	if a.Handle > b.Handle {
		a, b = b, a
	}
	return contactKey{a: a.Handle, b: b.Handle}
}

// contactTracker records fixture pairs currently in contact so begin and end
// are each reported once.
type contactTracker struct {
	active    map[contactKey]struct{}
	byFixture map[component.FixtureHandle]map[component.FixtureHandle]*component.Fixture
}

func newContactTracker() *contactTracker {
	return &contactTracker{
		active:    make(map[contactKey]struct{}),
		byFixture: make(map[component.FixtureHandle]map[component.FixtureHandle]*component.Fixture),
	}
}

// begin registers the pair and reports whether it was not already active.
func (ct *contactTracker) begin(a, b *component.Fixture) bool {
	key := makeContactKey(a, b)
	if _, ok := ct.active[key]; ok {
		return false
	}
	ct.active[key] = struct{}{}
	ct.link(a, b)
	ct.link(b, a)
	return true
}

// end removes the pair and reports whether it was active.
func (ct *contactTracker) end(a, b *component.Fixture) bool {
	key := makeContactKey(a, b)
	if _, ok := ct.active[key]; !ok {
		return false
	}
	delete(ct.active, key)
	ct.unlink(a.Handle, b.Handle)
	ct.unlink(b.Handle, a.Handle)
	return true
}

func (ct *contactTracker) link(from, to *component.Fixture) {
	set := ct.byFixture[from.Handle]
	if set == nil {
		set = make(map[component.FixtureHandle]*component.Fixture)
		ct.byFixture[from.Handle] = set
	}
	set[to.Handle] = to
}

func (ct *contactTracker) unlink(from, to component.FixtureHandle) {
	set := ct.byFixture[from]
	if set == nil {
		return
	}
	delete(set, to)
	if len(set) == 0 {
		delete(ct.byFixture, from)
	}
}

// others returns the fixtures in contact with f ordered by handle.
func (ct *contactTracker) others(f *component.Fixture) []*component.Fixture {
	set := ct.byFixture[f.Handle]
	out := make([]*component.Fixture, 0, len(set))
	for _, other := range set {
		out = append(out, other)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// forget drops every pair involving f and returns the fixtures it was still
// touching.
func (ct *contactTracker) forget(f *component.Fixture) []*component.Fixture {
	others := ct.others(f)
	for _, other := range others {
		ct.end(f, other)
	}
	return others
}

func (ct *contactTracker) clear() {
	ct.active = make(map[contactKey]struct{})
	ct.byFixture = make(map[component.FixtureHandle]map[component.FixtureHandle]*component.Fixture)
}
