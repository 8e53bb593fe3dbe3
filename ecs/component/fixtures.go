package component

import "github.com/jakecoffman/cp"

// FixtureHandle identifies one concrete fixture instance. A fixture removed
// and recreated under the same name gets a new handle.
type FixtureHandle uint64

type FixtureShapeKind string

const (
	FixtureCircle FixtureShapeKind = "circle"
	FixtureBox    FixtureShapeKind = "box"
)

// FixtureShape is a collider outline in body-local pixels.
type FixtureShape struct {
	Kind    FixtureShapeKind
	Radius  float64
	Width   float64
	Height  float64
	OffsetX float64
	OffsetY float64
}

// FixtureDef describes a named collision shape. Hard fixtures take part in
// solid collision; the rest only report overlap.
type FixtureDef struct {
	Name     string
	Shape    FixtureShape
	Layer    CollisionGroup
	Mask     CollisionGroup
	Hard     bool
	Friction float64
}

// Fixture is a live fixture attached to a body. Mask is the live mask and
// may differ from the definition while a leap is in flight.
type Fixture struct {
	Name     string
	Owner    uint64
	Handle   FixtureHandle
	Layer    CollisionGroup
	Mask     CollisionGroup
	Hard     bool
	Friction float64
	Shape    *cp.Shape
}

// Interacts applies the layer/mask rule: either side's layer must intersect
// the other side's mask.
func (f *Fixture) Interacts(other *Fixture) bool {
	if f == nil || other == nil {
		return false
	}
	return f.Layer&other.Mask != 0 || other.Layer&f.Mask != 0
}

// Fixtures is the fixture container of a body. Defs are materialized into
// Live by the physics system when the body is created.
type Fixtures struct {
	Defs []FixtureDef
	Live map[string]*Fixture
}

var FixturesComponent = NewComponent[Fixtures]()
