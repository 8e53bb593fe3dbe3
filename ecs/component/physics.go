package component

import "github.com/jakecoffman/cp"

// BodyStatus mirrors whether a body is treated as resting on a surface or
// airborne. Airborne bodies have their fixture friction zeroed.
type BodyStatus uint8

const (
	BodyOnGround BodyStatus = iota
	BodyInAir
)

func (s BodyStatus) String() string {
	switch s {
	case BodyInAir:
		return "in_air"
	default:
		return "on_ground"
	}
}

// PhysicsBody stores Chipmunk2D runtime data and body configuration. The
// collision shapes themselves live in Fixtures.
type PhysicsBody struct {
	Body       *cp.Body
	Mass       float64
	Static     bool
	Kinematic  bool
	Elasticity float64
	Status     BodyStatus
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
