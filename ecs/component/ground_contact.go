package component

// GroundContact is derived every physics step from hard contacts whose
// normal points up. GroundGrace counts down ticks after leaving the ground.
type GroundContact struct {
	Grounded    bool
	GroundGrace int
}

var GroundContactComponent = NewComponent[GroundContact]()
