package component

// Climbable marks an obstacle a leap is meant to clear, such as a table.
type Climbable struct{}

var ClimbableComponent = NewComponent[Climbable]()

// Identity is the display name used in player-facing messages.
type Identity struct {
	Name string
}

var IdentityComponent = NewComponent[Identity]()

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()
