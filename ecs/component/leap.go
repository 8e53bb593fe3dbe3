package component

import "github.com/google/uuid"

const (
	LeapingFixtureName = "Leaping"
	DefaultLeapAction  = "LeapForward"
)

// LeapProfile is the per-prefab leap configuration.
type LeapProfile struct {
	Duration         float64
	Speed            float64
	StaminaCost      int
	RequiresGravity  bool
	RequiresGrounded bool
	Action           string
}

// DefaultLeapProfile returns the profile used when a prefab omits fields.
func DefaultLeapProfile() LeapProfile {
	return LeapProfile{
		Duration:         1,
		Speed:            5,
		StaminaCost:      20,
		RequiresGravity:  false,
		RequiresGrounded: true,
		Action:           DefaultLeapAction,
	}
}

// Leap is the runtime leap state. Only LeapSystem writes it.
type Leap struct {
	Profile LeapProfile

	Jumping        bool
	CheckColliding bool

	// DisabledFixtureMasks maps fixture name to the mask bits removed from it
	// when the leap began.
	DisabledFixtureMasks map[string]CollisionGroup

	// StoredAction is the instance id of the action granted for this leap.
	StoredAction uuid.UUID
	CompleteTime float64
}

var LeapComponent = NewComponent[Leap]()
