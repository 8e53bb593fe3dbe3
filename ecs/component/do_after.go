package component

// DoAfter is one pending timed callback. Event is published at Target once
// Elapsed reaches Delay.
type DoAfter struct {
	ID        uint64
	Target    uint64
	Delay     float64
	Elapsed   float64
	EventType string
	Data      any
}

// DoAfters holds the pending callbacks started by a user entity.
type DoAfters struct {
	Pending []DoAfter
}

var DoAftersComponent = NewComponent[DoAfters]()
