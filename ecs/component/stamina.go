package component

// Stamina is a regenerating resource spent by abilities.
type Stamina struct {
	Current        float64
	Max            float64
	RegenPerSecond float64
	// RegenDelay is how long after spending regeneration stays paused.
	RegenDelay float64
	SinceSpent float64
}

var StaminaComponent = NewComponent[Stamina]()
