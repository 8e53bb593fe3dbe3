package common

const (
	// TicksPerSecond is the fixed simulation rate.
	TicksPerSecond = 60
	// FixedDelta is the simulated time covered by one tick, in seconds.
	FixedDelta = 1.0 / TicksPerSecond

	// PixelsPerUnit converts world units (metres) into physics space pixels.
	PixelsPerUnit = 32.0

	// Gravity is in pixels per second squared, screen-down positive.
	Gravity = 9.8 * PixelsPerUnit
)

// Ticks converts a duration in seconds to a whole number of ticks, rounding up.
func Ticks(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	n := int(seconds * TicksPerSecond)
	if float64(n)/TicksPerSecond < seconds-1e-9 {
		n++
	}
	return n
}
