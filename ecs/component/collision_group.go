package component

// CollisionGroup bits are used both as fixture layers (what a fixture is)
// and masks (what it reacts to).
type CollisionGroup uint32

const (
	CollisionNone    CollisionGroup = 0
	Opaque           CollisionGroup = 1 << 0
	Impassable       CollisionGroup = 1 << 1
	MidImpassable    CollisionGroup = 1 << 2
	HighImpassable   CollisionGroup = 1 << 3
	LowImpassable    CollisionGroup = 1 << 4
	GhostImpassable  CollisionGroup = 1 << 5
	BulletImpassable CollisionGroup = 1 << 6

	TableLayer = MidImpassable

	// LeapingCollisionGroup is suppressed on hard fixtures for the duration
	// of a leap.
	LeapingCollisionGroup = TableLayer | LowImpassable

	// LeapClearanceMask selects what counts as overlapping when deciding
	// whether a landed leaper is clear.
	LeapClearanceMask = Impassable | MidImpassable | HighImpassable | LowImpassable
)

var collisionGroupNames = map[string]CollisionGroup{
	"none":              CollisionNone,
	"opaque":            Opaque,
	"impassable":        Impassable,
	"mid_impassable":    MidImpassable,
	"high_impassable":   HighImpassable,
	"low_impassable":    LowImpassable,
	"ghost_impassable":  GhostImpassable,
	"bullet_impassable": BulletImpassable,
	"table":             TableLayer,
}

// ParseCollisionGroups ORs together named groups. Unknown names are reported.
func ParseCollisionGroups(names []string) (CollisionGroup, error) {
	var out CollisionGroup
	for _, n := range names {
		g, ok := collisionGroupNames[n]
		if !ok {
			return 0, &UnknownCollisionGroupError{Name: n}
		}
		out |= g
	}
	return out, nil
}

type UnknownCollisionGroupError struct {
	Name string
}

func (e *UnknownCollisionGroupError) Error() string {
	return "component: unknown collision group " + e.Name
}
