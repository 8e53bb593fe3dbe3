package prefabs

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type PhysicsBodyComponentSpec struct {
	Mass       float64 `yaml:"mass"`
	Static     bool    `yaml:"static"`
	Kinematic  bool    `yaml:"kinematic"`
	Elasticity float64 `yaml:"elasticity"`
}

type FixtureShapeSpec struct {
	Circle  float64 `yaml:"circle"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
}

type FixtureComponentSpec struct {
	Name     string           `yaml:"name"`
	Shape    FixtureShapeSpec `yaml:"shape"`
	Layer    []string         `yaml:"layer"`
	Mask     []string         `yaml:"mask"`
	Hard     *bool            `yaml:"hard"`
	Friction float64          `yaml:"friction"`
}

// LeapComponentSpec uses pointers so omitted fields fall back to the leap
// defaults rather than zero.
type LeapComponentSpec struct {
	Duration         *float64 `yaml:"duration"`
	Speed            *float64 `yaml:"speed"`
	StaminaCost      *int     `yaml:"stamina_cost"`
	RequiresGravity  *bool    `yaml:"requires_gravity"`
	RequiresGrounded *bool    `yaml:"requires_grounded"`
	Action           string   `yaml:"action"`
}

type StaminaComponentSpec struct {
	Max            float64  `yaml:"max"`
	Current        *float64 `yaml:"current"`
	RegenPerSecond float64  `yaml:"regen_per_second"`
	RegenDelay     float64  `yaml:"regen_delay"`
}

type GravityScaleComponentSpec struct {
	Scale float64 `yaml:"scale"`
}

type IdentityComponentSpec struct {
	Name string `yaml:"name"`
}
