package component

// Transform is the world-space pose of an entity, in physics space pixels.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
