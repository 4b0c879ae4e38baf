package component

import "github.com/jakecoffman/cp"

// Transform is an entity's placement relative to its parent (or the world
// when Parent is 0). Scale is per-axis; a zero Scale collapses the entity.
type Transform struct {
	Position cp.Vector
	Scale    cp.Vector
	Rotation float64
	Parent   uint64 // ecs.Entity of the parent transform, 0 for roots
}

// NewTransform returns a root transform at (x, y) with unit scale.
func NewTransform(x, y float64) *Transform {
	return &Transform{
		Position: cp.Vector{X: x, Y: y},
		Scale:    cp.Vector{X: 1, Y: 1},
	}
}

var TransformComponent = NewComponent[Transform]()
