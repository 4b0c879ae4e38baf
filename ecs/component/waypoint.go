package component

// Waypoint marks an entity as a navigable node. Its location and scale come
// from the entity's Transform.
type Waypoint struct {
	Name        string
	Active      bool
	Connections []*Connection
}

// Connection is a directed edge between two waypoint entities. Cost below
// zero is read as zero by the default edge policy; SpeedModifier multiplies
// the walker's speed while it travels toward End.
type Connection struct {
	Start         uint64 // ecs.Entity
	End           uint64 // ecs.Entity
	Cost          float64
	SpeedModifier float64
	Tag           string
}

var WaypointComponent = NewComponent[Waypoint]()
