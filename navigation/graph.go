package navigation

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/waywalker/ecs"
	"github.com/milk9111/waywalker/ecs/component"
)

// ConnectOption configures a connection created by Connect.
type ConnectOption func(*component.Connection)

// WithCost sets the traversal cost.
func WithCost(cost float64) ConnectOption {
	return func(c *component.Connection) { c.Cost = cost }
}

// WithSpeedModifier scales the walker's speed along the connection. Values
// that are not positive, including NaN, leave the modifier at 1.
func WithSpeedModifier(modifier float64) ConnectOption {
	return func(c *component.Connection) { c.SpeedModifier = modifier }
}

// WithTag labels the connection, e.g. with a terrain type.
func WithTag(tag string) ConnectOption {
	return func(c *component.Connection) { c.Tag = tag }
}

// NewWaypoint creates an active waypoint entity at pos with unit scale.
func NewWaypoint(w *ecs.World, name string, pos cp.Vector) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), component.NewTransform(pos.X, pos.Y)); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.WaypointComponent.Kind(), &component.Waypoint{Name: name, Active: true}); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	return e, nil
}

// Connect appends a directed connection from -> to. The default cost is 0
// and the default speed modifier 1; a modifier that is not positive falls
// back to 1, the same as in graph specs.
func Connect(w *ecs.World, from, to ecs.Entity, opts ...ConnectOption) (*component.Connection, error) {
	wp, ok := ecs.Get(w, from, component.WaypointComponent.Kind())
	if !ok {
		return nil, fmt.Errorf("%w: connect from %v", ErrNotWaypoint, from)
	}
	if !ecs.Has(w, to, component.WaypointComponent.Kind()) {
		return nil, fmt.Errorf("%w: connect to %v", ErrNotWaypoint, to)
	}
	conn := &component.Connection{
		Start:         uint64(from),
		End:           uint64(to),
		SpeedModifier: 1,
	}
	for _, opt := range opts {
		opt(conn)
	}
	conn.SpeedModifier = speedModifier(conn.SpeedModifier)
	wp.Connections = append(wp.Connections, conn)
	return conn, nil
}

// speedModifier keeps a walker moving toward its waypoint: zero, negative
// and NaN modifiers would stall it or push it away.
func speedModifier(m float64) float64 {
	if !(m > 0) {
		return 1
	}
	return m
}

// ConnectBoth creates a connection in each direction with the same options.
func ConnectBoth(w *ecs.World, a, b ecs.Entity, opts ...ConnectOption) (*component.Connection, *component.Connection, error) {
	ab, err := Connect(w, a, b, opts...)
	if err != nil {
		return nil, nil, err
	}
	ba, err := Connect(w, b, a, opts...)
	if err != nil {
		Disconnect(w, a, b)
		return nil, nil, err
	}
	return ab, ba, nil
}

// Disconnect removes every connection from -> to and reports how many went.
func Disconnect(w *ecs.World, from, to ecs.Entity) int {
	wp, ok := ecs.Get(w, from, component.WaypointComponent.Kind())
	if !ok {
		return 0
	}
	kept := wp.Connections[:0]
	removed := 0
	for _, c := range wp.Connections {
		if ecs.Entity(c.End) == to {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(wp.Connections); i++ {
		wp.Connections[i] = nil
	}
	wp.Connections = kept
	return removed
}

// SetActive toggles a waypoint. Walks already in progress are not affected;
// the flag only matters to the next FindPath.
func SetActive(w *ecs.World, e ecs.Entity, active bool) error {
	wp, ok := ecs.Get(w, e, component.WaypointComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotWaypoint, e)
	}
	wp.Active = active
	return nil
}

// WaypointActive reports whether e is a live, active waypoint.
func WaypointActive(w *ecs.World, e ecs.Entity) bool {
	wp, ok := ecs.Get(w, e, component.WaypointComponent.Kind())
	return ok && wp.Active
}

// ConnectionActive reports whether both endpoints of c are active.
func ConnectionActive(w *ecs.World, c *component.Connection) bool {
	if c == nil {
		return false
	}
	return WaypointActive(w, ecs.Entity(c.Start)) && WaypointActive(w, ecs.Entity(c.End))
}

// WaypointName returns the waypoint's name, or the entity id when unnamed.
func WaypointName(w *ecs.World, e ecs.Entity) string {
	if wp, ok := ecs.Get(w, e, component.WaypointComponent.Kind()); ok && wp.Name != "" {
		return wp.Name
	}
	return e.String()
}
