package navigation

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/waywalker/ecs"
	"github.com/milk9111/waywalker/ecs/component"
)

var (
	ErrNoRoute     = errors.New("navigation: no route")
	ErrNotWaypoint = errors.New("navigation: entity is not a waypoint")
)

// PathingNode is search scratch data: a waypoint, its best known distance
// from the search origin and the connection that produced that distance.
type PathingNode struct {
	Waypoint           ecs.Entity
	Distance           float64
	Previous           *PathingNode
	PreviousConnection *component.Connection

	order        int
	indexInQueue int
	processed    bool
}

// FindPath returns the cheapest route from start to end, excluding start and
// including end. Only connections whose both endpoints are active take part;
// policy (DefaultPolicy when nil) filters and prices them. Costs returned by
// the policy below zero count as zero. start == end yields an empty route.
func FindPath(w *ecs.World, start, end ecs.Entity, policy EdgePolicy) ([]*PathingNode, error) {
	if !ecs.Has(w, start, component.WaypointComponent.Kind()) {
		return nil, fmt.Errorf("%w: start %v", ErrNotWaypoint, start)
	}
	if start == end {
		return nil, nil
	}
	if policy == nil {
		policy = DefaultPolicy{}
	}

	nodes := reachable(w, start)
	target, ok := nodes[end]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not reachable from %s", ErrNoRoute, WaypointName(w, end), WaypointName(w, start))
	}

	origin := nodes[start]
	origin.Distance = 0
	open := nodeQueue{origin}
	heap.Init(&open)

	for open.Len() > 0 {
		current := heap.Pop(&open).(*PathingNode)
		current.processed = true
		if current == target {
			return reconstructRoute(target), nil
		}

		wp, ok := ecs.Get(w, current.Waypoint, component.WaypointComponent.Kind())
		if !ok {
			continue
		}
		for _, conn := range wp.Connections {
			if conn == nil {
				continue
			}
			next, ok := nodes[ecs.Entity(conn.End)]
			if !ok || next.processed || !policy.Usable(conn) {
				continue
			}
			cost := policy.Cost(conn)
			if cost < 0 {
				cost = 0
			}
			distance := current.Distance + cost
			if !(distance < next.Distance) {
				continue
			}
			next.Distance = distance
			next.Previous = current
			next.PreviousConnection = conn
			if next.indexInQueue >= 0 {
				heap.Fix(&open, next.indexInQueue)
			} else {
				heap.Push(&open, next)
			}
		}
	}

	return nil, fmt.Errorf("%w: %s cannot be reached from %s with the current edge policy", ErrNoRoute, WaypointName(w, end), WaypointName(w, start))
}

// reachable flood-fills from start over connections whose both endpoints are
// active, creating one node per visited waypoint in discovery order.
func reachable(w *ecs.World, start ecs.Entity) map[ecs.Entity]*PathingNode {
	nodes := map[ecs.Entity]*PathingNode{
		start: {Waypoint: start, Distance: math.Inf(1), indexInQueue: -1},
	}
	queue := []ecs.Entity{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		wp, ok := ecs.Get(w, current, component.WaypointComponent.Kind())
		if !ok {
			continue
		}
		for _, conn := range wp.Connections {
			if !ConnectionActive(w, conn) {
				continue
			}
			end := ecs.Entity(conn.End)
			if _, seen := nodes[end]; seen {
				continue
			}
			nodes[end] = &PathingNode{
				Waypoint:     end,
				Distance:     math.Inf(1),
				order:        len(nodes),
				indexInQueue: -1,
			}
			queue = append(queue, end)
		}
	}
	return nodes
}

func reconstructRoute(end *PathingNode) []*PathingNode {
	route := make([]*PathingNode, 0, 8)
	for node := end; node != nil && node.Previous != nil; node = node.Previous {
		route = append(route, node)
	}
	// reverse route
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

// RouteCost is the total cost of a route returned by FindPath.
func RouteCost(route []*PathingNode) float64 {
	if len(route) == 0 {
		return 0
	}
	return route[len(route)-1].Distance
}

// RouteWaypoints lists the waypoints of a route in walking order.
func RouteWaypoints(route []*PathingNode) []ecs.Entity {
	out := make([]ecs.Entity, 0, len(route))
	for _, node := range route {
		out = append(out, node.Waypoint)
	}
	return out
}
