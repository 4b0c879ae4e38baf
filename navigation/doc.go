// Package navigation moves entities along routes through a waypoint graph.
//
// Waypoints are entities carrying a component.Waypoint and a Transform;
// connections are directed edges stored on their start waypoint. It exposes:
//
//   - FindPath: a reachability-limited shortest-path search over the graph.
//   - MoveTo / Teleport: the entry points that start or replace a walk.
//   - WalkSystem: the per-frame system that steps every Walker along its route.
//
// Edge usability and cost are pluggable through EdgePolicy without touching
// the search itself. Everything runs on the goroutine that steps the world.
package navigation
