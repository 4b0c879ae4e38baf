package navigation

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/waywalker/ecs"
	"github.com/milk9111/waywalker/ecs/component"
	"github.com/milk9111/waywalker/scene"
)

var (
	ErrNotWalker    = errors.New("navigation: entity has no walker")
	ErrInvalidSpeed = errors.New("navigation: speed must be a positive number")
)

const defaultSpeed = 1.0

// Walker lets an entity follow routes. Speed is in world units per second and
// is the only field meant to be persisted.
type Walker struct {
	Speed  float64
	Policy EdgePolicy

	state WalkState
}

var WalkerComponent = component.NewComponent[Walker]()

// NewWalker returns a walker moving at speed, or 1 unit/s when speed is not
// a positive number.
func NewWalker(speed float64) *Walker {
	if !validSpeed(speed) {
		speed = defaultSpeed
	}
	return &Walker{Speed: speed}
}

func (wk *Walker) policy() EdgePolicy {
	if wk.Policy == nil {
		return DefaultPolicy{}
	}
	return wk.Policy
}

// supersede drops the active walk, rejecting its completion.
func (wk *Walker) supersede() {
	if wk.state.done != nil && wk.state.done.reject(ErrWalkSuperseded) {
		logger.Debug("walk superseded", "remaining", len(wk.state.route)-wk.state.progress)
	}
	wk.state = WalkState{}
}

// WalkState is the route being walked and how far along it the walker is.
// The zero value is idle.
type WalkState struct {
	route    []*PathingNode
	progress int
	rotate   bool
	done     *Completion
}

// Idle reports whether no walk is active.
func (s WalkState) Idle() bool {
	return s.progress >= len(s.route)
}

// Progress is the index of the next unreached node.
func (s WalkState) Progress() int {
	return s.progress
}

// Len is the number of nodes in the route.
func (s WalkState) Len() int {
	return len(s.route)
}

// Route returns a copy of the route.
func (s WalkState) Route() []*PathingNode {
	return append([]*PathingNode(nil), s.route...)
}

// Next returns the node being walked toward.
func (s WalkState) Next() (*PathingNode, bool) {
	if s.Idle() {
		return nil, false
	}
	return s.route[s.progress], true
}

// Rotates reports whether the walker turns toward each next waypoint.
func (s WalkState) Rotates() bool {
	return s.rotate
}

// State returns a snapshot of e's walk.
func State(w *ecs.World, e ecs.Entity) (WalkState, bool) {
	wk, ok := ecs.Get(w, e, WalkerComponent.Kind())
	if !ok {
		return WalkState{}, false
	}
	return wk.state, true
}

func validSpeed(speed float64) bool {
	return speed > 0 && !math.IsInf(speed, 1)
}

// SetSpeed changes e's speed from the next frame on.
func SetSpeed(w *ecs.World, e ecs.Entity, speed float64) error {
	if !validSpeed(speed) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	wk, ok := ecs.Get(w, e, WalkerComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotWalker, e)
	}
	wk.Speed = speed
	return nil
}

// Speed returns e's speed.
func Speed(w *ecs.World, e ecs.Entity) (float64, bool) {
	wk, ok := ecs.Get(w, e, WalkerComponent.Kind())
	if !ok {
		return 0, false
	}
	return wk.Speed, true
}

// Teleport places e on target's world position. Any walk in progress is
// dropped and its completion rejected with ErrWalkSuperseded. Entities without
// a Walker can be teleported too.
func Teleport(w *ecs.World, e, target ecs.Entity) error {
	if wk, ok := ecs.Get(w, e, WalkerComponent.Kind()); ok {
		wk.supersede()
	}
	pos, err := scene.WorldPosition(w, target)
	if err != nil {
		return fmt.Errorf("navigation: teleport target: %w", err)
	}
	if err := scene.SetWorldPosition(w, e, pos); err != nil {
		return fmt.Errorf("navigation: teleport: %w", err)
	}
	return nil
}

// MoveOption configures MoveTo.
type MoveOption func(*moveConfig)

type moveConfig struct {
	rotate bool
}

// WithRotation turns the walker toward each next waypoint while walking.
func WithRotation(rotate bool) MoveOption {
	return func(c *moveConfig) { c.rotate = rotate }
}

// MoveTo teleports e to start and walks it to end.
//
// A start that is not a live entity is ignored and nil is returned. When end
// is zero or equal to start the returned completion is already resolved. When
// no route exists it is already rejected with ErrNoRoute and e stays on start.
// Otherwise the completion settles once WalkSystem brings e to end, or is
// rejected with ErrWalkSuperseded if another MoveTo or Teleport comes first.
func MoveTo(w *ecs.World, e, start, end ecs.Entity, opts ...MoveOption) *Completion {
	if !ecs.IsAlive(w, start) {
		logger.Debug("move ignored: no start", "walker", e)
		return nil
	}
	wk, ok := ecs.Get(w, e, WalkerComponent.Kind())
	if !ok {
		return rejectedCompletion(fmt.Errorf("%w: %v", ErrNotWalker, e))
	}
	cfg := moveConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := Teleport(w, e, start); err != nil {
		return rejectedCompletion(err)
	}
	if !end.Valid() || end == start {
		return resolvedCompletion()
	}

	route, err := FindPath(w, start, end, wk.policy())
	if err != nil {
		logger.Debug("move rejected", "walker", e, "from", WaypointName(w, start), "to", WaypointName(w, end), "err", err)
		return rejectedCompletion(err)
	}

	done := newCompletion()
	wk.state = WalkState{route: route, rotate: cfg.rotate, done: done}
	logger.Debug("walk started", "walker", e, "from", WaypointName(w, start), "to", WaypointName(w, end),
		"nodes", len(route), "cost", RouteCost(route))

	if cfg.rotate && len(route) > 1 {
		if pos, err := scene.WorldPosition(w, route[0].Waypoint); err == nil {
			_ = scene.LookAt(w, e, pos)
		}
	}
	return done
}
