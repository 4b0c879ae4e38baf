package navigation

import (
	"fmt"

	"github.com/milk9111/waywalker/ecs"
	"github.com/milk9111/waywalker/scene"
)

const (
	EventWaypointReached  ecs.EventType = "waypoint_reached"
	EventPathingConcluded ecs.EventType = "pathing_concluded"
)

// WalkSystem advances every active Walker once per frame using the world's
// frame delta.
//
// A root walker ends a leg exactly on the waypoint's world position. A
// parented walker is placed through its parent's inverse transform, so its
// world position can differ from the waypoint's in the last bits.
type WalkSystem struct{}

func NewWalkSystem() *WalkSystem {
	return &WalkSystem{}
}

func (s *WalkSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	dt := w.DeltaSeconds()
	ecs.ForEach(w, WalkerComponent.Kind(), func(e ecs.Entity, wk *Walker) {
		if err := step(w, e, wk, dt); err != nil {
			logger.Warn("walk aborted", "walker", e, "err", err)
			if done := wk.state.done; done != nil {
				wk.state = WalkState{}
				done.reject(err)
			}
		}
	})
}

func step(w *ecs.World, e ecs.Entity, wk *Walker, dt float64) error {
	node, ok := wk.state.Next()
	if !ok {
		return nil
	}

	modifier := 1.0
	if node.PreviousConnection != nil {
		modifier = speedModifier(node.PreviousConnection.SpeedModifier)
	}
	delta := wk.Speed * modifier * dt

	target, err := scene.WorldPosition(w, node.Waypoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWaypointLost, err)
	}
	targetScale, err := scene.WorldScale(w, node.Waypoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWaypointLost, err)
	}
	pos, err := scene.WorldPosition(w, e)
	if err != nil {
		return err
	}

	remaining := target.Sub(pos)
	if delta*delta < remaining.LengthSq() {
		if err := scene.Translate(w, e, remaining.Normalize().Mult(delta)); err != nil {
			return err
		}
		scale, err := scene.WorldScale(w, e)
		if err != nil {
			return err
		}
		if scaleDelta := targetScale.Sub(scale); scaleDelta.LengthSq() > 0 {
			return scene.AddScale(w, e, scaleDelta.Normalize().Mult(delta))
		}
		return nil
	}

	if err := scene.SetWorldPosition(w, e, target); err != nil {
		return err
	}
	if err := scene.SetWorldScale(w, e, targetScale); err != nil {
		return err
	}

	done := wk.state.done
	if wk.state.progress+1 == len(wk.state.route) {
		// settled first so reached listeners cannot supersede a finished walk
		wk.state = WalkState{}
		done.resolve()
		notifyReached(w, e, node)
		logger.Debug("walk concluded", "walker", e, "at", WaypointName(w, node.Waypoint))
		notifyConcluded(w, e, node)
		return nil
	}

	notifyReached(w, e, node)
	if wk.state.done != done {
		// a listener started another walk
		return nil
	}
	wk.state.progress++

	if wk.state.rotate {
		next := wk.state.route[wk.state.progress]
		if pos, err := scene.WorldPosition(w, next.Waypoint); err == nil {
			return scene.LookAt(w, e, pos)
		}
	}
	return nil
}

// notifyReached tells both the walker and the waypoint about the arrival.
func notifyReached(w *ecs.World, walker ecs.Entity, node *PathingNode) {
	for _, evt := range []ecs.Event{
		{Type: EventWaypointReached, Target: walker, Related: node.Waypoint, Data: node},
		{Type: EventWaypointReached, Target: node.Waypoint, Related: walker, Data: node},
	} {
		w.Events().Push(evt)
		w.Dispatcher().Dispatch(evt)
	}
}

func notifyConcluded(w *ecs.World, walker ecs.Entity, node *PathingNode) {
	evt := ecs.Event{Type: EventPathingConcluded, Target: walker, Related: node.Waypoint, Data: node}
	w.Events().Push(evt)
	w.Dispatcher().Dispatch(evt)
}
