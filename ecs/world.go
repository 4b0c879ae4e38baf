package ecs

import (
	"math"

	"github.com/milk9111/waywalker/ecs/component"
)

// World owns entities, components, and system order.
type World struct {
	entities   entityStore
	components map[component.ComponentID]*SparseSet
	scheduler  Scheduler
	events     EventQueue
	dispatcher Dispatcher

	frame        uint64
	deltaSeconds float64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	w := &World{components: make(map[component.ComponentID]*SparseSet)}
	w.dispatcher.SetParentResolver(transformParent(w))
	return w
}

func (w *World) storage(id component.ComponentID, create bool) *SparseSet {
	if w.components == nil {
		w.components = make(map[component.ComponentID]*SparseSet)
	}
	set, ok := w.components[id]
	if !ok && create {
		set = &SparseSet{}
		w.components[id] = set
	}
	return set
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil {
		return
	}
	w.scheduler.Add(s)
}

// Update runs all systems once without advancing the clock.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.scheduler.Update(w)
	w.events.flush()
}

// Step records one frame tick of elapsedMillis and runs the systems. Negative
// or non-finite deltas are treated as zero.
func (w *World) Step(elapsedMillis float64) {
	if w == nil {
		return
	}
	if elapsedMillis < 0 || math.IsNaN(elapsedMillis) || math.IsInf(elapsedMillis, 0) {
		elapsedMillis = 0
	}
	w.frame++
	w.deltaSeconds = elapsedMillis / 1000
	w.Update()
}

// DeltaSeconds is the elapsed time of the frame being processed.
func (w *World) DeltaSeconds() float64 {
	if w == nil {
		return 0
	}
	return w.deltaSeconds
}

// Frame is the number of Step calls so far.
func (w *World) Frame() uint64 {
	if w == nil {
		return 0
	}
	return w.frame
}

// Events returns the world event queue. Events not drained by a system during
// a frame are dropped at the end of that frame.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Dispatcher returns the listener registry used for immediate notifications.
func (w *World) Dispatcher() *Dispatcher {
	if w == nil {
		return nil
	}
	if w.dispatcher.parentOf == nil {
		w.dispatcher.SetParentResolver(transformParent(w))
	}
	return &w.dispatcher
}
