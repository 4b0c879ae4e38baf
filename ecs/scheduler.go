package ecs

// System runs once per World.Update or World.Step.
type System interface {
	Update(w *World)
}

// SystemFunc lets a plain function run as a system, which is how tests read
// the frame's queued events after WalkSystem.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) { f(w) }

// Scheduler keeps systems in the order they were added. A system that pushes
// events is visible to every system added after it within the same frame.
type Scheduler struct {
	systems []System
}

func (s *Scheduler) Add(system System) {
	if system != nil {
		s.systems = append(s.systems, system)
	}
}

func (s *Scheduler) Update(w *World) {
	for _, system := range s.systems {
		system.Update(w)
	}
}
