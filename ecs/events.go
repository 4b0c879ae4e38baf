package ecs

import "github.com/milk9111/waywalker/ecs/component"

// EventType names a kind of notification.
type EventType string

// Event is a generic ECS event payload. Target is the entity the event is
// about; Related optionally points at the other party (a walker reaching a
// waypoint carries the waypoint as Related, and vice versa).
type Event struct {
	Type    EventType
	Target  Entity
	Related Entity
	Data    any

	current Entity
	stopped bool
}

// CurrentTarget is the entity whose listeners are running; it differs from
// Target while the event bubbles up through parents.
func (e *Event) CurrentTarget() Entity {
	return e.current
}

// StopPropagation prevents delivery to ancestors and global listeners.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}

// Listener receives dispatched events.
type Listener interface {
	OnEvent(evt *Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(evt *Event)

func (f ListenerFunc) OnEvent(evt *Event) { f(evt) }

// Subscription identifies a registered listener for Unsubscribe.
type Subscription uint64

type subscriber struct {
	id        Subscription
	eventType EventType
	listener  Listener
}

// Dispatcher delivers events synchronously: first to listeners of the target,
// then to listeners of each ancestor, then to global listeners.
type Dispatcher struct {
	next      Subscription
	byTarget  map[Entity][]subscriber
	global    []subscriber
	parentOf  func(Entity) (Entity, bool)
	maxBubble int
}

// SetParentResolver replaces the function used to walk up the hierarchy.
func (d *Dispatcher) SetParentResolver(fn func(Entity) (Entity, bool)) {
	d.parentOf = fn
}

// Subscribe registers l for events of type t targeted at (or bubbling
// through) target.
func (d *Dispatcher) Subscribe(target Entity, t EventType, l Listener) Subscription {
	if l == nil {
		return 0
	}
	if d.byTarget == nil {
		d.byTarget = make(map[Entity][]subscriber)
	}
	d.next++
	d.byTarget[target] = append(d.byTarget[target], subscriber{id: d.next, eventType: t, listener: l})
	return d.next
}

// SubscribeAll registers l for every event of type t regardless of target.
func (d *Dispatcher) SubscribeAll(t EventType, l Listener) Subscription {
	if l == nil {
		return 0
	}
	d.next++
	d.global = append(d.global, subscriber{id: d.next, eventType: t, listener: l})
	return d.next
}

// Unsubscribe removes a listener registered with Subscribe or SubscribeAll.
func (d *Dispatcher) Unsubscribe(id Subscription) bool {
	if id == 0 {
		return false
	}
	if i := indexOf(d.global, id); i >= 0 {
		d.global = append(d.global[:i], d.global[i+1:]...)
		return true
	}
	for target, subs := range d.byTarget {
		if i := indexOf(subs, id); i >= 0 {
			subs = append(subs[:i], subs[i+1:]...)
			if len(subs) == 0 {
				delete(d.byTarget, target)
			} else {
				d.byTarget[target] = subs
			}
			return true
		}
	}
	return false
}

// Forget drops every listener of target, used when the entity is destroyed.
func (d *Dispatcher) Forget(target Entity) {
	delete(d.byTarget, target)
}

// Dispatch delivers evt and returns it so callers can inspect propagation.
func (d *Dispatcher) Dispatch(evt Event) Event {
	limit := d.maxBubble
	if limit <= 0 {
		limit = 64
	}
	current := evt.Target
	for depth := 0; current.Valid() && depth < limit; depth++ {
		evt.current = current
		deliver(d.byTarget[current], &evt)
		if evt.stopped || d.parentOf == nil {
			break
		}
		parent, ok := d.parentOf(current)
		if !ok || parent == current {
			break
		}
		current = parent
	}
	if !evt.stopped {
		evt.current = 0
		deliver(d.global, &evt)
	}
	return evt
}

func deliver(subs []subscriber, evt *Event) {
	if len(subs) == 0 {
		return
	}
	// listeners may subscribe while being notified
	snapshot := append([]subscriber(nil), subs...)
	for _, s := range snapshot {
		if s.eventType != evt.Type {
			continue
		}
		s.listener.OnEvent(evt)
		if evt.stopped {
			return
		}
	}
}

func indexOf(subs []subscriber, id Subscription) int {
	for i, s := range subs {
		if s.id == id {
			return i
		}
	}
	return -1
}

// transformParent resolves the hierarchy through Transform.Parent.
func transformParent(w *World) func(Entity) (Entity, bool) {
	return func(e Entity) (Entity, bool) {
		t, ok := Get(w, e, component.TransformComponent.Kind())
		if !ok || t.Parent == 0 {
			return 0, false
		}
		parent := Entity(t.Parent)
		return parent, IsAlive(w, parent)
	}
}
