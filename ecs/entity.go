package ecs

import "strconv"

// Entity is a handle to a world slot: the low 32 bits hold the slot id and
// the high 32 bits the slot's generation at creation. Components store these
// handles as uint64 (see Connection.Start/End) and convert back with
// Entity(v). Destroying an entity bumps the generation, so handles kept by a
// route or a listener stop resolving instead of aliasing the slot's next
// occupant. The zero Entity never refers to anything.
type Entity uint64

type (
	entityID   uint32
	generation uint32
)

const idBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<idBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(e & (1<<idBits - 1))
}

func (e Entity) generation() generation {
	return generation(e >> idBits)
}

// String formats the handle as "<slot>v<generation>", which is what waypoint
// names fall back to in logs.
func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.id()), 10) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

// Valid reports whether e names a slot at all; use IsAlive for liveness.
func (e Entity) Valid() bool {
	return e.id() != 0
}
