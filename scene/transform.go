// Package scene reads and writes entity transforms in world space.
//
// A Transform is local to its parent. World values compose up the chain:
//
//	world.pos   = parent.pos + rotate(parent.scale ⊙ local.pos, parent.rot)
//	world.scale = parent.scale ⊙ local.scale
//	world.rot   = parent.rot + local.rot
//
// Root entities (Parent == 0) store world values directly, so writes to them
// are exact.
package scene

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/waywalker/ecs"
	"github.com/milk9111/waywalker/ecs/component"
)

var (
	ErrNoTransform = errors.New("scene: entity has no transform")
	ErrParentCycle = errors.New("scene: transform parent cycle")
	ErrZeroScale   = errors.New("scene: parent scale is zero")
)

const maxDepth = 64

type worldTransform struct {
	pos   cp.Vector
	scale cp.Vector
	rot   float64
}

var identity = worldTransform{scale: cp.Vector{X: 1, Y: 1}}

// Parent returns the live parent of e, if any.
func Parent(w *ecs.World, e ecs.Entity) (ecs.Entity, bool) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t.Parent == 0 {
		return 0, false
	}
	p := ecs.Entity(t.Parent)
	return p, ecs.IsAlive(w, p)
}

// SetParent reparents e without changing its local values.
func SetParent(w *ecs.World, e, parent ecs.Entity) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoTransform, e)
	}
	for cur, depth := parent, 0; cur.Valid(); depth++ {
		if cur == e || depth > maxDepth {
			return ErrParentCycle
		}
		next, ok := Parent(w, cur)
		if !ok {
			break
		}
		cur = next
	}
	t.Parent = uint64(parent)
	return nil
}

func resolve(w *ecs.World, e ecs.Entity) (worldTransform, error) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return worldTransform{}, fmt.Errorf("%w: %v", ErrNoTransform, e)
	}
	chain := []*component.Transform{t}
	for cur := t; cur.Parent != 0; {
		if len(chain) > maxDepth {
			return worldTransform{}, ErrParentCycle
		}
		p, ok := ecs.Get(w, ecs.Entity(cur.Parent), component.TransformComponent.Kind())
		if !ok {
			break
		}
		chain = append(chain, p)
		cur = p
	}

	out := identity
	for i := len(chain) - 1; i >= 0; i-- {
		out = out.compose(chain[i])
	}
	return out, nil
}

// parentWorld is the world transform that e's local values are relative to.
func parentWorld(w *ecs.World, t *component.Transform) (worldTransform, error) {
	if t.Parent == 0 || !ecs.IsAlive(w, ecs.Entity(t.Parent)) {
		return identity, nil
	}
	return resolve(w, ecs.Entity(t.Parent))
}

func (p worldTransform) compose(local *component.Transform) worldTransform {
	if p == identity {
		return worldTransform{pos: local.Position, scale: local.Scale, rot: local.Rotation}
	}
	offset := mulElem(p.scale, local.Position)
	if p.rot != 0 {
		offset = offset.Rotate(cp.ForAngle(p.rot))
	}
	return worldTransform{
		pos:   p.pos.Add(offset),
		scale: mulElem(p.scale, local.Scale),
		rot:   p.rot + local.Rotation,
	}
}

// toLocal converts a world-space offset into the parent's local space.
func (p worldTransform) toLocal(offset cp.Vector) (cp.Vector, error) {
	if p == identity {
		return offset, nil
	}
	if p.scale.X == 0 || p.scale.Y == 0 {
		return cp.Vector{}, ErrZeroScale
	}
	if p.rot != 0 {
		offset = offset.Unrotate(cp.ForAngle(p.rot))
	}
	return cp.Vector{X: offset.X / p.scale.X, Y: offset.Y / p.scale.Y}, nil
}

func mulElem(a, b cp.Vector) cp.Vector {
	return cp.Vector{X: a.X * b.X, Y: a.Y * b.Y}
}

// WorldPosition returns e's position in world space.
func WorldPosition(w *ecs.World, e ecs.Entity) (cp.Vector, error) {
	wt, err := resolve(w, e)
	return wt.pos, err
}

// WorldScale returns e's per-axis scale in world space.
func WorldScale(w *ecs.World, e ecs.Entity) (cp.Vector, error) {
	wt, err := resolve(w, e)
	return wt.scale, err
}

// WorldRotation returns e's rotation in world space, in radians.
func WorldRotation(w *ecs.World, e ecs.Entity) (float64, error) {
	wt, err := resolve(w, e)
	return wt.rot, err
}

// Translate moves e by a world-space offset.
func Translate(w *ecs.World, e ecs.Entity, offset cp.Vector) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoTransform, e)
	}
	pw, err := parentWorld(w, t)
	if err != nil {
		return err
	}
	local, err := pw.toLocal(offset)
	if err != nil {
		return err
	}
	t.Position = t.Position.Add(local)
	return nil
}

// SetWorldPosition places e at pos in world space.
func SetWorldPosition(w *ecs.World, e ecs.Entity, pos cp.Vector) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoTransform, e)
	}
	pw, err := parentWorld(w, t)
	if err != nil {
		return err
	}
	if pw == identity {
		t.Position = pos
		return nil
	}
	local, err := pw.toLocal(pos.Sub(pw.pos))
	if err != nil {
		return err
	}
	t.Position = local
	return nil
}

// SetWorldScale sets e's scale so that its world scale equals scale.
func SetWorldScale(w *ecs.World, e ecs.Entity, scale cp.Vector) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoTransform, e)
	}
	pw, err := parentWorld(w, t)
	if err != nil {
		return err
	}
	if pw == identity {
		t.Scale = scale
		return nil
	}
	if pw.scale.X == 0 || pw.scale.Y == 0 {
		return ErrZeroScale
	}
	t.Scale = cp.Vector{X: scale.X / pw.scale.X, Y: scale.Y / pw.scale.Y}
	return nil
}

// AddScale adds delta to e's local scale.
func AddScale(w *ecs.World, e ecs.Entity, delta cp.Vector) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoTransform, e)
	}
	t.Scale = t.Scale.Add(delta)
	return nil
}

// LookAt rotates e so its +X axis points at target. Nothing happens when e
// already sits on target.
func LookAt(w *ecs.World, e ecs.Entity, target cp.Vector) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoTransform, e)
	}
	wt, err := resolve(w, e)
	if err != nil {
		return err
	}
	dir := target.Sub(wt.pos)
	if dir.LengthSq() == 0 {
		return nil
	}
	pw, err := parentWorld(w, t)
	if err != nil {
		return err
	}
	t.Rotation = dir.ToAngle() - pw.rot
	return nil
}
