package navigation

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrWalkSuperseded = errors.New("navigation: walk superseded")
	ErrWaypointLost   = errors.New("navigation: waypoint lost during walk")
)

// Completion is the result of one walk request. It settles exactly once:
// resolved when the final waypoint is reached, rejected otherwise.
type Completion struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

func resolvedCompletion() *Completion {
	c := newCompletion()
	c.resolve()
	return c
}

func rejectedCompletion(err error) *Completion {
	c := newCompletion()
	c.reject(err)
	return c
}

func (c *Completion) resolve() bool {
	return c.settle(nil)
}

func (c *Completion) reject(err error) bool {
	if err == nil {
		err = ErrNoRoute
	}
	return c.settle(err)
}

func (c *Completion) settle(err error) bool {
	if c == nil {
		return false
	}
	settled := false
	c.once.Do(func() {
		c.err = err
		close(c.done)
		settled = true
	})
	return settled
}

// Done is closed once the walk settles.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Settled reports whether the walk has finished either way.
func (c *Completion) Settled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Err is nil while pending and after success, the rejection reason otherwise.
func (c *Completion) Err() error {
	if !c.Settled() {
		return nil
	}
	return c.err
}

// Wait blocks until the walk settles or ctx ends. The world must keep being
// stepped from another goroutine for a pending walk to finish.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
