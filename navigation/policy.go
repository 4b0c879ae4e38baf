package navigation

import (
	"math"

	"github.com/milk9111/waywalker/ecs/component"
)

// EdgePolicy decides which connections a walker may use and what they cost.
// Embed DefaultPolicy to override only one of the two methods.
type EdgePolicy interface {
	Usable(c *component.Connection) bool
	Cost(c *component.Connection) float64
}

// DefaultPolicy accepts every connection and charges max(cost, 0).
type DefaultPolicy struct{}

func (DefaultPolicy) Usable(*component.Connection) bool { return true }

func (DefaultPolicy) Cost(c *component.Connection) float64 {
	return math.Max(c.Cost, 0)
}

// AvoidTagsPolicy forbids connections carrying any of its tags.
type AvoidTagsPolicy struct {
	DefaultPolicy
	tags map[string]struct{}
}

// AvoidTags builds a policy that refuses the listed connection tags.
func AvoidTags(tags ...string) *AvoidTagsPolicy {
	p := &AvoidTagsPolicy{tags: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		p.tags[t] = struct{}{}
	}
	return p
}

func (p *AvoidTagsPolicy) Usable(c *component.Connection) bool {
	_, forbidden := p.tags[c.Tag]
	return !forbidden
}

// PolicyFunc adapts closures to EdgePolicy. A nil func falls back to
// DefaultPolicy.
type PolicyFunc struct {
	UsableFunc func(c *component.Connection) bool
	CostFunc   func(c *component.Connection) float64
}

func (p PolicyFunc) Usable(c *component.Connection) bool {
	if p.UsableFunc == nil {
		return DefaultPolicy{}.Usable(c)
	}
	return p.UsableFunc(c)
}

func (p PolicyFunc) Cost(c *component.Connection) float64 {
	if p.CostFunc == nil {
		return DefaultPolicy{}.Cost(c)
	}
	return p.CostFunc(c)
}
