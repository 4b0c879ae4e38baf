package navigation

import (
	"fmt"
	"math"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/waywalker/ecs"
	"github.com/milk9111/waywalker/ecs/component"
)

// The script must define `usable(conn)` and `cost(conn)`. conn is a map with
// keys cost, speed_modifier, tag, from and to (waypoint names).
const edgePolicyDispatchScript = `
if __phase == "usable" {
	__result = usable(__conn)
} else if __phase == "cost" {
	__result = cost(__conn)
}
`

// ScriptPolicy is an EdgePolicy backed by a tengo script. It is not safe for
// concurrent use, matching the single-threaded world it serves.
type ScriptPolicy struct {
	name     string
	world    *ecs.World
	compiled *tengo.Compiled
}

// NewScriptPolicy compiles src. w resolves waypoint names for conn.from and
// conn.to and may be nil.
func NewScriptPolicy(name string, src []byte, w *ecs.World) (*ScriptPolicy, error) {
	script := tengo.NewScript(append(append([]byte(nil), src...), []byte("\n"+edgePolicyDispatchScript)...))
	_ = script.Add("__phase", "")
	_ = script.Add("__conn", map[string]any{})
	_ = script.Add("__result", nil)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("navigation: compile edge policy %s: %w", name, err)
	}
	p := &ScriptPolicy{name: name, world: w, compiled: compiled}
	if err := p.run("noop", nil); err != nil {
		return nil, fmt.Errorf("navigation: run edge policy %s: %w", name, err)
	}
	return p, nil
}

// Name is the script name given to NewScriptPolicy.
func (p *ScriptPolicy) Name() string {
	return p.name
}

func (p *ScriptPolicy) Usable(c *component.Connection) bool {
	if err := p.run("usable", c); err != nil {
		logger.Warn("edge policy usable failed", "script", p.name, "err", err)
		return false
	}
	return p.compiled.Get("__result").Bool()
}

func (p *ScriptPolicy) Cost(c *component.Connection) float64 {
	if err := p.run("cost", c); err != nil {
		logger.Warn("edge policy cost failed", "script", p.name, "err", err)
		return math.Inf(1)
	}
	result := p.compiled.Get("__result")
	if result.IsUndefined() {
		return DefaultPolicy{}.Cost(c)
	}
	return math.Max(result.Float(), 0)
}

func (p *ScriptPolicy) run(phase string, c *component.Connection) error {
	if err := p.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := p.compiled.Set("__conn", p.connMap(c)); err != nil {
		return err
	}
	if err := p.compiled.Set("__result", nil); err != nil {
		return err
	}
	return p.compiled.Run()
}

func (p *ScriptPolicy) connMap(c *component.Connection) map[string]any {
	if c == nil {
		return map[string]any{}
	}
	m := map[string]any{
		"cost":           c.Cost,
		"speed_modifier": c.SpeedModifier,
		"tag":            c.Tag,
	}
	if p.world != nil {
		m["from"] = WaypointName(p.world, ecs.Entity(c.Start))
		m["to"] = WaypointName(p.world, ecs.Entity(c.End))
	}
	return m
}
