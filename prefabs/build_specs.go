package prefabs

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/waywalker/ecs"
	"github.com/milk9111/waywalker/ecs/component"
	"github.com/milk9111/waywalker/navigation"
	"github.com/milk9111/waywalker/scene"
	"gopkg.in/yaml.v3"
)

var ErrUnknownWaypoint = errors.New("prefabs: unknown waypoint")

// GraphIndex maps waypoint names to the entities BuildGraph created.
type GraphIndex map[string]ecs.Entity

// Lookup returns the waypoint entity called name.
func (g GraphIndex) Lookup(name string) (ecs.Entity, error) {
	e, ok := g[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWaypoint, name)
	}
	return e, nil
}

// Names lists the waypoint names in sorted order.
func (g GraphIndex) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildGraph creates one waypoint entity per spec waypoint, parents them and
// adds the connections.
func BuildGraph(w *ecs.World, spec *GraphSpec) (GraphIndex, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	index := make(GraphIndex, len(spec.Waypoints))
	for _, wp := range spec.Waypoints {
		e, err := navigation.NewWaypoint(w, wp.Name, cp.Vector{X: wp.Transform.X, Y: wp.Transform.Y})
		if err != nil {
			return nil, fmt.Errorf("prefabs: waypoint %s: %w", wp.Name, err)
		}
		applyTransform(w, e, wp.Transform)
		if !wp.IsActive() {
			_ = navigation.SetActive(w, e, false)
		}
		index[wp.Name] = e
	}

	for _, wp := range spec.Waypoints {
		if wp.Parent == "" {
			continue
		}
		if err := scene.SetParent(w, index[wp.Name], index[wp.Parent]); err != nil {
			return nil, fmt.Errorf("prefabs: parent %s of %s: %w", wp.Parent, wp.Name, err)
		}
	}

	for _, c := range spec.Connections {
		opts := []navigation.ConnectOption{
			navigation.WithCost(c.Cost),
			navigation.WithTag(c.Tag),
			navigation.WithSpeedModifier(c.SpeedModifier),
		}
		var err error
		if c.Bidirectional {
			_, _, err = navigation.ConnectBoth(w, index[c.From], index[c.To], opts...)
		} else {
			_, err = navigation.Connect(w, index[c.From], index[c.To], opts...)
		}
		if err != nil {
			return nil, fmt.Errorf("prefabs: connection %s->%s: %w", c.From, c.To, err)
		}
	}

	return index, nil
}

func applyTransform(w *ecs.World, e ecs.Entity, spec TransformSpec) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return
	}
	t.Position = cp.Vector{X: spec.X, Y: spec.Y}
	sx, sy := spec.Scale()
	t.Scale = cp.Vector{X: sx, Y: sy}
	t.Rotation = spec.Rotation
}

// BuildPolicy turns a policy spec into an EdgePolicy. Script policies are
// loaded through LoadScript and resolve waypoint names in w.
func BuildPolicy(spec PolicySpec, w *ecs.World) (navigation.EdgePolicy, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	switch spec.Kind {
	case PolicyAvoidTags:
		return navigation.AvoidTags(spec.Tags...), nil
	case PolicyScript:
		src, err := LoadScript(spec.Script)
		if err != nil {
			return nil, fmt.Errorf("prefabs: load script %s: %w", spec.Script, err)
		}
		return navigation.NewScriptPolicy(spec.Script, src, w)
	default:
		return navigation.DefaultPolicy{}, nil
	}
}

// BuildWalker creates the walker entity and places it on its start waypoint
// when one is named.
func BuildWalker(w *ecs.World, spec *WalkerSpec, index GraphIndex) (ecs.Entity, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	policy, err := BuildPolicy(spec.Policy, w)
	if err != nil {
		return 0, fmt.Errorf("prefabs: walker %s: %w", spec.Name, err)
	}

	var start ecs.Entity
	if spec.Start != "" {
		if start, err = index.Lookup(spec.Start); err != nil {
			return 0, fmt.Errorf("prefabs: walker %s start: %w", spec.Name, err)
		}
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), component.NewTransform(spec.Transform.X, spec.Transform.Y)); err != nil {
		return 0, err
	}
	applyTransform(w, e, spec.Transform)

	walker := navigation.NewWalker(spec.Speed)
	walker.Policy = policy
	if err := ecs.Add(w, e, navigation.WalkerComponent.Kind(), walker); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}

	if start.Valid() {
		if err := navigation.Teleport(w, e, start); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("prefabs: walker %s: %w", spec.Name, err)
		}
	}
	return e, nil
}

// SaveWalkerSpeed rewrites the speed field of the walker spec called name and
// leaves every other node of the document as it was.
func SaveWalkerSpeed(name string, speed float64) error {
	if !(speed > 0) || math.IsInf(speed, 0) {
		return fmt.Errorf("%w: speed %v", ErrInvalidSpec, speed)
	}
	data, err := Load(name)
	if err != nil {
		return fmt.Errorf("prefabs: load %s: %w", name, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("prefabs: unmarshal %s: %w", name, err)
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s is not a mapping", ErrInvalidSpec, name)
	}

	setScalar(doc.Content[0], "speed", strconv.FormatFloat(speed, 'f', -1, 64))

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("prefabs: marshal %s: %w", name, err)
	}
	if err := Save(name, out); err != nil {
		return fmt.Errorf("prefabs: save %s: %w", name, err)
	}
	return nil
}

// setScalar leaves the tag empty so the encoder resolves it from the value.
func setScalar(mapping *yaml.Node, key, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			node := mapping.Content[i+1]
			node.Kind = yaml.ScalarNode
			node.Tag = ""
			node.Style = 0
			node.Value = value
			node.Content = nil
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value},
	)
}
