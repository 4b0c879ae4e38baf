package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidSpec = errors.New("prefabs: invalid spec")

const (
	PolicyDefault   = "default"
	PolicyAvoidTags = "avoid_tags"
	PolicyScript    = "script"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type GraphSpec struct {
	Name        string           `yaml:"name"`
	Waypoints   []WaypointSpec   `yaml:"waypoints"`
	Connections []ConnectionSpec `yaml:"connections"`
}

func LoadGraphSpec(filename string) (*GraphSpec, error) {
	spec, err := LoadSpec[GraphSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

// Validate checks that waypoint names are unique and every reference
// resolves.
func (s *GraphSpec) Validate() error {
	byName := make(map[string]*WaypointSpec, len(s.Waypoints))
	for i := range s.Waypoints {
		wp := &s.Waypoints[i]
		if wp.Name == "" {
			return fmt.Errorf("%w: waypoint %d has no name", ErrInvalidSpec, i)
		}
		if _, dup := byName[wp.Name]; dup {
			return fmt.Errorf("%w: waypoint %q defined twice", ErrInvalidSpec, wp.Name)
		}
		if !wp.Transform.finite() {
			return fmt.Errorf("%w: waypoint %q has a non-finite transform", ErrInvalidSpec, wp.Name)
		}
		byName[wp.Name] = wp
	}

	for _, wp := range s.Waypoints {
		seen := map[string]bool{wp.Name: true}
		for parent := wp.Parent; parent != ""; parent = byName[parent].Parent {
			if _, ok := byName[parent]; !ok {
				return fmt.Errorf("%w: waypoint %q has unknown parent %q", ErrInvalidSpec, wp.Name, parent)
			}
			if seen[parent] {
				return fmt.Errorf("%w: parent cycle through %q", ErrInvalidSpec, wp.Name)
			}
			seen[parent] = true
		}
	}

	for i, c := range s.Connections {
		if _, ok := byName[c.From]; !ok {
			return fmt.Errorf("%w: connection %d starts at unknown waypoint %q", ErrInvalidSpec, i, c.From)
		}
		if _, ok := byName[c.To]; !ok {
			return fmt.Errorf("%w: connection %d ends at unknown waypoint %q", ErrInvalidSpec, i, c.To)
		}
		if c.From == c.To {
			return fmt.Errorf("%w: connection %d loops on %q", ErrInvalidSpec, i, c.From)
		}
		if math.IsNaN(c.Cost) || math.IsInf(c.Cost, 0) {
			return fmt.Errorf("%w: connection %s->%s has a non-finite cost", ErrInvalidSpec, c.From, c.To)
		}
		if c.SpeedModifier < 0 || math.IsNaN(c.SpeedModifier) || math.IsInf(c.SpeedModifier, 0) {
			return fmt.Errorf("%w: connection %s->%s has speed modifier %v", ErrInvalidSpec, c.From, c.To, c.SpeedModifier)
		}
	}
	return nil
}

type TransformSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
}

func (t TransformSpec) finite() bool {
	for _, v := range []float64{t.X, t.Y, t.ScaleX, t.ScaleY, t.Rotation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Scale returns the configured scale, treating an omitted axis as 1.
func (t TransformSpec) Scale() (float64, float64) {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

type WaypointSpec struct {
	Name      string        `yaml:"name"`
	Transform TransformSpec `yaml:",inline"`
	Parent    string        `yaml:"parent"`
	Active    *bool         `yaml:"active"`
	Color     *YAMLColor    `yaml:"color"`
}

// IsActive reports the active flag, which defaults to true.
func (w WaypointSpec) IsActive() bool {
	return w.Active == nil || *w.Active
}

type ConnectionSpec struct {
	From          string  `yaml:"from"`
	To            string  `yaml:"to"`
	Cost          float64 `yaml:"cost"`
	SpeedModifier float64 `yaml:"speed_modifier"`
	Tag           string  `yaml:"tag"`
	Bidirectional bool    `yaml:"bidirectional"`
}

type WalkerSpec struct {
	Name      string        `yaml:"name"`
	Speed     float64       `yaml:"speed"`
	Rotate    bool          `yaml:"rotate"`
	Start     string        `yaml:"start"`
	Transform TransformSpec `yaml:"transform"`
	Color     *YAMLColor    `yaml:"color"`
	Policy    PolicySpec    `yaml:"policy"`
}

type PolicySpec struct {
	Kind   string   `yaml:"kind"`
	Tags   []string `yaml:"tags"`
	Script string   `yaml:"script"`
}

func LoadWalkerSpec(filename string) (*WalkerSpec, error) {
	spec, err := LoadSpec[WalkerSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

func (s *WalkerSpec) Validate() error {
	if s.Speed < 0 || math.IsNaN(s.Speed) || math.IsInf(s.Speed, 0) {
		return fmt.Errorf("%w: walker %q has speed %v", ErrInvalidSpec, s.Name, s.Speed)
	}
	if !s.Transform.finite() {
		return fmt.Errorf("%w: walker %q has a non-finite transform", ErrInvalidSpec, s.Name)
	}
	return s.Policy.Validate()
}

func (p PolicySpec) Validate() error {
	switch p.Kind {
	case "", PolicyDefault:
	case PolicyAvoidTags:
		if len(p.Tags) == 0 {
			return fmt.Errorf("%w: %s policy lists no tags", ErrInvalidSpec, p.Kind)
		}
	case PolicyScript:
		if p.Script == "" {
			return fmt.Errorf("%w: script policy names no script", ErrInvalidSpec)
		}
	default:
		return fmt.Errorf("%w: unknown policy kind %q", ErrInvalidSpec, p.Kind)
	}
	return nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// Or returns the parsed color, or fallback when none was configured.
func (c *YAMLColor) Or(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
