package prefabs

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func useDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := Dir
	Dir = dir
	t.Cleanup(func() { Dir = prev })
	return dir
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	useDir(t)

	graph, err := LoadGraphSpec("graph.yaml")
	if err != nil {
		t.Fatalf("LoadGraphSpec: %v", err)
	}
	if graph.Name != "village" || len(graph.Waypoints) == 0 || len(graph.Connections) == 0 {
		t.Fatalf("unexpected default graph: %+v", graph)
	}

	walker, err := LoadWalkerSpec("prefabs/walker.yaml")
	if err != nil {
		t.Fatalf("LoadWalkerSpec: %v", err)
	}
	if walker.Speed <= 0 || walker.Start == "" || walker.Policy.Kind != PolicyScript {
		t.Fatalf("unexpected default walker: %+v", walker)
	}
	if _, err := LoadScript(walker.Policy.Script); err != nil {
		t.Fatalf("LoadScript(%s): %v", walker.Policy.Script, err)
	}
}

func TestLoadPrefersDisk(t *testing.T) {
	dir := useDir(t)
	if err := os.WriteFile(filepath.Join(dir, "walker.yaml"), []byte("name: local\nspeed: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	walker, err := LoadWalkerSpec("walker.yaml")
	if err != nil {
		t.Fatalf("LoadWalkerSpec: %v", err)
	}
	if walker.Name != "local" || walker.Speed != 7 {
		t.Fatalf("expected disk copy, got %+v", walker)
	}

	if _, err := LoadSpec[GraphSpec]("missing.yaml"); err == nil {
		t.Fatalf("expected error for missing prefab")
	}
}

func TestGraphSpecValidate(t *testing.T) {
	wp := func(name string) WaypointSpec { return WaypointSpec{Name: name} }
	child := func(name, parent string) WaypointSpec { return WaypointSpec{Name: name, Parent: parent} }

	cases := []struct {
		name  string
		spec  GraphSpec
		valid bool
	}{
		{
			name: "ok",
			spec: GraphSpec{
				Waypoints:   []WaypointSpec{wp("a"), child("b", "a")},
				Connections: []ConnectionSpec{{From: "a", To: "b", Cost: -1}},
			},
			valid: true,
		},
		{name: "unnamed", spec: GraphSpec{Waypoints: []WaypointSpec{wp("")}}},
		{name: "duplicate", spec: GraphSpec{Waypoints: []WaypointSpec{wp("a"), wp("a")}}},
		{name: "unknown_parent", spec: GraphSpec{Waypoints: []WaypointSpec{child("a", "x")}}},
		{name: "parent_cycle", spec: GraphSpec{Waypoints: []WaypointSpec{child("a", "b"), child("b", "a")}}},
		{
			name: "unknown_endpoint",
			spec: GraphSpec{Waypoints: []WaypointSpec{wp("a")}, Connections: []ConnectionSpec{{From: "a", To: "z"}}},
		},
		{
			name: "self_loop",
			spec: GraphSpec{Waypoints: []WaypointSpec{wp("a")}, Connections: []ConnectionSpec{{From: "a", To: "a"}}},
		},
		{
			name: "negative_speed_modifier",
			spec: GraphSpec{
				Waypoints:   []WaypointSpec{wp("a"), wp("b")},
				Connections: []ConnectionSpec{{From: "a", To: "b", SpeedModifier: -1}},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.spec.Validate()
			if c.valid && err != nil {
				t.Fatalf("expected valid spec, got %v", err)
			}
			if !c.valid && !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("expected ErrInvalidSpec, got %v", err)
			}
		})
	}
}

func TestWalkerSpecValidate(t *testing.T) {
	cases := []struct {
		name  string
		spec  WalkerSpec
		valid bool
	}{
		{name: "default_policy", spec: WalkerSpec{Speed: 2}, valid: true},
		{name: "zero_speed_uses_default", spec: WalkerSpec{}, valid: true},
		{name: "avoid_tags", spec: WalkerSpec{Policy: PolicySpec{Kind: PolicyAvoidTags, Tags: []string{"water"}}}, valid: true},
		{name: "negative_speed", spec: WalkerSpec{Speed: -1}},
		{name: "avoid_without_tags", spec: WalkerSpec{Policy: PolicySpec{Kind: PolicyAvoidTags}}},
		{name: "script_without_name", spec: WalkerSpec{Policy: PolicySpec{Kind: PolicyScript}}},
		{name: "unknown_kind", spec: WalkerSpec{Policy: PolicySpec{Kind: "teleport"}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.spec.Validate()
			if c.valid != (err == nil) {
				t.Fatalf("valid=%v, got %v", c.valid, err)
			}
		})
	}
}

func TestYAMLColor(t *testing.T) {
	spec, err := LoadSpec[GraphSpec]("graph.yaml")
	if err != nil {
		t.Fatal(err)
	}
	var well, gate *WaypointSpec
	for i := range spec.Waypoints {
		switch spec.Waypoints[i].Name {
		case "well":
			well = &spec.Waypoints[i]
		case "gate":
			gate = &spec.Waypoints[i]
		}
	}
	if well == nil || gate == nil {
		t.Fatalf("default graph lost its well or gate")
	}
	if got := well.Color.Or(color.Black); got != (color.NRGBA{R: 0x4a, G: 0xa3, B: 0xdf, A: 0xff}) {
		t.Fatalf("unexpected well color %v", got)
	}
	if got := gate.Color.Or(color.White); got != color.White {
		t.Fatalf("expected fallback color, got %v", got)
	}
}
