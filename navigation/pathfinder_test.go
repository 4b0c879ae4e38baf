package navigation

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/waywalker/ecs"
	"github.com/milk9111/waywalker/ecs/component"
)

type testGraph struct {
	w     *ecs.World
	nodes map[string]ecs.Entity
}

func newTestGraph(t *testing.T, points map[string]cp.Vector) *testGraph {
	t.Helper()
	g := &testGraph{w: ecs.NewWorld(), nodes: map[string]ecs.Entity{}}
	for name, pos := range points {
		e, err := NewWaypoint(g.w, name, pos)
		if err != nil {
			t.Fatalf("NewWaypoint %s: %v", name, err)
		}
		g.nodes[name] = e
	}
	return g
}

func (g *testGraph) connect(t *testing.T, from, to string, opts ...ConnectOption) *component.Connection {
	t.Helper()
	c, err := Connect(g.w, g.nodes[from], g.nodes[to], opts...)
	if err != nil {
		t.Fatalf("Connect %s->%s: %v", from, to, err)
	}
	return c
}

func (g *testGraph) names(route []*PathingNode) []string {
	out := make([]string, 0, len(route))
	for _, e := range RouteWaypoints(route) {
		out = append(out, WaypointName(g.w, e))
	}
	return out
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// abc builds A, B, C with A->B (1), B->C (1), A->C (5).
func abc(t *testing.T) *testGraph {
	g := newTestGraph(t, map[string]cp.Vector{
		"A": {X: 0, Y: 0},
		"B": {X: 1, Y: 0},
		"C": {X: 2, Y: 0},
		"D": {X: 9, Y: 9},
	})
	g.connect(t, "A", "B", WithCost(1))
	g.connect(t, "B", "C", WithCost(1))
	g.connect(t, "A", "C", WithCost(5))
	return g
}

func TestFindPathPrefersCheaperMultiHopRoute(t *testing.T) {
	g := abc(t)

	route, err := FindPath(g.w, g.nodes["A"], g.nodes["C"], nil)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if got := g.names(route); !sameNames(got, []string{"B", "C"}) {
		t.Fatalf("expected [B C], got %v", got)
	}
	if cost := RouteCost(route); cost != 2 {
		t.Fatalf("expected cost 2, got %v", cost)
	}
	if route[0].Previous != nil && route[0].Previous.Waypoint != g.nodes["A"] {
		t.Fatalf("first node must link back to the start")
	}
	if route[1].PreviousConnection.Cost != 1 {
		t.Fatalf("expected B->C as the connection into C")
	}
}

func TestFindPathFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(g *testGraph)
		from   string
		to     string
		want   error
	}{
		{
			name: "disconnected",
			from: "A", to: "D",
			want: ErrNoRoute,
		},
		{
			name: "reverse_direction",
			from: "C", to: "A",
			want: ErrNoRoute,
		},
		{
			name: "start_inactive",
			mutate: func(g *testGraph) {
				_ = SetActive(g.w, g.nodes["A"], false)
			},
			from: "A", to: "C",
			want: ErrNoRoute,
		},
		{
			name: "end_inactive",
			mutate: func(g *testGraph) {
				_ = SetActive(g.w, g.nodes["C"], false)
			},
			from: "A", to: "C",
			want: ErrNoRoute,
		},
		{
			name: "end_destroyed",
			mutate: func(g *testGraph) {
				ecs.DestroyEntity(g.w, g.nodes["C"])
			},
			from: "A", to: "C",
			want: ErrNoRoute,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := abc(t)
			if c.mutate != nil {
				c.mutate(g)
			}
			route, err := FindPath(g.w, g.nodes[c.from], g.nodes[c.to], nil)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v (route %v)", c.want, err, g.names(route))
			}
		})
	}

	t.Run("start_not_waypoint", func(t *testing.T) {
		g := abc(t)
		bare := ecs.CreateEntity(g.w)
		if _, err := FindPath(g.w, bare, g.nodes["A"], nil); !errors.Is(err, ErrNotWaypoint) {
			t.Fatalf("expected ErrNotWaypoint, got %v", err)
		}
	})
}

func TestFindPathSameStartAndEnd(t *testing.T) {
	g := abc(t)
	route, err := FindPath(g.w, g.nodes["A"], g.nodes["A"], nil)
	if err != nil || len(route) != 0 {
		t.Fatalf("expected empty route without error, got %v %v", route, err)
	}
}

func TestFindPathActivityFilter(t *testing.T) {
	g := abc(t)
	if err := SetActive(g.w, g.nodes["B"], false); err != nil {
		t.Fatal(err)
	}

	route, err := FindPath(g.w, g.nodes["A"], g.nodes["C"], nil)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if got := g.names(route); !sameNames(got, []string{"C"}) {
		t.Fatalf("expected direct route [C], got %v", got)
	}
	if RouteCost(route) != 5 {
		t.Fatalf("expected cost 5, got %v", RouteCost(route))
	}

	if err := SetActive(g.w, g.nodes["B"], true); err != nil {
		t.Fatal(err)
	}
	route, _ = FindPath(g.w, g.nodes["A"], g.nodes["C"], nil)
	if got := g.names(route); !sameNames(got, []string{"B", "C"}) {
		t.Fatalf("expected [B C] once B is active again, got %v", got)
	}
}

func TestFindPathInactiveWaypointIsNotATransit(t *testing.T) {
	// B is only reachable through inactive X, so the search must not see it
	// even though X->B itself is between two waypoints that exist.
	g := newTestGraph(t, map[string]cp.Vector{"A": {}, "X": {X: 1}, "B": {X: 2}})
	g.connect(t, "A", "X")
	g.connect(t, "X", "B")
	_ = SetActive(g.w, g.nodes["X"], false)

	if _, err := FindPath(g.w, g.nodes["A"], g.nodes["B"], nil); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
}

func TestFindPathCostClamping(t *testing.T) {
	build := func(cost float64) *testGraph {
		g := newTestGraph(t, map[string]cp.Vector{"A": {}, "B": {X: 1}, "C": {X: 2}})
		g.connect(t, "A", "B", WithCost(cost))
		g.connect(t, "B", "C", WithCost(3))
		return g
	}

	negative := build(-5)
	zero := build(0)

	rn, err := FindPath(negative.w, negative.nodes["A"], negative.nodes["C"], nil)
	if err != nil {
		t.Fatal(err)
	}
	rz, err := FindPath(zero.w, zero.nodes["A"], zero.nodes["C"], nil)
	if err != nil {
		t.Fatal(err)
	}
	if RouteCost(rn) != 3 || RouteCost(rn) != RouteCost(rz) {
		t.Fatalf("expected clamped cost 3 for both, got %v and %v", RouteCost(rn), RouteCost(rz))
	}
	if rn[0].Distance != 0 {
		t.Fatalf("expected B at distance 0, got %v", rn[0].Distance)
	}
}

func TestFindPathOptimalOnLargerGraph(t *testing.T) {
	//   S --1-- a --1-- b --1-- T
	//   |                      |
	//   +---2--- c ----2-------+
	//   S --10-- T
	g := newTestGraph(t, map[string]cp.Vector{
		"S": {}, "a": {X: 1}, "b": {X: 2}, "c": {X: 1, Y: 1}, "T": {X: 3},
	})
	g.connect(t, "S", "T", WithCost(10))
	g.connect(t, "S", "a", WithCost(1))
	g.connect(t, "a", "b", WithCost(1))
	g.connect(t, "b", "T", WithCost(1))
	g.connect(t, "S", "c", WithCost(2))
	g.connect(t, "c", "T", WithCost(2))

	route, err := FindPath(g.w, g.nodes["S"], g.nodes["T"], nil)
	if err != nil {
		t.Fatal(err)
	}
	if RouteCost(route) != 3 {
		t.Fatalf("expected optimal cost 3, got %v via %v", RouteCost(route), g.names(route))
	}
	if got := g.names(route); !sameNames(got, []string{"a", "b", "T"}) {
		t.Fatalf("expected [a b T], got %v", got)
	}
}

func TestFindPathTiesFollowDiscoveryOrder(t *testing.T) {
	// Two equal-cost routes to T; P is discovered first from S.
	g := newTestGraph(t, map[string]cp.Vector{"S": {}, "P": {X: 1}, "Q": {Y: 1}, "T": {X: 1, Y: 1}})
	g.connect(t, "S", "P", WithCost(1))
	g.connect(t, "S", "Q", WithCost(1))
	g.connect(t, "P", "T", WithCost(1))
	g.connect(t, "Q", "T", WithCost(1))

	for i := 0; i < 5; i++ {
		route, err := FindPath(g.w, g.nodes["S"], g.nodes["T"], nil)
		if err != nil {
			t.Fatal(err)
		}
		if got := g.names(route); !sameNames(got, []string{"P", "T"}) {
			t.Fatalf("expected deterministic [P T], got %v", got)
		}
	}
}

func TestFindPathPolicies(t *testing.T) {
	build := func(t *testing.T) *testGraph {
		g := newTestGraph(t, map[string]cp.Vector{"A": {}, "B": {X: 1}, "C": {X: 2}})
		g.connect(t, "A", "B", WithCost(1), WithTag("water"))
		g.connect(t, "B", "C", WithCost(1))
		g.connect(t, "A", "C", WithCost(5), WithTag("road"))
		return g
	}

	cases := []struct {
		name   string
		policy func(g *testGraph) EdgePolicy
		want   []string
		cost   float64
		err    error
	}{
		{
			name:   "default",
			policy: func(*testGraph) EdgePolicy { return DefaultPolicy{} },
			want:   []string{"B", "C"},
			cost:   2,
		},
		{
			name:   "avoid_water",
			policy: func(*testGraph) EdgePolicy { return AvoidTags("water") },
			want:   []string{"C"},
			cost:   5,
		},
		{
			name:   "avoid_everything",
			policy: func(*testGraph) EdgePolicy { return AvoidTags("water", "road") },
			err:    ErrNoRoute,
		},
		{
			name: "road_bias",
			policy: func(*testGraph) EdgePolicy {
				return PolicyFunc{CostFunc: func(c *component.Connection) float64 {
					if c.Tag == "road" {
						return c.Cost / 10
					}
					return c.Cost
				}}
			},
			want: []string{"C"},
			cost: 0.5,
		},
		{
			name: "negative_policy_cost_clamped",
			policy: func(*testGraph) EdgePolicy {
				return PolicyFunc{CostFunc: func(c *component.Connection) float64 { return -1 }}
			},
			want: []string{"C"},
			cost: 0,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := build(t)
			route, err := FindPath(g.w, g.nodes["A"], g.nodes["C"], c.policy(g))
			if c.err != nil {
				if !errors.Is(err, c.err) {
					t.Fatalf("expected %v, got %v", c.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindPath: %v", err)
			}
			if got := g.names(route); !sameNames(got, c.want) {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
			if RouteCost(route) != c.cost {
				t.Fatalf("expected cost %v, got %v", c.cost, RouteCost(route))
			}
		})
	}
}

func TestDisconnect(t *testing.T) {
	g := abc(t)
	if n := Disconnect(g.w, g.nodes["B"], g.nodes["C"]); n != 1 {
		t.Fatalf("expected 1 removed connection, got %d", n)
	}
	route, err := FindPath(g.w, g.nodes["A"], g.nodes["C"], nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.names(route); !sameNames(got, []string{"C"}) {
		t.Fatalf("expected [C] after disconnecting B->C, got %v", got)
	}
}
