package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ebitenui/ebitenui"
	ebuiinput "github.com/ebitenui/ebitenui/input"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/waywalker/ecs"
	"github.com/milk9111/waywalker/navigation"
	"github.com/milk9111/waywalker/prefabs"
	"github.com/milk9111/waywalker/scene"
	"golang.design/x/clipboard"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// A stalled window (dragging, breakpoints) must not teleport the walker
	// across the graph on the next tick.
	maxFrameMillis = 100.0

	pickRadius = 18.0
)

type Game struct {
	debug       bool
	clipboardOK bool
	graphName   string
	walkerName  string

	world      *ecs.World
	graph      *prefabs.GraphSpec
	walkerSpec *prefabs.WalkerSpec
	index      prefabs.GraphIndex
	walker     ecs.Entity

	at      ecs.Entity
	pending ecs.Entity
	done    *navigation.Completion
	rotate  bool
	status  string

	watcher    *prefabs.Watcher
	skipReload map[string]bool

	ui    *ebitenui.UI
	panel *panel

	last time.Time
}

func NewGame(graphName, walkerName string, debug, clipboardOK bool) (*Game, error) {
	g := &Game{
		debug:       debug,
		clipboardOK: clipboardOK,
		graphName:   graphName,
		walkerName:  walkerName,
		skipReload:  map[string]bool{},
	}
	if err := g.load(); err != nil {
		return nil, err
	}
	g.ui, g.panel = newPanel(g)

	if info, err := os.Stat(prefabs.Dir); err == nil && info.IsDir() {
		dirs := []string{prefabs.Dir}
		if info, err := os.Stat(filepath.Join(prefabs.Dir, "scripts")); err == nil && info.IsDir() {
			dirs = append(dirs, filepath.Join(prefabs.Dir, "scripts"))
		}
		w, err := prefabs.NewWatcher(dirs...)
		if err != nil {
			log.Printf("hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// load rebuilds the world from the current specs. The previous world is kept
// when anything fails.
func (g *Game) load() error {
	graph, err := prefabs.LoadGraphSpec(g.graphName)
	if err != nil {
		return err
	}
	walkerSpec, err := prefabs.LoadWalkerSpec(g.walkerName)
	if err != nil {
		return err
	}

	w := ecs.NewWorld()
	w.AddSystem(navigation.NewWalkSystem())
	index, err := prefabs.BuildGraph(w, graph)
	if err != nil {
		return err
	}
	walker, err := prefabs.BuildWalker(w, walkerSpec, index)
	if err != nil {
		return err
	}

	g.world, g.graph, g.walkerSpec, g.index, g.walker = w, graph, walkerSpec, index, walker
	g.rotate = walkerSpec.Rotate
	g.done, g.pending = nil, 0
	g.at = index[walkerSpec.Start]
	if !g.at.Valid() {
		g.at = g.nearest(g.walkerPosition(), math.Inf(1))
	}
	g.status = fmt.Sprintf("%s on %s", walkerSpec.Name, graph.Name)

	d := w.Dispatcher()
	d.Subscribe(walker, navigation.EventWaypointReached, ecs.ListenerFunc(g.onReached))
	d.Subscribe(walker, navigation.EventPathingConcluded, ecs.ListenerFunc(g.onConcluded))
	return nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) onReached(evt *ecs.Event) {
	g.at = evt.Related
}

func (g *Game) onConcluded(evt *ecs.Event) {
	g.status = "arrived at " + navigation.WaypointName(g.world, evt.Related)
	if next := g.pending; next.Valid() {
		g.pending = 0
		g.walkTo(next)
	}
}

func (g *Game) walking() bool {
	return g.done != nil && !g.done.Settled()
}

// walkTo starts a walk from the last waypoint reached. A target picked while
// walking is queued until the current walk concludes.
func (g *Game) walkTo(target ecs.Entity) {
	if g.walking() {
		g.pending = target
		g.status = "next: " + navigation.WaypointName(g.world, target)
		return
	}
	done := navigation.MoveTo(g.world, g.walker, g.at, target, navigation.WithRotation(g.rotate))
	if done == nil {
		return
	}
	g.done = done
	if err := done.Err(); err != nil {
		g.status = fmt.Sprintf("%s -> %s: %v", navigation.WaypointName(g.world, g.at), navigation.WaypointName(g.world, target), err)
		log.Printf("walk rejected: %v", err)
		return
	}
	if !done.Settled() {
		g.status = "walking to " + navigation.WaypointName(g.world, target)
	}
}

func (g *Game) Update() error {
	now := time.Now()
	elapsed := 0.0
	if !g.last.IsZero() {
		elapsed = float64(now.Sub(g.last)) / float64(time.Millisecond)
	}
	g.last = now
	if elapsed > maxFrameMillis {
		elapsed = maxFrameMillis
	}

	g.pollWatcher()
	g.ui.Update()
	g.handleInput()
	g.world.Step(elapsed)
	g.panel.refresh()
	return nil
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.rotate = !g.rotate
		g.status = fmt.Sprintf("rotation %v", g.rotate)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyRoute()
	}
	if ebuiinput.UIHovered {
		return
	}

	x, y := ebiten.CursorPosition()
	cursor := cp.Vector{X: float64(x), Y: float64(y)}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if target := g.nearest(cursor, pickRadius); target.Valid() {
			g.walkTo(target)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if target := g.nearest(cursor, pickRadius); target.Valid() {
			active := !navigation.WaypointActive(g.world, target)
			if err := navigation.SetActive(g.world, target, active); err == nil {
				g.status = fmt.Sprintf("%s active=%v", navigation.WaypointName(g.world, target), active)
			}
		}
	}
}

func (g *Game) changeSpeed(factor float64) {
	speed, ok := navigation.Speed(g.world, g.walker)
	if !ok {
		return
	}
	if err := navigation.SetSpeed(g.world, g.walker, speed*factor); err != nil {
		g.status = err.Error()
	}
}

func (g *Game) saveSpeed() {
	speed, ok := navigation.Speed(g.world, g.walker)
	if !ok {
		return
	}
	if err := prefabs.SaveWalkerSpeed(g.walkerName, speed); err != nil {
		g.status = err.Error()
		log.Printf("failed to save speed: %v", err)
		return
	}
	g.skipReload[filepath.Base(g.walkerName)] = true
	g.status = fmt.Sprintf("saved speed %.1f", speed)
}

func (g *Game) routeText() string {
	state, ok := navigation.State(g.world, g.walker)
	if !ok || state.Idle() {
		return ""
	}
	names := []string{navigation.WaypointName(g.world, g.at)}
	for _, node := range state.Route()[state.Progress():] {
		names = append(names, navigation.WaypointName(g.world, node.Waypoint))
	}
	return strings.Join(names, " -> ")
}

func (g *Game) copyRoute() {
	route := g.routeText()
	switch {
	case route == "":
		g.status = "no route to copy"
	case !g.clipboardOK:
		g.status = "clipboard unavailable"
	default:
		clipboard.Write(clipboard.FmtText, []byte(route))
		g.status = "copied " + route
	}
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			base := filepath.Base(name)
			if g.skipReload[base] {
				delete(g.skipReload, base)
				continue
			}
			if err := g.load(); err != nil {
				log.Printf("reload after change to %s failed: %v", base, err)
				g.status = "reload failed: " + err.Error()
				continue
			}
			log.Printf("reloaded after change to %s", base)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("watch error: %v", err)
		default:
			return
		}
	}
}

func (g *Game) walkerPosition() cp.Vector {
	pos, _ := scene.WorldPosition(g.world, g.walker)
	return pos
}

// nearest returns the waypoint closest to p within radius.
func (g *Game) nearest(p cp.Vector, radius float64) ecs.Entity {
	var best ecs.Entity
	bestDist := radius * radius
	for _, e := range g.index {
		pos, err := scene.WorldPosition(g.world, e)
		if err != nil {
			continue
		}
		if d := pos.DistanceSq(p); d <= bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
