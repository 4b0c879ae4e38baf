package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/waywalker/ecs"
	"github.com/milk9111/waywalker/ecs/component"
	"github.com/milk9111/waywalker/navigation"
	"github.com/milk9111/waywalker/scene"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const (
	waypointRadius = 9
	walkerRadius   = 7
)

var labelFace ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)

var tagColors = map[string]color.Color{
	"road":  colornames.Burlywood,
	"water": colornames.Steelblue,
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkslategray)

	g.drawConnections(screen)
	g.drawRoute(screen)
	g.drawWaypoints(screen)
	g.drawWalker(screen)

	drawLabel(screen, g.status, 240, baseHeight-24, colornames.White)
	if g.debug {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Frame: %d    FPS: %.2f    TPS: %.2f", g.world.Frame(), ebiten.ActualFPS(), ebiten.ActualTPS()), 240, 4)
	}

	g.ui.Draw(screen)
}

func (g *Game) drawConnections(screen *ebiten.Image) {
	for _, e := range g.index {
		wp, ok := ecs.Get(g.world, e, component.WaypointComponent.Kind())
		if !ok {
			continue
		}
		from, err := scene.WorldPosition(g.world, e)
		if err != nil {
			continue
		}
		for _, c := range wp.Connections {
			to, err := scene.WorldPosition(g.world, ecs.Entity(c.End))
			if err != nil {
				continue
			}
			clr := connectionColor(g.world, c)
			vector.StrokeLine(screen, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), 2, clr, true)
			drawArrowHead(screen, from, to, clr)
			if g.debug {
				mid := from.Lerp(to, 0.5)
				drawLabel(screen, fmt.Sprintf("%.1f", c.Cost), mid.X+4, mid.Y+4, colornames.Lightgrey)
			}
		}
	}
}

func connectionColor(w *ecs.World, c *component.Connection) color.Color {
	if !navigation.ConnectionActive(w, c) {
		return colornames.Dimgray
	}
	if clr, ok := tagColors[c.Tag]; ok {
		return clr
	}
	return colornames.Lightgrey
}

// drawArrowHead marks the direction of a connection just short of its end.
func drawArrowHead(screen *ebiten.Image, from, to cp.Vector, clr color.Color) {
	dir := to.Sub(from)
	if dir.LengthSq() == 0 {
		return
	}
	dir = dir.Normalize()
	tip := to.Sub(dir.Mult(waypointRadius + 2))
	back := tip.Sub(dir.Mult(8))
	side := dir.Perp().Mult(4)
	for _, p := range []cp.Vector{back.Add(side), back.Sub(side)} {
		vector.StrokeLine(screen, float32(tip.X), float32(tip.Y), float32(p.X), float32(p.Y), 2, clr, true)
	}
}

func (g *Game) drawRoute(screen *ebiten.Image) {
	state, ok := navigation.State(g.world, g.walker)
	if !ok || state.Idle() {
		return
	}
	prev := g.walkerPosition()
	for _, node := range state.Route()[state.Progress():] {
		next, err := scene.WorldPosition(g.world, node.Waypoint)
		if err != nil {
			return
		}
		vector.StrokeLine(screen, float32(prev.X), float32(prev.Y), float32(next.X), float32(next.Y), 4, colornames.Gold, true)
		prev = next
	}
}

func (g *Game) drawWaypoints(screen *ebiten.Image) {
	for _, spec := range g.graph.Waypoints {
		e, ok := g.index[spec.Name]
		if !ok {
			continue
		}
		pos, err := scene.WorldPosition(g.world, e)
		if err != nil {
			continue
		}
		clr := spec.Color.Or(colornames.Seagreen)
		if !navigation.WaypointActive(g.world, e) {
			clr = colornames.Dimgray
		}
		vector.FillCircle(screen, float32(pos.X), float32(pos.Y), waypointRadius, clr, true)
		if e == g.pending {
			vector.StrokeCircle(screen, float32(pos.X), float32(pos.Y), waypointRadius+4, 2, colornames.Gold, true)
		}
		drawLabel(screen, spec.Name, pos.X+waypointRadius+2, pos.Y-waypointRadius-12, colornames.White)
	}
}

func (g *Game) drawWalker(screen *ebiten.Image) {
	pos := g.walkerPosition()
	rot, _ := scene.WorldRotation(g.world, g.walker)
	scale, _ := scene.WorldScale(g.world, g.walker)

	radius := float32(walkerRadius * (scale.X + scale.Y) / 2)
	clr := g.walkerSpec.Color.Or(colornames.Orange)
	vector.FillCircle(screen, float32(pos.X), float32(pos.Y), radius, clr, true)

	heading := pos.Add(cp.ForAngle(rot).Mult(float64(radius) + 8))
	vector.StrokeLine(screen, float32(pos.X), float32(pos.Y), float32(heading.X), float32(heading.Y), 3, clr, true)
}

func drawLabel(screen *ebiten.Image, s string, x, y float64, clr color.Color) {
	if s == "" {
		return
	}
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	ebtext.Draw(screen, s, labelFace, op)
}
