package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/waywalker/navigation"
)

const panelWidth = 220

// panel is the control column on the left edge of the window.
type panel struct {
	g         *Game
	speed     *widget.Text
	rotate    *widget.Text
	hint      *widget.Text
	lastSpeed float64
}

func newPanel(g *Game) (*ebitenui.UI, *panel) {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnPressedImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	var face ebtext.Face = labelFace
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	rowData := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true})

	p := &panel{g: g}
	p.speed = widget.NewText(widget.TextOpts.Text("", &face, white), widget.TextOpts.WidgetOpts(rowData))
	p.rotate = widget.NewText(widget.TextOpts.Text("", &face, white), widget.TextOpts.WidgetOpts(rowData))
	p.hint = widget.NewText(
		widget.TextOpts.Text("left click: walk\nright click: toggle\nR: rotation  C: copy", &face, color.NRGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff}),
		widget.TextOpts.WidgetOpts(rowData),
	)

	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnPressedImg}),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(rowData),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				onClick()
			}),
		)
	}

	column := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 16, Bottom: 16, Left: 12, Right: 12}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(panelWidth, baseHeight),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionStart, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	column.AddChild(p.speed)
	column.AddChild(button("Slower", func() { g.changeSpeed(0.8) }))
	column.AddChild(button("Faster", func() { g.changeSpeed(1.25) }))
	column.AddChild(button("Save speed", g.saveSpeed))
	column.AddChild(p.rotate)
	column.AddChild(button("Toggle rotation", func() { g.rotate = !g.rotate }))
	column.AddChild(button("Copy route", g.copyRoute))
	column.AddChild(p.hint)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(column)

	p.refresh()
	return &ebitenui.UI{Container: root}, p
}

// refresh updates the labels that depend on walker state.
func (p *panel) refresh() {
	speed, _ := navigation.Speed(p.g.world, p.g.walker)
	if speed != p.lastSpeed || p.speed.Label == "" {
		p.speed.Label = fmt.Sprintf("Speed: %.1f u/s", speed)
		p.lastSpeed = speed
	}
	p.rotate.Label = fmt.Sprintf("Rotation: %v", p.g.rotate)
}
