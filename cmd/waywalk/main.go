package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/waywalker/logging"
	"github.com/milk9111/waywalker/navigation"
	"github.com/milk9111/waywalker/prefabs"
	"golang.design/x/clipboard"
)

func main() {
	graphName := flag.String("graph", "graph.yaml", "graph spec in prefabs/ (falls back to the embedded default)")
	walkerName := flag.String("walker", "walker.yaml", "walker spec in prefabs/ (falls back to the embedded default)")
	dir := flag.String("dir", prefabs.Dir, "directory holding prefab overrides; watched for changes")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	logFormat := flag.String("log-format", "text", "text or json")
	debug := flag.Bool("debug", false, "show frame stats and connection costs")
	flag.Parse()

	prefabs.Dir = *dir
	navigation.SetLogger(logging.New(logging.Config{Level: *logLevel, Format: *logFormat, IncludeCaller: *debug}))

	clipboardOK := true
	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable, route copy disabled: %v", err)
		clipboardOK = false
	}

	game, err := NewGame(*graphName, *walkerName, *debug, clipboardOK)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("waywalk")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
