// mazegen prints the maze of a seed with its blockades and collectibles.
//
// Usage:
//
//	go run ./cmd/mazegen [--seed test] [--width 13] [--height 13] [--catalog asset-catalog.json] [--json]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arcade-cabinet/beppo-laughs/catalog"
	"github.com/arcade-cabinet/beppo-laughs/config"
	"github.com/arcade-cabinet/beppo-laughs/game"
	"github.com/arcade-cabinet/beppo-laughs/geometry"
	logger "github.com/arcade-cabinet/beppo-laughs/infrastruture/log"
	"github.com/goccy/go-json"
)

func main() {
	seed := flag.String("seed", "test", "Seed phrase of the maze")
	width := flag.Int("width", 13, "Maze width in cells, rounded up to odd")
	height := flag.Int("height", 13, "Maze height in cells, rounded up to odd")
	catalogPath := flag.String("catalog", "", "Asset catalog file (the embedded catalog when empty)")
	asJSON := flag.Bool("json", false, "Print the level as JSON instead of a drawing")
	flag.Parse()

	log, _ := logger.New("MAZEGEN", config.ColorGreen, os.Stderr)

	assets := catalog.Default()
	if *catalogPath != "" {
		var err error
		if assets, err = catalog.LoadFile(*catalogPath); err != nil {
			log.Error(fmt.Sprintf("Loading catalog: %v", err))
			os.Exit(1)
		}
	}

	level, err := game.BuildLevel(*seed, *width, *height, geometry.DefaultConfig, assets.ObstacleAssets(), assets.SolutionAssets())
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}

	if *asJSON {
		b, err := json.MarshalIndent(level, "", "  ")
		if err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
		fmt.Println(string(b))
		return
	}

	fmt.Print(level.Layout.String())
	fmt.Printf("\nseed %q  %dx%d  center %s  exits %d\n",
		level.Seed, level.Layout.Width, level.Layout.Height, level.Layout.Center.Key(), len(level.Layout.Exits))

	if level.Plan == nil {
		fmt.Println("no spawns")
		return
	}
	for _, o := range level.Plan.Obstacles {
		fmt.Printf("blockade %-7s %-24s needs %s\n", o.NodeKey, catalog.FormatAssetLabel(o.Asset.ID), o.RequiredItemName)
	}
	for _, c := range level.Plan.Collectibles {
		fmt.Printf("item     %-7s %-24s opens %s\n", c.NodeKey, c.Name, c.UnlocksKey)
	}
}
