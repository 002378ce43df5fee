package game

import (
	"fmt"

	"github.com/arcade-cabinet/beppo-laughs/catalog"
	"github.com/arcade-cabinet/beppo-laughs/geometry"
	"github.com/arcade-cabinet/beppo-laughs/maze"
	"github.com/arcade-cabinet/beppo-laughs/spawn"
)

// Level is everything derived from a seed. It is immutable and may be shared
// by any number of sessions.
type Level struct {
	Seed     string             `json:"seed"`
	Layout   *maze.Layout       `json:"-"`
	Geometry *geometry.Geometry `json:"geometry"`
	Plan     *spawn.Plan        `json:"spawnPlan"`
}

// BuildLevel generates the maze for seed and derives the rest of the level
// from it.
func BuildLevel(seed string, width, height int, cfg geometry.Config, obstacles, items []catalog.ImageAsset) (*Level, error) {
	layout, err := maze.Generate(width, height, seed)
	if err != nil {
		return nil, fmt.Errorf("generate maze: %w", err)
	}
	return NewLevel(layout, cfg, obstacles, items)
}

// NewLevel builds the geometry of an existing layout and plans its blockades.
// A nil plan means the level has no blockades.
func NewLevel(layout *maze.Layout, cfg geometry.Config, obstacles, items []catalog.ImageAsset) (*Level, error) {
	geo, err := geometry.Build(layout, cfg)
	if err != nil {
		return nil, fmt.Errorf("build geometry: %w", err)
	}

	return &Level{
		Seed:     layout.Seed,
		Layout:   layout,
		Geometry: geo,
		Plan:     spawn.NewPlan(geo, layout.Seed, obstacles, items),
	}, nil
}
