// Package geometry turns a maze layout into a rail graph with world
// coordinates, plus the wall segments and floor used for rendering and
// collision.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arcade-cabinet/beppo-laughs/maze"
)

var (
	ErrInvalidConfig      = errors.New("invalid geometry config")
	ErrAsymmetricBoundary = errors.New("cell boundaries disagree")
)

// NodeID indexes Geometry.Nodes. It is derived from grid coordinates as
// y*width + x.
type NodeID int

// NoNode marks an absent node reference.
const NoNode NodeID = -1

// Config holds the spatial settings of the built level.
type Config struct {
	CellSize      float64 `json:"cellSize"`      // World distance between adjacent node centers.
	WallHeight    float64 `json:"wallHeight"`    // Height of every wall segment.
	WallThickness float64 `json:"wallThickness"` // Thickness of every wall segment.
}

// DefaultConfig matches the proportions the level art is authored for.
var DefaultConfig = Config{
	CellSize:      6.5,
	WallHeight:    5.5,
	WallThickness: 0.2,
}

// Validate rejects configs that would produce degenerate geometry.
func (c Config) Validate() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cell size %v", ErrInvalidConfig, c.CellSize)
	}
	if c.WallHeight <= 0 {
		return fmt.Errorf("%w: wall height %v", ErrInvalidConfig, c.WallHeight)
	}
	if c.WallThickness < 0 {
		return fmt.Errorf("%w: wall thickness %v", ErrInvalidConfig, c.WallThickness)
	}
	return nil
}

// Point is a position on the world floor plane.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// RailNode is one vertex of the navigation graph.
type RailNode struct {
	ID        NodeID        `json:"id"`
	Key       string        `json:"key"` // "x,y", stable across builds.
	Grid      maze.Position `json:"grid"`
	World     Point         `json:"world"`
	Neighbors []NodeID      `json:"neighbors"`
	IsCenter  bool          `json:"isCenter"`
	IsExit    bool          `json:"isExit"`
}

// WallSegment is a solid box standing on a closed cell boundary. The extents
// are already axis aligned: walls running along Z have their span in Depth,
// and Rotation about Y stays 0.
type WallSegment struct {
	X        float64 `json:"x"`
	Z        float64 `json:"z"`
	Width    float64 `json:"width"`  // Extent along X.
	Height   float64 `json:"height"` // Extent along Y.
	Depth    float64 `json:"depth"`  // Extent along Z.
	Rotation float64 `json:"rotation"`
}

// FloorTile is the single floor rectangle under the maze.
type FloorTile struct {
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

// Geometry is the output of Build. It is never mutated after construction.
type Geometry struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Config Config        `json:"config"`
	Nodes  []RailNode    `json:"nodes"`
	Center NodeID        `json:"center"`
	Exits  []NodeID      `json:"exits"`
	Walls  []WallSegment `json:"walls"`
	Floor  FloorTile     `json:"floor"`
}

// Build converts layout into a rail graph and wall list using cfg.
func Build(layout *maze.Layout, cfg Config) (*Geometry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Geometry{
		Width:  layout.Width,
		Height: layout.Height,
		Config: cfg,
		Nodes:  make([]RailNode, 0, layout.Width*layout.Height),
	}

	half := cfg.CellSize / 2
	span := cfg.CellSize + cfg.WallThickness

	for y := 0; y < layout.Height; y++ {
		for x := 0; x < layout.Width; x++ {
			cell := layout.Grid[y][x]
			pos := maze.Position{X: x, Y: y}
			world := g.GridToWorld(pos)

			if cell.NorthWall {
				g.Walls = append(g.Walls, horizontalWall(world.X, world.Z-half, span, cfg))
			}
			if cell.WestWall {
				g.Walls = append(g.Walls, verticalWall(world.X-half, world.Z, span, cfg))
			}
			if y == layout.Height-1 && cell.SouthWall {
				g.Walls = append(g.Walls, horizontalWall(world.X, world.Z+half, span, cfg))
			}
			if x == layout.Width-1 && cell.EastWall {
				g.Walls = append(g.Walls, verticalWall(world.X+half, world.Z, span, cfg))
			}

			node := RailNode{
				ID:       g.id(pos),
				Key:      pos.Key(),
				Grid:     pos,
				World:    world,
				IsCenter: cell.IsCenter,
				IsExit:   cell.IsExit,
			}
			for _, d := range []maze.Direction{maze.North, maze.South, maze.West, maze.East} {
				n := pos.Step(d)
				if cell.HasWall(d) || !layout.InBound(n) {
					continue
				}
				if layout.Grid[n.Y][n.X].HasWall(d.Opposite()) {
					return nil, fmt.Errorf("%w: %s towards %s", ErrAsymmetricBoundary, pos.Key(), d)
				}
				node.Neighbors = append(node.Neighbors, g.id(n))
			}
			g.Nodes = append(g.Nodes, node)
		}
	}

	g.Center = g.id(layout.Center)
	for _, e := range layout.Exits {
		g.Exits = append(g.Exits, g.id(e))
	}

	center := g.GridToWorld(layout.Center)
	g.Floor = FloorTile{
		X:     center.X,
		Z:     center.Z,
		Width: float64(layout.Width+1) * cfg.CellSize,
		Depth: float64(layout.Height+1) * cfg.CellSize,
	}

	return g, nil
}

func horizontalWall(x, z, span float64, cfg Config) WallSegment {
	return WallSegment{X: x, Z: z, Width: span, Height: cfg.WallHeight, Depth: cfg.WallThickness}
}

func verticalWall(x, z, span float64, cfg Config) WallSegment {
	return WallSegment{X: x, Z: z, Width: cfg.WallThickness, Height: cfg.WallHeight, Depth: span}
}

func (g *Geometry) id(p maze.Position) NodeID {
	return NodeID(p.Y*g.Width + p.X)
}

// GridToWorld maps a grid coordinate to its world position.
func (g *Geometry) GridToWorld(p maze.Position) Point {
	return Point{
		X: float64(p.X) * g.Config.CellSize,
		Z: float64(p.Y) * g.Config.CellSize,
	}
}

// WorldToGrid maps a world position to the nearest grid coordinate.
func (g *Geometry) WorldToGrid(w Point) maze.Position {
	return maze.Position{
		X: int(math.Round(w.X / g.Config.CellSize)),
		Y: int(math.Round(w.Z / g.Config.CellSize)),
	}
}

// Node returns the node with the given id.
func (g *Geometry) Node(id NodeID) (*RailNode, bool) {
	if id < 0 || int(id) >= len(g.Nodes) {
		return nil, false
	}
	return &g.Nodes[id], true
}

// NodeAt returns the id of the node at grid position p.
func (g *Geometry) NodeAt(p maze.Position) (NodeID, bool) {
	if p.X < 0 || p.X >= g.Width || p.Y < 0 || p.Y >= g.Height {
		return NoNode, false
	}
	return g.id(p), true
}

// Lookup resolves an "x,y" key to a node id.
func (g *Geometry) Lookup(key string) (NodeID, bool) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return NoNode, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return NoNode, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return NoNode, false
	}
	return g.NodeAt(maze.Position{X: x, Y: y})
}

// Key returns the external key of id, or "" for an unknown id.
func (g *Geometry) Key(id NodeID) string {
	n, ok := g.Node(id)
	if !ok {
		return ""
	}
	return n.Key
}

// Direction returns the cardinal direction of the step from -> to.
func (g *Geometry) Direction(from, to NodeID) (maze.Direction, bool) {
	a, ok := g.Node(from)
	if !ok {
		return maze.North, false
	}
	b, ok := g.Node(to)
	if !ok {
		return maze.North, false
	}

	dx, dy := b.Grid.X-a.Grid.X, b.Grid.Y-a.Grid.Y
	switch {
	case dy < 0:
		return maze.North, true
	case dy > 0:
		return maze.South, true
	case dx > 0:
		return maze.East, true
	case dx < 0:
		return maze.West, true
	}
	return maze.North, false
}

// Heading returns the yaw, in radians, of a viewer at from looking at to.
// North (towards -Z) is 0 and angles grow clockwise when seen from above.
func (g *Geometry) Heading(from, to NodeID) float64 {
	a, okA := g.Node(from)
	b, okB := g.Node(to)
	if !okA || !okB {
		return 0
	}
	return math.Atan2(b.World.X-a.World.X, -(b.World.Z - a.World.Z))
}

// EdgeLength returns the world distance between two nodes.
func (g *Geometry) EdgeLength(from, to NodeID) float64 {
	a, okA := g.Node(from)
	b, okB := g.Node(to)
	if !okA || !okB {
		return 0
	}
	return math.Hypot(b.World.X-a.World.X, b.World.Z-a.World.Z)
}

// Interpolate returns the world position a fraction t along from -> to.
func (g *Geometry) Interpolate(from, to NodeID, t float64) Point {
	a, ok := g.Node(from)
	if !ok {
		return Point{}
	}
	b, ok := g.Node(to)
	if !ok {
		return a.World
	}
	t = min(max(t, 0), 1)
	return Point{
		X: a.World.X + (b.World.X-a.World.X)*t,
		Z: a.World.Z + (b.World.Z-a.World.Z)*t,
	}
}

// Neighbors returns the nodes adjacent to id.
func (g *Geometry) Neighbors(id NodeID) []*RailNode {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	result := make([]*RailNode, 0, len(n.Neighbors))
	for _, nid := range n.Neighbors {
		if nb, ok := g.Node(nid); ok {
			result = append(result, nb)
		}
	}
	return result
}
