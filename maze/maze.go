/*
Package maze generates seeded perfect mazes.

A Layout is a grid of Cell values with wall flags. Generation starts at the
center cell and carves outwards with a growing-tree algorithm, so every cell is
reachable from the center along exactly one path. Each perimeter side then gets
one exit whose outer wall is opened.

All randomness comes from a single stream derived from the seed string, so the
same (width, height, seed) always yields the same layout.
*/
package maze

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/arcade-cabinet/beppo-laughs/rng"
)

const (
	// MinDimension is the smallest accepted width or height.
	MinDimension = 3
	// MaxDimension is the largest accepted width or height.
	MaxDimension = 101

	// newestPickProbability biases the growing tree towards long corridors.
	newestPickProbability = 0.7
)

var (
	ErrInvalidDimensions = errors.New("invalid maze dimensions")
)

// Layout is the output of Generate. It is not modified after generation.
type Layout struct {
	Width    int        `json:"width"`    // Number of columns, always odd.
	Height   int        `json:"height"`   // Number of rows, always odd.
	Grid     [][]*Cell  `json:"grid"`     // Cells indexed as Grid[row][col].
	Passages []Passage  `json:"passages"` // Wall removals in carve order.
	Center   Position   `json:"center"`   // The center cell.
	Exits    []Position `json:"exits"`    // Perimeter exits, at most one per side.
	Seed     string     `json:"seed"`     // Seed the layout was generated from.
}

// Dimensions checks a requested width x height and returns the size Generate
// builds for it: even values are raised to the next odd one.
func Dimensions(width, height int) (int, int, error) {
	if min(width, height) < MinDimension || max(width, height) > MaxDimension {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return width | 1, height | 1, nil
}

// Generate builds a maze of at least width x height cells from seed.
// Even dimensions are raised to the next odd value so that a unique center
// exists. Dimensions below MinDimension or above MaxDimension are rejected.
func Generate(width, height int, seed string) (*Layout, error) {
	width, height, err := Dimensions(width, height)
	if err != nil {
		return nil, err
	}

	grid := make([][]*Cell, height)
	for y := range grid {
		grid[y] = make([]*Cell, width)
		for x := range grid[y] {
			grid[y][x] = &Cell{
				X:         x,
				Y:         y,
				NorthWall: true,
				SouthWall: true,
				EastWall:  true,
				WestWall:  true,
			}
		}
	}

	m := &Layout{
		Width:  width,
		Height: height,
		Grid:   grid,
		Center: Position{X: width / 2, Y: height / 2},
		Seed:   seed,
	}
	m.Grid[m.Center.Y][m.Center.X].IsCenter = true

	r := rng.New(seed)
	m.carve(r)
	m.createExits(r)
	return m, nil
}

// carve runs the growing-tree algorithm from the center cell.
func (m *Layout) carve(r *rand.Rand) {
	start := m.Grid[m.Center.Y][m.Center.X]
	start.Visited = true
	active := []*Cell{start}

	for len(active) > 0 {
		var pick int
		if r.Float64() < newestPickProbability {
			pick = len(active) - 1
		} else {
			pick = r.IntN(len(active))
		}
		current := active[pick]

		candidates := m.unvisitedNeighbors(current)
		if len(candidates) == 0 {
			active = slices.Delete(active, pick, pick+1)
			continue
		}

		d := candidates[r.IntN(len(candidates))]
		next := current.Position().Step(d)
		nextCell := m.Grid[next.Y][next.X]

		m.openWall(current, nextCell, d)
		m.Passages = append(m.Passages, Passage{From: current.Position(), To: next, Direction: d})

		nextCell.Visited = true
		active = append(active, nextCell)
	}
}

// unvisitedNeighbors returns the directions of in-bound neighbors not yet carved into.
func (m *Layout) unvisitedNeighbors(c *Cell) []Direction {
	var result []Direction
	for _, d := range Directions {
		p := c.Position().Step(d)
		if m.InBound(p) && !m.Grid[p.Y][p.X].Visited {
			result = append(result, d)
		}
	}
	return result
}

// openWall removes the boundary between two adjacent cells on both sides.
func (m *Layout) openWall(from, to *Cell, d Direction) {
	from.setWall(d, false)
	to.setWall(d.Opposite(), false)
}

// createExits opens one non-corner perimeter cell per side, in N, S, E, W order.
func (m *Layout) createExits(r *rand.Rand) {
	for _, side := range Directions {
		var candidates []*Cell
		switch side {
		case North:
			candidates = m.Grid[0][1 : m.Width-1]
		case South:
			candidates = m.Grid[m.Height-1][1 : m.Width-1]
		case East:
			for y := 1; y < m.Height-1; y++ {
				candidates = append(candidates, m.Grid[y][m.Width-1])
			}
		case West:
			for y := 1; y < m.Height-1; y++ {
				candidates = append(candidates, m.Grid[y][0])
			}
		}

		if len(candidates) == 0 {
			continue
		}

		exit := candidates[r.IntN(len(candidates))]
		exit.IsExit = true
		exit.setWall(side, false)
		m.Exits = append(m.Exits, exit.Position())
	}
}

// InBound reports whether p lies on the grid.
func (m *Layout) InBound(p Position) bool {
	return p.X >= 0 && p.X < m.Width && p.Y >= 0 && p.Y < m.Height
}

// Cell returns the cell at p, or nil when p is off the grid.
func (m *Layout) Cell(p Position) *Cell {
	if !m.InBound(p) {
		return nil
	}
	return m.Grid[p.Y][p.X]
}

// OpenNeighbors returns the in-grid neighbors of p reachable through an open
// wall. Exit openings that lead off the grid are not included.
func (m *Layout) OpenNeighbors(p Position) []Position {
	c := m.Cell(p)
	if c == nil {
		return nil
	}

	var result []Position
	for _, d := range Directions {
		n := p.Step(d)
		if !c.HasWall(d) && m.InBound(n) {
			result = append(result, n)
		}
	}
	return result
}

// String provides a textual representation of the maze.
// The center is drawn as C and exits as E.
func (m *Layout) String() string {
	var b strings.Builder

	// Top boundary
	b.WriteString("+")
	for x := 0; x < m.Width; x++ {
		if m.Grid[0][x].NorthWall {
			b.WriteString("---+")
		} else {
			b.WriteString("   +")
		}
	}
	b.WriteString("\n")

	for y := 0; y < m.Height; y++ {
		if m.Grid[y][0].WestWall {
			b.WriteString("|")
		} else {
			b.WriteString(" ")
		}
		for x := 0; x < m.Width; x++ {
			cell := m.Grid[y][x]
			switch {
			case cell.IsCenter:
				b.WriteString(" C ")
			case cell.IsExit:
				b.WriteString(" E ")
			default:
				b.WriteString("   ")
			}

			if cell.EastWall {
				b.WriteString("|")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")

		b.WriteString("+")
		for x := 0; x < m.Width; x++ {
			if m.Grid[y][x].SouthWall {
				b.WriteString("---+")
			} else {
				b.WriteString("   +")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
