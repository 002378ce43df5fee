package game

import (
	"github.com/arcade-cabinet/beppo-laughs/geometry"
	"github.com/arcade-cabinet/beppo-laughs/maze"
)

func at(x, y int) maze.Position {
	return maze.Position{X: x, Y: y}
}

// railGraph builds a geometry over a w x h grid holding only the given edges.
// Each edge is added to both endpoints in the order listed.
func railGraph(w, h int, center maze.Position, exits []maze.Position, edges ...[2]maze.Position) *geometry.Geometry {
	g := &geometry.Geometry{Width: w, Height: h, Config: geometry.DefaultConfig}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := at(x, y)
			g.Nodes = append(g.Nodes, geometry.RailNode{
				ID:    geometry.NodeID(y*w + x),
				Key:   p.Key(),
				Grid:  p,
				World: g.GridToWorld(p),
			})
		}
	}
	for _, e := range edges {
		a, _ := g.NodeAt(e[0])
		b, _ := g.NodeAt(e[1])
		g.Nodes[a].Neighbors = append(g.Nodes[a].Neighbors, b)
		g.Nodes[b].Neighbors = append(g.Nodes[b].Neighbors, a)
	}
	g.Center, _ = g.NodeAt(center)
	g.Nodes[g.Center].IsCenter = true
	for _, e := range exits {
		id, _ := g.NodeAt(e)
		g.Exits = append(g.Exits, id)
		g.Nodes[id].IsExit = true
	}
	return g
}

// plus is a 3x3 graph whose center links to its four arms, listed N, S, W, E.
func plus() *geometry.Geometry {
	c := at(1, 1)
	return railGraph(3, 3, c, nil,
		[2]maze.Position{c, at(1, 0)},
		[2]maze.Position{c, at(1, 2)},
		[2]maze.Position{c, at(0, 1)},
		[2]maze.Position{c, at(2, 1)},
	)
}

func id(g *geometry.Geometry, p maze.Position) geometry.NodeID {
	n, _ := g.NodeAt(p)
	return n
}

// stubSource returns fixed draws and counts how often it was asked.
type stubSource struct {
	f     float64
	n     int
	draws int
}

func (s *stubSource) Float64() float64 {
	s.draws++
	return s.f
}

func (s *stubSource) IntN(int) int {
	return s.n
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}
