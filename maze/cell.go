package maze

import "fmt"

// Direction is one of the four cardinal directions on the grid.
// North is towards row 0.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// Directions lists the cardinal directions in carving probe order.
var Directions = []Direction{North, South, East, West}

// Opposite returns the direction pointing back.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

// Delta returns the grid offset of one step in the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	default:
		return -1, 0
	}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return "unknown"
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "north":
		*d = North
	case "south":
		*d = South
	case "east":
		*d = East
	case "west":
		*d = West
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

// Position is a cell coordinate. X is the column and Y the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the position one cell away in direction d.
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Key returns the "x,y" form used to identify cells outside the engine.
func (p Position) Key() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Cell represents a single cell in a maze grid.
type Cell struct {
	X         int  `json:"x"`         // Column of the cell.
	Y         int  `json:"y"`         // Row of the cell.
	NorthWall bool `json:"northWall"` // NorthWall indicates whether the north boundary is closed.
	SouthWall bool `json:"southWall"` // SouthWall indicates whether the south boundary is closed.
	EastWall  bool `json:"eastWall"`  // EastWall indicates whether the east boundary is closed.
	WestWall  bool `json:"westWall"`  // WestWall indicates whether the west boundary is closed.
	Visited   bool `json:"visited"`   // Visited is set once the carver reaches the cell.
	IsCenter  bool `json:"isCenter"`  // IsCenter marks the unique center cell.
	IsExit    bool `json:"isExit"`    // IsExit marks a perimeter cell with its outer wall opened.
}

// Position returns the coordinate of the cell.
func (c *Cell) Position() Position {
	return Position{X: c.X, Y: c.Y}
}

// HasWall reports whether the boundary in direction d is closed.
func (c *Cell) HasWall(d Direction) bool {
	switch d {
	case North:
		return c.NorthWall
	case South:
		return c.SouthWall
	case East:
		return c.EastWall
	default:
		return c.WestWall
	}
}

func (c *Cell) setWall(d Direction, closed bool) {
	switch d {
	case North:
		c.NorthWall = closed
	case South:
		c.SouthWall = closed
	case East:
		c.EastWall = closed
	default:
		c.WestWall = closed
	}
}

// Passage records one wall removal made while carving.
type Passage struct {
	From      Position  `json:"from"`      // Cell the carver stood on.
	To        Position  `json:"to"`        // Cell the carver moved into.
	Direction Direction `json:"direction"` // Direction of the move.
}
