package game

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/arcade-cabinet/beppo-laughs/geometry"
	"github.com/arcade-cabinet/beppo-laughs/maze"
	"github.com/arcade-cabinet/beppo-laughs/rng"
)

// Navigation errors. Stuck states are not errors; they are silent no-op ticks.
var (
	ErrNotAdjacent   = errors.New("target is not an available move")
	ErrNotForkOption = errors.New("choice is not one of the fork options")
	ErrNoFork        = errors.New("no fork is pending")
	ErrInTransit     = errors.New("already moving along an edge")
	ErrHalted        = errors.New("navigation halted at an exit")
)

// Phase is the state of the navigator.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTransiting
	PhaseAwaitingFork
)

func (p Phase) String() string {
	switch p {
	case PhaseTransiting:
		return "transiting"
	case PhaseAwaitingFork:
		return "awaiting_fork"
	}
	return "idle"
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*p = PhaseIdle
	case "transiting":
		*p = PhaseTransiting
	case "awaiting_fork":
		*p = PhaseAwaitingFork
	default:
		return fmt.Errorf("unknown phase %q", b)
	}
	return nil
}

// Intent is the driver input consumed by one tick.
type Intent struct {
	Accelerating bool    `json:"accelerating"`
	Braking      bool    `json:"braking"`
	Steering     float64 `json:"steering"` // -1 is hard left, 1 is hard right.
}

// Move is one available step from the current node.
type Move struct {
	Direction maze.Direction  `json:"direction"`
	Node      geometry.NodeID `json:"-"`
	Key       string          `json:"nodeId"`
	IsExit    bool            `json:"isExit"`
}

// Fork is a junction waiting for the player to pick a way.
type Fork struct {
	Node    geometry.NodeID `json:"-"`
	Key     string          `json:"nodeId"`
	Options []Move          `json:"options"`
}

// Source supplies the draws used for confusion. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// NavState is a copy of the navigator fields exposed to the outside.
type NavState struct {
	Phase          Phase          `json:"phase"`
	Current        string         `json:"currentNode"`
	Target         *string        `json:"targetNode"`
	IsMoving       bool           `json:"isMoving"`
	Progress       float64        `json:"moveProgress"`
	Speed          float64        `json:"speed"`
	Facing         float64        `json:"cameraRotation"`
	Position       geometry.Point `json:"position"`
	AvailableMoves []Move         `json:"availableMoves"`
	PendingFork    *Fork          `json:"pendingFork"`
	Halted         bool           `json:"halted"`
}

// Navigator moves the player along the rail graph. It is not safe for
// concurrent use; Session serializes access to it.
type Navigator struct {
	geo    *geometry.Geometry
	tuning Tuning
	source Source
	gate   func(geometry.NodeID) bool

	phase    Phase
	current  geometry.NodeID
	previous geometry.NodeID
	target   geometry.NodeID
	progress float64
	speed    float64
	facing   float64
	moves    []Move
	fork     *Fork
	halted   bool
	events   []Event
}

// NewNavigator places a navigator at the center of geo. A nil source uses an
// entropy-seeded generator, independent from the maze seed.
func NewNavigator(geo *geometry.Geometry, tuning Tuning, source Source) *Navigator {
	if source == nil {
		source = rng.Entropy()
	}
	n := &Navigator{
		geo:    geo,
		tuning: tuning,
		source: source,
	}
	n.Reset()
	return n
}

// Reset returns the navigator to Idle at the center, at rest.
func (n *Navigator) Reset() {
	n.phase = PhaseIdle
	n.current = n.geo.Center
	n.previous = geometry.NoNode
	n.target = geometry.NoNode
	n.progress = 0
	n.speed = 0
	n.fork = nil
	n.halted = false
	n.events = nil
	n.refreshMoves()

	n.facing = 0
	if len(n.moves) > 0 {
		n.facing = n.geo.Heading(n.current, n.moves[0].Node)
	}
}

// SetGate installs a predicate for nodes that cannot be entered. Gated
// neighbors are left out of the available moves.
func (n *Navigator) SetGate(gate func(geometry.NodeID) bool) {
	n.gate = gate
	n.refreshMoves()
}

// Tick advances the navigator by dt seconds of driver input.
func (n *Navigator) Tick(dt float64, in Intent) {
	if n.halted || dt <= 0 {
		return
	}

	n.integrateSpeed(dt, in)

	if n.phase == PhaseIdle && n.speed > n.tuning.MoveEpsilon {
		n.selectTarget(in.Steering)
	}
	if n.phase == PhaseTransiting {
		n.advance(dt)
	}
	n.turn(dt)
}

func (n *Navigator) integrateSpeed(dt float64, in Intent) {
	switch {
	case in.Accelerating:
		n.speed += n.tuning.Acceleration * dt
	case in.Braking:
		n.speed -= n.tuning.Braking * dt
	default:
		n.speed -= n.tuning.Drag * dt
	}
	n.speed = min(max(n.speed, 0), n.tuning.MaxSpeed)
}

// selectTarget picks the next edge from Idle. With a single continuation the
// move is automatic; at a junction it either raises a fork or scores the
// candidates, depending on the fork mode.
func (n *Navigator) selectTarget(steering float64) {
	candidates := n.continuations()
	switch {
	case len(candidates) == 0:
		return
	case len(candidates) == 1:
		n.begin(candidates[0].Node)
	case n.tuning.ForkMode == ForkPrompt:
		n.raiseFork()
	default:
		n.begin(n.bestCandidate(candidates, steering))
	}
}

// continuations are the available moves except the way back, unless the way
// back is all there is.
func (n *Navigator) continuations() []Move {
	if n.previous == geometry.NoNode {
		return n.moves
	}
	forward := make([]Move, 0, len(n.moves))
	for _, m := range n.moves {
		if m.Node != n.previous {
			forward = append(forward, m)
		}
	}
	if len(forward) == 0 {
		return n.moves
	}
	return forward
}

func (n *Navigator) bestCandidate(candidates []Move, steering float64) geometry.NodeID {
	steering = min(max(steering, -1), 1)
	steerHeading := n.facing + steering*math.Pi/2

	best, bestScore := candidates[0].Node, math.Inf(-1)
	for _, c := range candidates {
		h := n.geo.Heading(n.current, c.Node)
		score := n.tuning.StraightWeight*alignment(n.facing, h) + n.tuning.SteerWeight*alignment(steerHeading, h)
		if score > bestScore {
			best, bestScore = c.Node, score
		}
	}
	return best
}

// alignment is 1 for equal headings and 0 for opposite ones.
func alignment(a, b float64) float64 {
	return (1 + math.Cos(a-b)) / 2
}

func (n *Navigator) raiseFork() {
	n.fork = &Fork{
		Node:    n.current,
		Key:     n.geo.Key(n.current),
		Options: slices.Clone(n.moves),
	}
	n.phase = PhaseAwaitingFork
	n.emit(Event{Kind: EventForkRaised, Node: n.current})
}

func (n *Navigator) begin(target geometry.NodeID) {
	n.target = target
	n.progress = 0
	n.phase = PhaseTransiting
	n.fork = nil
}

func (n *Navigator) advance(dt float64) {
	if n.speed <= n.tuning.MoveEpsilon {
		return
	}
	length := n.geo.EdgeLength(n.current, n.target)
	if length <= 0 {
		n.complete()
		return
	}
	n.progress += n.speed * dt / length
	if n.progress >= 1 {
		n.complete()
	}
}

// turn eases the facing towards the active edge.
func (n *Navigator) turn(dt float64) {
	if n.phase != PhaseTransiting {
		return
	}
	desired := n.geo.Heading(n.current, n.target)
	diff := wrapAngle(desired - n.facing)
	n.facing = wrapAngle(n.facing + diff*min(1, dt*n.tuning.TurnRate))
}

// wrapAngle maps a to (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

func (n *Navigator) complete() {
	arrived := n.target
	n.previous = n.current
	n.current = arrived
	n.target = geometry.NoNode
	n.progress = 0
	n.phase = PhaseIdle
	n.refreshMoves()

	n.emit(Event{Kind: EventNodeArrived, Node: arrived})
	if node, ok := n.geo.Node(arrived); ok && node.IsExit {
		n.halted = true
		n.speed = 0
		n.emit(Event{Kind: EventExitReached, Node: arrived})
	}
}

func (n *Navigator) refreshMoves() {
	n.moves = n.moves[:0]
	for _, nb := range n.geo.Neighbors(n.current) {
		if n.gate != nil && n.gate(nb.ID) {
			continue
		}
		d, _ := n.geo.Direction(n.current, nb.ID)
		n.moves = append(n.moves, Move{Direction: d, Node: nb.ID, Key: nb.Key, IsExit: nb.IsExit})
	}
}

func (n *Navigator) isMove(id geometry.NodeID) bool {
	return slices.ContainsFunc(n.moves, func(m Move) bool { return m.Node == id })
}

// StartMoveTo starts an explicit move towards target. Depending on the fear
// in reading the move may be swapped for another available one; the node
// actually chosen is returned.
func (n *Navigator) StartMoveTo(target geometry.NodeID, reading SanityReading) (geometry.NodeID, error) {
	if n.halted {
		return geometry.NoNode, ErrHalted
	}
	if n.phase == PhaseTransiting {
		return geometry.NoNode, ErrInTransit
	}
	if !n.isMove(target) {
		return geometry.NoNode, ErrNotAdjacent
	}

	actual := n.confuse(target, reading)
	n.begin(actual)
	return actual, nil
}

// ResolveFork answers a pending fork with choice. The choice goes through the
// same confusion roll as any explicit move.
func (n *Navigator) ResolveFork(choice geometry.NodeID, reading SanityReading) (geometry.NodeID, error) {
	if n.phase != PhaseAwaitingFork || n.fork == nil {
		return geometry.NoNode, ErrNoFork
	}
	if len(n.fork.Options) == 0 {
		return geometry.NoNode, nil
	}
	if !slices.ContainsFunc(n.fork.Options, func(m Move) bool { return m.Node == choice }) {
		return geometry.NoNode, ErrNotForkOption
	}
	return n.StartMoveTo(choice, reading)
}

func (n *Navigator) confuse(target geometry.NodeID, reading SanityReading) geometry.NodeID {
	chance := n.tuning.ConfusionChance(reading.FearRatio())
	if chance <= 0 || len(n.moves) < 2 {
		return target
	}
	if n.source.Float64() >= chance {
		return target
	}

	others := make([]Move, 0, len(n.moves)-1)
	for _, m := range n.moves {
		if m.Node != target {
			others = append(others, m)
		}
	}
	actual := others[n.source.IntN(len(others))].Node
	n.emit(Event{Kind: EventConfused, Node: actual, Intended: n.geo.Key(target)})
	return actual
}

// UpdateProgress sets the edge progress directly, clamped to [0, 1].
func (n *Navigator) UpdateProgress(p float64) {
	if n.phase != PhaseTransiting {
		return
	}
	n.progress = min(max(p, 0), 1)
}

// CompleteMove finishes the current transit immediately. It does nothing
// when no move is in progress.
func (n *Navigator) CompleteMove() {
	if n.phase != PhaseTransiting || n.target == geometry.NoNode {
		return
	}
	n.complete()
}

func (n *Navigator) emit(e Event) {
	e.Key = n.geo.Key(e.Node)
	n.events = append(n.events, e)
}

// DrainEvents returns and clears the events emitted since the last drain.
func (n *Navigator) DrainEvents() []Event {
	events := n.events
	n.events = nil
	return events
}

func (n *Navigator) Phase() Phase { return n.phase }
func (n *Navigator) Current() geometry.NodeID { return n.current }
func (n *Navigator) Target() geometry.NodeID { return n.target }
func (n *Navigator) Progress() float64 { return n.progress }
func (n *Navigator) Speed() float64 { return n.speed }
func (n *Navigator) Facing() float64 { return n.facing }
func (n *Navigator) Halted() bool { return n.halted }
func (n *Navigator) IsMoving() bool { return n.phase == PhaseTransiting }
func (n *Navigator) AvailableMoves() []Move { return slices.Clone(n.moves) }
func (n *Navigator) PendingFork() *Fork { return n.fork }
func (n *Navigator) Geometry() *geometry.Geometry { return n.geo }

// Position returns the world position implied by the current edge progress.
func (n *Navigator) Position() geometry.Point {
	if n.phase == PhaseTransiting {
		return n.geo.Interpolate(n.current, n.target, n.progress)
	}
	if node, ok := n.geo.Node(n.current); ok {
		return node.World
	}
	return geometry.Point{}
}

// State returns a copy of the outward navigation fields.
func (n *Navigator) State() NavState {
	s := NavState{
		Phase:          n.phase,
		Current:        n.geo.Key(n.current),
		IsMoving:       n.IsMoving(),
		Progress:       n.progress,
		Speed:          n.speed,
		Facing:         n.facing,
		Position:       n.Position(),
		AvailableMoves: n.AvailableMoves(),
		Halted:         n.halted,
	}
	if n.target != geometry.NoNode {
		key := n.geo.Key(n.target)
		s.Target = &key
	}
	if n.fork != nil {
		f := *n.fork
		f.Options = slices.Clone(n.fork.Options)
		s.PendingFork = &f
	}
	return s
}
