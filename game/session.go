package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/arcade-cabinet/beppo-laughs/geometry"
)

var ErrUnknownNode = errors.New("unknown node")

// Status is the outcome of a run so far.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

type requestKind int

const (
	requestMove requestKind = iota
	requestFork
)

type request struct {
	kind requestKind
	node geometry.NodeID
}

// SessionConfig holds the per-session settings layered on a level.
type SessionConfig struct {
	Tuning    Tuning
	MaxSanity float64
	Source    Source // Confusion draws; nil for an entropy-seeded source.
}

// Snapshot is a consistent copy of a session taken between ticks.
type Snapshot struct {
	Seed        string         `json:"seed"`
	Status      Status         `json:"status"`
	Reason      GameOverReason `json:"reason,omitempty"`
	Navigation  NavState       `json:"navigation"`
	Sanity      SanityReading  `json:"sanity"`
	SanityLevel float64        `json:"sanityLevel"`
	Inverted    bool           `json:"inverted"`
	Explored    int            `json:"explored"`
	Path        []string       `json:"path"` // Arrival history, oldest first.
	Collected   []string       `json:"collected"`
	Blockades   []string       `json:"blockades"`
}

// Session owns the mutable state of one playthrough. Input methods only queue
// work; Tick applies it under the session lock.
type Session struct {
	sync.Mutex

	level     *Level
	nav       *Navigator
	sanity    *Sanity
	maxSanity float64

	blockades map[geometry.NodeID]string // Blockade node to required item id.
	collected map[string]bool

	intent   Intent
	requests []request
	status   Status
	reason   GameOverReason
}

// NewSession starts a playthrough of level at its center.
func NewSession(level *Level, cfg SessionConfig) (*Session, error) {
	if level == nil || level.Geometry == nil {
		return nil, errors.New("session needs a built level")
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		level:     level,
		maxSanity: cfg.MaxSanity,
		blockades: make(map[geometry.NodeID]string),
	}
	if level.Plan != nil {
		for _, o := range level.Plan.Obstacles {
			s.blockades[o.Node] = o.RequiredItemID
		}
	}
	s.nav = NewNavigator(level.Geometry, cfg.Tuning, cfg.Source)
	s.restart()
	return s, nil
}

func (s *Session) restart() {
	s.sanity = NewSanity(s.maxSanity)
	s.collected = make(map[string]bool)
	s.intent = Intent{}
	s.requests = nil
	s.status = StatusPlaying
	s.reason = ReasonNone
	s.nav.SetGate(s.blocked)
	s.nav.Reset()
}

// blocked reports whether id holds a blockade whose item is still missing.
func (s *Session) blocked(id geometry.NodeID) bool {
	item, ok := s.blockades[id]
	return ok && !s.collected[item]
}

// Level returns the level being played.
func (s *Session) Level() *Level {
	return s.level
}

// SetIntent replaces the driver input used by the following ticks.
func (s *Session) SetIntent(in Intent) {
	s.Lock()
	defer s.Unlock()
	s.intent = in
}

// RequestMove queues an explicit move to the node with the given key.
func (s *Session) RequestMove(key string) error {
	return s.enqueue(requestMove, key)
}

// ChooseFork queues the answer to a pending fork.
func (s *Session) ChooseFork(key string) error {
	return s.enqueue(requestFork, key)
}

func (s *Session) enqueue(kind requestKind, key string) error {
	id, ok := s.level.Geometry.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, key)
	}
	s.Lock()
	defer s.Unlock()
	s.requests = append(s.requests, request{kind: kind, node: id})
	return nil
}

// Tick applies the queued requests, advances the navigator by dt seconds and
// feeds the resulting events to the sanity model and the blockades.
func (s *Session) Tick(dt float64) []Event {
	s.Lock()
	defer s.Unlock()

	if s.status != StatusPlaying {
		s.requests = nil
		return nil
	}

	var events []Event
	for _, r := range s.requests {
		var err error
		switch r.kind {
		case requestMove:
			_, err = s.nav.StartMoveTo(r.node, s.sanity.Reading())
		case requestFork:
			_, err = s.nav.ResolveFork(r.node, s.sanity.Reading())
		}
		if err != nil {
			events = append(events, Event{Kind: EventRejected, Node: r.node, Key: s.level.Geometry.Key(r.node), Error: err.Error()})
		}
	}
	s.requests = nil

	s.nav.Tick(dt, s.intent)
	for _, e := range s.nav.DrainEvents() {
		if e.Kind == EventNodeArrived {
			s.sanity.Visit(e.Node)
			e.Visits = s.sanity.Visits(e.Node)
		}
		events = append(events, e)
		events = s.route(e, events)
	}
	return events
}

func (s *Session) route(e Event, events []Event) []Event {
	switch e.Kind {
	case EventNodeArrived:
		if reason := s.sanity.Outcome(); reason != ReasonNone {
			s.status, s.reason = StatusLost, reason
			return append(events, Event{Kind: EventGameOver, Node: e.Node, Key: e.Key, Reason: reason})
		}
		return s.collect(e, events)
	case EventExitReached:
		if s.status == StatusPlaying {
			s.status = StatusWon
		}
	}
	return events
}

func (s *Session) collect(e Event, events []Event) []Event {
	picked := false
	for _, c := range s.level.Plan.CollectiblesAt(e.Node) {
		if s.collected[c.ID] {
			continue
		}
		s.collected[c.ID] = true
		s.sanity.Relieve(itemRelief)
		picked = true
		events = append(events, Event{Kind: EventItemCollected, Node: e.Node, Key: e.Key, ItemID: c.ID})
	}
	if picked {
		s.nav.SetGate(s.blocked)
	}
	return events
}

// Reset restores the session to its initial state at the center.
func (s *Session) Reset() {
	s.Lock()
	defer s.Unlock()
	s.restart()
}

// Outcome returns the run status and, for a lost run, the reason.
func (s *Session) Outcome() (Status, GameOverReason) {
	s.Lock()
	defer s.Unlock()
	return s.status, s.reason
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.Lock()
	defer s.Unlock()

	snap := Snapshot{
		Seed:        s.level.Seed,
		Status:      s.status,
		Reason:      s.reason,
		Navigation:  s.nav.State(),
		Sanity:      s.sanity.Reading(),
		SanityLevel: s.sanity.Level(),
		Inverted:    s.sanity.Inverted(),
		Explored:    s.sanity.Explored(),
		Path:        make([]string, 0, len(s.sanity.Path())),
		Collected:   []string{},
		Blockades:   []string{},
	}
	for _, id := range s.sanity.Path() {
		snap.Path = append(snap.Path, s.level.Geometry.Key(id))
	}
	if s.level.Plan != nil {
		for _, c := range s.level.Plan.Collectibles {
			if s.collected[c.ID] {
				snap.Collected = append(snap.Collected, c.ID)
			}
		}
		for _, o := range s.level.Plan.Obstacles {
			if !s.collected[o.RequiredItemID] {
				snap.Blockades = append(snap.Blockades, o.NodeKey)
			}
		}
	}
	return snap
}
