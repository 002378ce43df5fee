package game

import "github.com/arcade-cabinet/beppo-laughs/geometry"

const (
	defaultMaxSanity = 100

	fearPerDiscovery   = 1
	despairPerRevisit  = 0.5
	maxDespairPerVisit = 3
	itemRelief         = 5

	// Fear and despair together above this share of 2*max invert the world.
	invertedShare = 0.7
)

// GameOverReason explains why the sanity model ended a run.
type GameOverReason string

const (
	ReasonNone    GameOverReason = ""
	ReasonFear    GameOverReason = "fear"
	ReasonDespair GameOverReason = "despair"
	ReasonBoth    GameOverReason = "both"
)

// SanityReading is the read-only view of the meters used by the navigator.
type SanityReading struct {
	Fear    float64 `json:"fear"`
	Despair float64 `json:"despair"`
	Max     float64 `json:"max"`
}

// FearRatio returns fear as a share of the maximum.
func (r SanityReading) FearRatio() float64 {
	if r.Max <= 0 {
		return 0
	}
	return r.Fear / r.Max
}

// Sanity tracks the fear and despair meters. Exploring new nodes raises fear,
// walking in circles raises despair.
type Sanity struct {
	fear    float64
	despair float64
	max     float64
	visits  map[geometry.NodeID]int
	path    []geometry.NodeID
}

// NewSanity returns empty meters capped at limit. A non-positive limit uses 100.
func NewSanity(limit float64) *Sanity {
	if limit <= 0 {
		limit = defaultMaxSanity
	}
	return &Sanity{
		max:    limit,
		visits: make(map[geometry.NodeID]int),
	}
}

// Visit records an arrival at id.
func (s *Sanity) Visit(id geometry.NodeID) {
	s.visits[id]++
	s.path = append(s.path, id)

	count := s.visits[id]
	if count == 1 {
		s.fear = min(s.fear+fearPerDiscovery, s.max)
		return
	}
	s.despair = min(s.despair+min(float64(count)*despairPerRevisit, maxDespairPerVisit), s.max)
}

// Relieve lowers both meters, as collecting an item does.
func (s *Sanity) Relieve(amount float64) {
	s.fear = max(s.fear-amount, 0)
	s.despair = max(s.despair-amount, 0)
}

// Reading returns the current meters.
func (s *Sanity) Reading() SanityReading {
	return SanityReading{Fear: s.fear, Despair: s.despair, Max: s.max}
}

// Outcome reports whether either meter is full.
func (s *Sanity) Outcome() GameOverReason {
	fearFull, despairFull := s.fear >= s.max, s.despair >= s.max
	switch {
	case fearFull && despairFull:
		return ReasonBoth
	case fearFull:
		return ReasonFear
	case despairFull:
		return ReasonDespair
	}
	return ReasonNone
}

// Level returns the remaining sanity: max when calm, 0 when both meters are full.
func (s *Sanity) Level() float64 {
	return s.max - (s.fear+s.despair)/2
}

// Inverted reports whether the combined meters are high enough to flip the world.
func (s *Sanity) Inverted() bool {
	return s.fear+s.despair > 2*s.max*invertedShare
}

// Visits returns how often id has been arrived at.
func (s *Sanity) Visits(id geometry.NodeID) int {
	return s.visits[id]
}

// Explored returns the number of distinct nodes visited.
func (s *Sanity) Explored() int {
	return len(s.visits)
}

// Path returns the arrival history.
func (s *Sanity) Path() []geometry.NodeID {
	return s.path
}
