package game

import (
	"errors"
	"fmt"
)

// ForkMode selects how the navigator handles junctions.
type ForkMode int

const (
	// ForkPrompt stops at a junction and waits for the player to choose.
	ForkPrompt ForkMode = iota
	// ForkAuto picks the best scoring continuation without stopping.
	ForkAuto
)

func (m ForkMode) String() string {
	if m == ForkAuto {
		return "auto"
	}
	return "prompt"
}

// ParseForkMode parses "prompt" or "auto".
func ParseForkMode(s string) (ForkMode, error) {
	switch s {
	case "prompt", "":
		return ForkPrompt, nil
	case "auto":
		return ForkAuto, nil
	}
	return ForkPrompt, fmt.Errorf("unknown fork mode %q", s)
}

var ErrInvalidTuning = errors.New("invalid navigation tuning")

// Tuning holds the gameplay constants of the navigator.
type Tuning struct {
	MaxSpeed     float64 // Speed cap in world units per second.
	Acceleration float64 // Speed gained per second while accelerating.
	Braking      float64 // Speed lost per second while braking.
	Drag         float64 // Speed lost per second while coasting.
	MoveEpsilon  float64 // Speed below which the car does not move.
	TurnRate     float64 // Facing easing rate per second.

	StraightWeight float64 // Heuristic weight of keeping the current facing.
	SteerWeight    float64 // Heuristic weight of the steering bias.

	ConfusionThreshold float64 // Fear ratio above which confusion starts.
	ConfusionSlope     float64 // Confusion chance gained per unit of fear ratio.
	ConfusionCeiling   float64 // Upper bound of the confusion chance.

	ForkMode ForkMode
}

// DefaultTuning returns the standard feel of the car.
func DefaultTuning() Tuning {
	return Tuning{
		MaxSpeed:     5,
		Acceleration: 5,
		Braking:      8,
		Drag:         0.5,
		MoveEpsilon:  0.05,
		TurnRate:     5,

		StraightWeight: 0.7,
		SteerWeight:    0.3,

		ConfusionThreshold: 0.3,
		ConfusionSlope:     0.8,
		ConfusionCeiling:   0.56,

		ForkMode: ForkPrompt,
	}
}

// Validate checks that every rate is usable.
func (t Tuning) Validate() error {
	switch {
	case t.MaxSpeed <= 0:
		return fmt.Errorf("%w: max speed must be positive", ErrInvalidTuning)
	case t.Acceleration < 0 || t.Braking < 0 || t.Drag < 0:
		return fmt.Errorf("%w: rates must not be negative", ErrInvalidTuning)
	case t.MoveEpsilon < 0 || t.MoveEpsilon >= t.MaxSpeed:
		return fmt.Errorf("%w: move epsilon out of range", ErrInvalidTuning)
	case t.TurnRate <= 0:
		return fmt.Errorf("%w: turn rate must be positive", ErrInvalidTuning)
	case t.StraightWeight < 0 || t.SteerWeight < 0:
		return fmt.Errorf("%w: heuristic weights must not be negative", ErrInvalidTuning)
	case t.ConfusionThreshold < 0 || t.ConfusionThreshold > 1:
		return fmt.Errorf("%w: confusion threshold must be within [0, 1]", ErrInvalidTuning)
	case t.ConfusionSlope < 0 || t.ConfusionCeiling < 0 || t.ConfusionCeiling > 1:
		return fmt.Errorf("%w: confusion curve out of range", ErrInvalidTuning)
	}
	return nil
}

// ConfusionChance returns the probability that an explicit move is swapped
// for another one at the given fear ratio.
func (t Tuning) ConfusionChance(fearRatio float64) float64 {
	if fearRatio <= t.ConfusionThreshold {
		return 0
	}
	return min((fearRatio-t.ConfusionThreshold)*t.ConfusionSlope, t.ConfusionCeiling)
}
