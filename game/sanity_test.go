package game

import (
	"testing"

	"github.com/arcade-cabinet/beppo-laughs/geometry"
	"github.com/stretchr/testify/assert"
)

func TestSanity(t *testing.T) {
	t.Run("Discoveries raise fear", func(t *testing.T) {
		s := NewSanity(100)
		s.Visit(1)
		s.Visit(2)
		assert.Equal(t, SanityReading{Fear: 2, Despair: 0, Max: 100}, s.Reading())
		assert.Equal(t, 2, s.Explored())
	})

	t.Run("Revisits raise despair with a cap", func(t *testing.T) {
		s := NewSanity(100)
		expected := []float64{0, 1, 2.5, 4.5, 7, 10, 13, 16}
		for i, want := range expected {
			s.Visit(7)
			assert.InDelta(t, want, s.Reading().Despair, 1e-9, "visit %d", i+1)
		}
		assert.Equal(t, 1.0, s.Reading().Fear)
		assert.Equal(t, len(expected), s.Visits(7))
		assert.Len(t, s.Path(), len(expected))
	})

	t.Run("Items relieve both meters", func(t *testing.T) {
		s := NewSanity(100)
		for i := range 8 {
			s.Visit(geometry.NodeID(i))
		}
		s.Visit(0)
		s.Relieve(5)
		assert.Equal(t, 3.0, s.Reading().Fear)
		assert.Zero(t, s.Reading().Despair)
	})

	t.Run("Meters stop at the maximum", func(t *testing.T) {
		s := NewSanity(3)
		for i := range 10 {
			s.Visit(geometry.NodeID(i))
		}
		assert.Equal(t, 3.0, s.Reading().Fear)
		assert.Equal(t, ReasonFear, s.Outcome())
	})

	t.Run("Outcome reasons", func(t *testing.T) {
		s := NewSanity(2)
		assert.Equal(t, ReasonNone, s.Outcome())

		s.Visit(1)
		s.Visit(1)
		s.Visit(1)
		assert.Equal(t, ReasonDespair, s.Outcome())

		s.Visit(2)
		assert.Equal(t, ReasonBoth, s.Outcome())
	})

	t.Run("Level and inversion", func(t *testing.T) {
		s := NewSanity(10)
		assert.Equal(t, 10.0, s.Level())
		assert.False(t, s.Inverted())

		for i := range 10 {
			s.Visit(geometry.NodeID(i))
		}
		s.Visit(0)
		s.Visit(0)
		s.Visit(0)
		// fear 10, despair 1 + 1.5 + 2 = 4.5
		assert.InDelta(t, 10-14.5/2, s.Level(), 1e-9)
		assert.True(t, s.Inverted())
	})

	t.Run("Default maximum", func(t *testing.T) {
		assert.Equal(t, 100.0, NewSanity(0).Reading().Max)
		assert.Equal(t, 100.0, NewSanity(-5).Reading().Max)
	})

	t.Run("Fear ratio", func(t *testing.T) {
		assert.Equal(t, 0.25, SanityReading{Fear: 25, Max: 100}.FearRatio())
		assert.Zero(t, SanityReading{Fear: 25}.FearRatio())
	})
}
