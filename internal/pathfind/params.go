package pathfind

import (
	"errors"
	"fmt"
	gomath "math"
	"time"
)

// Search errors.
var (
	// ErrUnsupported is returned when origin and target are on different maps.
	ErrUnsupported = errors.New("pathfind: cross-map routing is not supported")
	// ErrNoPath is returned when the frontier is exhausted without reaching the goal.
	ErrNoPath = errors.New("pathfind: no path found")
	// ErrPending is returned by Stepper.Result while the search is still running.
	ErrPending = errors.New("pathfind: search still running")
	// ErrInvalidParams wraps Params validation failures.
	ErrInvalidParams = errors.New("pathfind: invalid parameters")
)

// Default tunables.
const (
	DefaultTileSize       = 16.0
	DefaultSmallStepRange = 64.0
	DefaultRange          = 12.0
	DefaultMaxSegment     = 256.0
	DefaultYieldInterval  = 10 * time.Millisecond
	DefaultMapPenalty     = 1e6
)

// Params holds the finder tunables.
type Params struct {
	// TileSize is the coarse lattice step.
	TileSize float64
	// SmallStepRange is the travelled distance below which the lattice
	// step is halved.
	SmallStepRange float64
	// Range is the close-enough radius of the non-exact goal test.
	Range float64
	// MaxSegment bounds the length of a simplified segment.
	MaxSegment float64
	// YieldInterval is the longest stretch of work between yields.
	// Zero disables yielding.
	YieldInterval time.Duration
	// MapPenalty is added to the heuristic between different maps.
	MapPenalty float64
}

// DefaultParams returns the stock tunables.
func DefaultParams() Params {
	return Params{
		TileSize:       DefaultTileSize,
		SmallStepRange: DefaultSmallStepRange,
		Range:          DefaultRange,
		MaxSegment:     DefaultMaxSegment,
		YieldInterval:  DefaultYieldInterval,
		MapPenalty:     DefaultMapPenalty,
	}
}

// Validate checks that the tunables describe a terminating search.
func (p Params) Validate() error {
	switch {
	case p.TileSize <= 0:
		return fmt.Errorf("%w: tile size must be positive, got %v", ErrInvalidParams, p.TileSize)
	case p.SmallStepRange < 0:
		return fmt.Errorf("%w: small step range must not be negative, got %v", ErrInvalidParams, p.SmallStepRange)
	case p.MaxSegment <= 0:
		return fmt.Errorf("%w: max segment must be positive, got %v", ErrInvalidParams, p.MaxSegment)
	case p.YieldInterval < 0:
		return fmt.Errorf("%w: yield interval must not be negative, got %v", ErrInvalidParams, p.YieldInterval)
	case p.MapPenalty < 0:
		return fmt.Errorf("%w: map penalty must not be negative, got %v", ErrInvalidParams, p.MapPenalty)
	}

	// Every point must lie within Range of some coarse lattice point.
	if halfDiagonal := p.TileSize * gomath.Sqrt2 / 2; p.Range <= halfDiagonal {
		return fmt.Errorf("%w: range %v must exceed half the lattice diagonal %.2f",
			ErrInvalidParams, p.Range, halfDiagonal)
	}
	return nil
}

// Options controls a single search.
type Options struct {
	// MaxDistance prunes expansions whose cumulative cost exceeds it.
	// Zero or negative means unbounded.
	MaxDistance float64
	// Exact requires the path to end on the target itself.
	Exact bool
	// Simplify enables the segment simplification pass.
	Simplify bool
}

// DefaultOptions returns options with simplification enabled.
func DefaultOptions() Options {
	return Options{Simplify: true}
}

func (o Options) bounded() bool {
	return o.MaxDistance > 0
}
