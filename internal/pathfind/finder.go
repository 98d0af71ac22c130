package pathfind

import (
	"context"
	"runtime"

	"github.com/Faultbox/midgard-nav/pkg/math"
)

// Oracle reports whether straight-line movement between two points of the
// same map is unobstructed.
type Oracle interface {
	CanMove(mapID string, fromX, fromY, toX, toY float64) bool
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(mapID string, fromX, fromY, toX, toY float64) bool

// CanMove calls f.
func (f OracleFunc) CanMove(mapID string, fromX, fromY, toX, toY float64) bool {
	return f(mapID, fromX, fromY, toX, toY)
}

// Result is the outcome of a successful search.
type Result struct {
	Path     Path    // returned waypoints, simplified when requested
	Raw      Path    // one waypoint per expansion step
	Cost     float64 // travelled length of Raw
	Expanded int     // frontier pops that reached the goal test
	Yields   int     // times the search gave up its time slice
}

// Finder runs searches against one oracle. A Finder holds no per-search
// state and may be shared between goroutines if its oracle can.
type Finder struct {
	oracle Oracle
	params Params
}

// NewFinder creates a finder. Params are used as given; call
// Params.Validate first when they come from user input.
func NewFinder(oracle Oracle, params Params) *Finder {
	return &Finder{oracle: oracle, params: params}
}

// Params returns the finder tunables.
func (f *Finder) Params() Params {
	return f.params
}

// FindPath searches for a route from origin toward target.
func (f *Finder) FindPath(ctx context.Context, origin, target Position, opts Options) (Path, error) {
	res, err := f.Search(ctx, origin, target, opts)
	if err != nil {
		return nil, err
	}
	return res.Path, nil
}

// Search is FindPath with search statistics.
//
// The search yields the processor at the top of its loop whenever the
// yield interval has elapsed, and gives up with ctx.Err() if the context
// was cancelled meanwhile.
func (f *Finder) Search(ctx context.Context, origin, target Position, opts Options) (*Result, error) {
	s, err := f.newSearch(origin, target, opts)
	if err != nil {
		return nil, err
	}

	for !s.run(f.params.YieldInterval) {
		s.yields++
		runtime.Gosched()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return s.result()
}

// Heuristic estimates the remaining cost from a to b: the straight-line
// distance, plus the map penalty when the maps differ.
func (f *Finder) Heuristic(a, b Position) float64 {
	h := a.Distance(b)
	if a.Map != b.Map {
		h += f.params.MapPenalty
	}
	return h
}

// StepFor returns the lattice step used after travelling the given distance.
func (f *Finder) StepFor(traveled float64) float64 {
	if traveled < f.params.SmallStepRange {
		return f.params.TileSize / 2
	}
	return f.params.TileSize
}

// neighborOffsets lists the 8 lattice directions: S, SW, W, NW, N, NE, E, SE.
var neighborOffsets = [8]math.Vec2{
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
	{X: 0, Y: -1},
	{X: 1, Y: -1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
}

// Neighbors returns the lattice points around pos that the oracle lets pos
// move to directly. The lattice is anchored at multiples of step, so it does
// not drift with the continuous starting coordinate.
func (f *Finder) Neighbors(pos Position, step float64) []Position {
	base := pos.Vec().Snap(step)

	out := make([]Position, 0, len(neighborOffsets))
	for _, d := range neighborOffsets {
		c := base.Add(d.Scale(step))
		candidate := Position{X: c.X, Y: c.Y, Map: pos.Map}
		if f.canMove(pos, candidate) {
			out = append(out, candidate)
		}
	}
	return out
}

func (f *Finder) canMove(from, to Position) bool {
	return f.oracle.CanMove(from.Map, from.X, from.Y, to.X, to.Y)
}
