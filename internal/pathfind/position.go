// Package pathfind implements best-first search over continuous 2D maps.
//
// The finder samples an adaptive lattice around the origin, asks an
// external Oracle whether each straight hop is unobstructed, and returns a
// waypoint path that is optionally simplified into a few long segments.
package pathfind

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-nav/pkg/math"
)

// Position is a point on a named map.
type Position struct {
	X, Y float64
	Map  string
}

// String formats p as "(x, y, map)".
func (p Position) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %s)", p.X, p.Y, p.Map)
}

// NodeKey identifies a search node: the position rounded to whole units.
type NodeKey struct {
	X, Y int64
	Map  string
}

// Key returns the node identity of p.
func (p Position) Key() NodeKey {
	return NodeKey{
		X:   int64(gomath.Round(p.X)),
		Y:   int64(gomath.Round(p.Y)),
		Map: p.Map,
	}
}

// Vec returns the (x, y) part of p.
func (p Position) Vec() math.Vec2 {
	return math.Vec2{X: p.X, Y: p.Y}
}

// Distance returns the straight-line distance between p and other,
// ignoring the map identifier.
func (p Position) Distance(other Position) float64 {
	return p.Vec().Distance(other.Vec())
}

// SameNode reports whether p and other resolve to the same search node.
func (p Position) SameNode(other Position) bool {
	return p.Key() == other.Key()
}

// Path is an ordered waypoint sequence, origin first.
type Path []Position

// Length returns the total travelled length of the path.
func (p Path) Length() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += p[i-1].Distance(p[i])
	}
	return total
}

// Last returns the final waypoint. It panics on an empty path.
func (p Path) Last() Position {
	return p[len(p)-1]
}

// Quantize snaps v to the nearest multiple of step.
func Quantize(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return gomath.Round(v/step) * step
}
