package navigator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-nav/internal/pathfind"
	"github.com/Faultbox/midgard-nav/internal/world"
)

// ErrBadTarget is returned for target descriptors that cannot be parsed.
var ErrBadTarget = errors.New("bad target")

// Target names where to go: explicit coordinates, optionally on a map,
// or a registered location name.
type Target struct {
	Name string

	X, Y float64
	Map  string // empty = origin's map
}

// At returns a coordinate target. An empty mapID means the origin's map.
func At(x, y float64, mapID string) Target {
	return Target{X: x, Y: y, Map: mapID}
}

// Location returns a named target.
func Location(name string) Target {
	return Target{Name: name}
}

// ParseTarget accepts "x,y", "x,y,map" or a location name.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("%w: empty", ErrBadTarget)
	}

	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return Location(s), nil
	}

	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	switch {
	case errX != nil && errY != nil:
		return Location(s), nil
	case errX != nil:
		return Target{}, fmt.Errorf("%w: x coordinate %q", ErrBadTarget, parts[0])
	case errY != nil:
		return Target{}, fmt.Errorf("%w: y coordinate %q", ErrBadTarget, parts[1])
	}

	t := At(x, y, "")
	if len(parts) == 3 {
		t.Map = strings.TrimSpace(parts[2])
		if t.Map == "" {
			return Target{}, fmt.Errorf("%w: empty map in %q", ErrBadTarget, s)
		}
	}
	return t, nil
}

// Resolve turns the target into a position. Coordinate targets without a
// map land on the origin's map; names are looked up in locs.
func (t Target) Resolve(origin pathfind.Position, locs *world.Locations) (pathfind.Position, error) {
	if t.Name != "" {
		if locs == nil {
			return pathfind.Position{}, fmt.Errorf("%w: %q", world.ErrUnknownLocation, t.Name)
		}
		return locs.Resolve(t.Name)
	}
	mapID := t.Map
	if mapID == "" {
		mapID = origin.Map
	}
	return pathfind.Position{X: t.X, Y: t.Y, Map: mapID}, nil
}

func (t Target) String() string {
	switch {
	case t.Name != "":
		return t.Name
	case t.Map != "":
		return fmt.Sprintf("%g,%g,%s", t.X, t.Y, t.Map)
	default:
		return fmt.Sprintf("%g,%g", t.X, t.Y)
	}
}
