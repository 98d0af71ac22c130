// Package navigator plans routes with the path finder and walks them over
// a movement transport.
package navigator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-nav/internal/pathfind"
	"github.com/Faultbox/midgard-nav/internal/world"
)

// Route is a planned path with its search statistics.
type Route struct {
	ID       string
	Origin   pathfind.Position
	Target   pathfind.Position
	Path     pathfind.Path
	Raw      pathfind.Path
	Cost     float64
	Expanded int
	Yields   int
	Duration time.Duration
}

// Navigator resolves targets and plans routes.
type Navigator struct {
	finder    *pathfind.Finder
	locations *world.Locations
	log       *zap.Logger
	metrics   *Metrics
}

// New creates a navigator. locations, log and metrics may be nil.
func New(finder *pathfind.Finder, locations *world.Locations, log *zap.Logger, metrics *Metrics) *Navigator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Navigator{
		finder:    finder,
		locations: locations,
		log:       log,
		metrics:   metrics,
	}
}

// Plan resolves target and searches for a route from origin.
func (n *Navigator) Plan(ctx context.Context, origin pathfind.Position, target Target, opts pathfind.Options) (*Route, error) {
	dest, err := target.Resolve(origin, n.locations)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := n.log.With(
		zap.String("request", id),
		zap.Stringer("origin", origin),
		zap.Stringer("target", dest))
	log.Debug("planning route",
		zap.Float64("max_distance", opts.MaxDistance),
		zap.Bool("exact", opts.Exact))

	start := time.Now()
	var res *pathfind.Result
	if err = ctx.Err(); err == nil {
		res, err = n.finder.Search(ctx, origin, dest, opts)
	}
	elapsed := time.Since(start)

	if err != nil {
		result := classify(err)
		n.metrics.observe(result, elapsed.Seconds(), nil)
		log.Warn("route planning failed",
			zap.String("result", result),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	route := &Route{
		ID:       id,
		Origin:   origin,
		Target:   dest,
		Path:     res.Path,
		Raw:      res.Raw,
		Cost:     res.Cost,
		Expanded: res.Expanded,
		Yields:   res.Yields,
		Duration: elapsed,
	}
	n.metrics.observe(ResultOK, elapsed.Seconds(), route)
	log.Info("route planned",
		zap.Int("waypoints", len(route.Path)),
		zap.Int("raw_waypoints", len(route.Raw)),
		zap.Float64("cost", route.Cost),
		zap.Int("expanded", route.Expanded),
		zap.Duration("elapsed", elapsed))
	return route, nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, pathfind.ErrNoPath):
		return ResultNoPath
	case errors.Is(err, pathfind.ErrUnsupported):
		return ResultUnsupported
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCancelled
	default:
		return ResultError
	}
}
