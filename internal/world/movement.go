package world

import (
	"context"
	"errors"
	"time"

	"github.com/Faultbox/midgard-nav/internal/pathfind"
)

var (
	// ErrNoMover is returned when a controller has nothing to move.
	ErrNoMover = errors.New("movement controller has no mover")

	// ErrNotFollowing is returned when waiting on a controller with no path.
	ErrNotFollowing = errors.New("movement controller is not following a path")
)

// SimulationTick is the update period used when a walk is simulated locally.
const SimulationTick = 50 * time.Millisecond

// Mover is an entity that walks straight toward one destination at a time.
type Mover interface {
	Position() pathfind.Position
	SetDestination(x, y float64)
	ClearDestination()
	Arrived() bool
}

// Updater is a mover that advances itself by elapsed time.
type Updater interface {
	Mover
	Update(deltaMs float64) bool
}

// MovementController walks a mover along a path, one waypoint at a time.
type MovementController struct {
	finder *pathfind.Finder
	mover  Mover

	// Current path, origin excluded
	path      pathfind.Path
	pathIndex int

	IsFollowingPath bool
}

// NewMovementController creates a new movement controller.
func NewMovementController(finder *pathfind.Finder, mover Mover) *MovementController {
	return &MovementController{
		finder: finder,
		mover:  mover,
	}
}

// SetMover sets the entity to control.
func (mc *MovementController) SetMover(mover Mover) {
	mc.ClearPath()
	mc.mover = mover
}

// MoveTo plans a path from the mover's position to target and starts
// following it. The planned path is returned.
func (mc *MovementController) MoveTo(ctx context.Context, target pathfind.Position, opts pathfind.Options) (pathfind.Path, error) {
	if mc.mover == nil || mc.finder == nil {
		return nil, ErrNoMover
	}

	path, err := mc.finder.FindPath(ctx, mc.mover.Position(), target, opts)
	if err != nil {
		return nil, err
	}
	mc.Follow(path)
	return path, nil
}

// Follow starts following path. The first waypoint is taken as the
// mover's current position and skipped.
func (mc *MovementController) Follow(path pathfind.Path) {
	mc.ClearPath()
	if mc.mover == nil || len(path) < 2 {
		return
	}
	mc.path = path[1:]
	mc.IsFollowingPath = true
	mc.setNextWaypoint()
}

// Update advances to the next waypoint once the mover has arrived.
func (mc *MovementController) Update() {
	if mc.mover == nil || !mc.IsFollowingPath || !mc.mover.Arrived() {
		return
	}
	if mc.pathIndex < len(mc.path) {
		mc.setNextWaypoint()
		return
	}
	mc.IsFollowingPath = false
}

// ClearPath stops the current path following.
func (mc *MovementController) ClearPath() {
	mc.path = nil
	mc.pathIndex = 0
	mc.IsFollowingPath = false
	if mc.mover != nil {
		mc.mover.ClearDestination()
	}
}

// Path returns the remaining waypoints of the current path.
func (mc *MovementController) Path() pathfind.Path {
	return mc.path
}

// PathIndex returns the index of the next waypoint to be issued.
func (mc *MovementController) PathIndex() int {
	return mc.pathIndex
}

func (mc *MovementController) setNextWaypoint() {
	waypoint := mc.path[mc.pathIndex]
	mc.mover.SetDestination(waypoint.X, waypoint.Y)
	mc.pathIndex++
}

// Arrival returns a function that blocks until the mover reaches the
// waypoint it is heading for, advancing the mover every tick and then the
// controller to the following waypoint. Its signature matches the arrival
// hook of a route walk, so a local character can follow a route as the
// movement commands are sent.
func (mc *MovementController) Arrival(tick time.Duration) func(ctx context.Context, from, to pathfind.Position) error {
	return func(ctx context.Context, from, to pathfind.Position) error {
		u, ok := mc.mover.(Updater)
		if !ok {
			return ErrNoMover
		}
		if !mc.IsFollowingPath {
			return ErrNotFollowing
		}

		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				mc.ClearPath()
				return ctx.Err()
			case now := <-ticker.C:
				u.Update(float64(now.Sub(last)) / float64(time.Millisecond))
				last = now
				if u.Arrived() {
					mc.Update()
					return nil
				}
			}
		}
	}
}
