package navigator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-nav/internal/pathfind"
)

// Emitter sends one straight movement command.
type Emitter interface {
	Move(from, to pathfind.Position) error
}

// ArrivalFunc blocks until a movement from one waypoint to the next has
// completed.
type ArrivalFunc func(ctx context.Context, from, to pathfind.Position) error

// TravelTime waits for the time a mover at speed (units per second) needs
// to cover each segment.
func TravelTime(speed float64) ArrivalFunc {
	return func(ctx context.Context, from, to pathfind.Position) error {
		if speed <= 0 {
			return nil
		}
		d := time.Duration(from.Distance(to) / speed * float64(time.Second))
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

// Walk emits one movement per segment of the route. When arrive is not
// nil it is called after each movement before the next one is sent.
func (n *Navigator) Walk(ctx context.Context, route *Route, e Emitter, arrive ArrivalFunc) error {
	log := n.log.With(zap.String("request", route.ID))

	for i := 1; i < len(route.Path); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		from, to := route.Path[i-1], route.Path[i]
		log.Debug("move", zap.Int("segment", i), zap.Stringer("to", to))
		if err := e.Move(from, to); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if arrive != nil {
			if err := arrive(ctx, from, to); err != nil {
				return err
			}
		}
	}
	log.Info("route walked", zap.Int("segments", len(route.Path)-1))
	return nil
}
