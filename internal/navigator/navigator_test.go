package navigator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-nav/internal/collision"
	"github.com/Faultbox/midgard-nav/internal/pathfind"
	"github.com/Faultbox/midgard-nav/internal/world"
)

// newTestNavigator builds a navigator over a plane with one wall
// x in [100,150], y in [-50,50] on map "field".
func newTestNavigator(t *testing.T) (*Navigator, *Metrics, *observer.ObservedLogs) {
	t.Helper()
	o := collision.NewRectOracle()
	o.AddObstacle("field", collision.Rect{MinX: 100, MinY: -50, MaxX: 150, MaxY: 50})
	o.SetBounds("box", collision.Rect{MinX: 0, MinY: 0, MaxX: 64, MaxY: 64})

	locs := world.NewLocations()
	locs.Add("Beyond", pathfind.Position{X: 300, Y: 0, Map: "field"})

	core, logs := observer.New(zapcore.DebugLevel)
	metrics := NewMetrics(prometheus.NewRegistry())
	finder := pathfind.NewFinder(o, pathfind.DefaultParams())
	return New(finder, locs, zap.New(core), metrics), metrics, logs
}

func TestPlan(t *testing.T) {
	nav, metrics, logs := newTestNavigator(t)
	origin := pathfind.Position{X: 0, Y: 0, Map: "field"}

	route, err := nav.Plan(context.Background(), origin, Location("beyond"), pathfind.DefaultOptions())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if route.ID == "" {
		t.Error("route should have a request id")
	}
	if route.Target != (pathfind.Position{X: 300, Y: 0, Map: "field"}) {
		t.Errorf("Target = %v", route.Target)
	}
	if len(route.Path) < 3 || len(route.Raw) < len(route.Path) {
		t.Errorf("unexpected path sizes: path %d raw %d", len(route.Path), len(route.Raw))
	}
	if route.Path[0] != origin {
		t.Errorf("path starts at %v, want %v", route.Path[0], origin)
	}
	if route.Expanded == 0 || route.Cost <= 300 {
		t.Errorf("unexpected stats: expanded %d cost %.1f", route.Expanded, route.Cost)
	}

	if got := testutil.ToFloat64(metrics.searches.WithLabelValues(ResultOK)); got != 1 {
		t.Errorf("ok searches = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(metrics.waypoints); n != 1 {
		t.Errorf("waypoints histogram series = %d, want 1", n)
	}

	planned := logs.FilterMessage("route planned").All()
	if len(planned) != 1 {
		t.Fatalf("expected one 'route planned' entry, got %d", len(planned))
	}
	if got := planned[0].ContextMap()["request"]; got != route.ID {
		t.Errorf("logged request = %v, want %s", got, route.ID)
	}
}

func TestPlanFailures(t *testing.T) {
	nav, metrics, logs := newTestNavigator(t)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		origin  pathfind.Position
		target  Target
		opts    pathfind.Options
		wantErr error
		result  string
	}{
		{
			name:    "cross map",
			ctx:     context.Background(),
			origin:  pathfind.Position{Map: "field"},
			target:  At(10, 10, "box"),
			opts:    pathfind.DefaultOptions(),
			wantErr: pathfind.ErrUnsupported,
			result:  ResultUnsupported,
		},
		{
			name:    "outside bounds",
			ctx:     context.Background(),
			origin:  pathfind.Position{X: 32, Y: 32, Map: "box"},
			target:  At(500, 500, ""),
			opts:    pathfind.DefaultOptions(),
			wantErr: pathfind.ErrNoPath,
			result:  ResultNoPath,
		},
		{
			name:    "budget",
			ctx:     context.Background(),
			origin:  pathfind.Position{Map: "field"},
			target:  At(300, 0, ""),
			opts:    pathfind.Options{MaxDistance: 250, Simplify: true},
			wantErr: pathfind.ErrNoPath,
			result:  ResultNoPath,
		},
		{
			name:    "cancelled",
			ctx:     cancelled,
			origin:  pathfind.Position{Map: "field"},
			target:  At(300, 0, ""),
			opts:    pathfind.DefaultOptions(),
			wantErr: context.Canceled,
			result:  ResultCancelled,
		},
		{
			name:    "unknown location",
			ctx:     context.Background(),
			origin:  pathfind.Position{Map: "field"},
			target:  Location("nowhere"),
			opts:    pathfind.DefaultOptions(),
			wantErr: world.ErrUnknownLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before float64
			if tt.result != "" {
				before = testutil.ToFloat64(metrics.searches.WithLabelValues(tt.result))
			}
			_, err := nav.Plan(tt.ctx, tt.origin, tt.target, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Plan error = %v, want %v", err, tt.wantErr)
			}
			if tt.result != "" {
				if got := testutil.ToFloat64(metrics.searches.WithLabelValues(tt.result)); got != before+1 {
					t.Errorf("%s searches = %v, want %v", tt.result, got, before+1)
				}
			}
		})
	}

	if n := logs.FilterMessage("route planning failed").Len(); n != 4 {
		t.Errorf("failure log entries = %d, want 4", n)
	}
}

// recorder is an Emitter that remembers every movement.
type recorder struct {
	moves [][2]pathfind.Position
	fail  int // fail on this move number, 0 = never
}

func (r *recorder) Move(from, to pathfind.Position) error {
	r.moves = append(r.moves, [2]pathfind.Position{from, to})
	if len(r.moves) == r.fail {
		return errors.New("socket closed")
	}
	return nil
}

func TestWalk(t *testing.T) {
	nav, _, _ := newTestNavigator(t)
	route, err := nav.Plan(context.Background(), pathfind.Position{Map: "field"}, At(300, 0, ""), pathfind.DefaultOptions())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	rec := &recorder{}
	arrivals := 0
	arrive := func(ctx context.Context, from, to pathfind.Position) error {
		arrivals++
		return nil
	}
	if err := nav.Walk(context.Background(), route, rec, arrive); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(rec.moves) != len(route.Path)-1 || arrivals != len(rec.moves) {
		t.Fatalf("moves = %d arrivals = %d, want %d", len(rec.moves), arrivals, len(route.Path)-1)
	}
	for i, m := range rec.moves {
		if m[0] != route.Path[i] || m[1] != route.Path[i+1] {
			t.Errorf("move %d = %v, want %v -> %v", i, m, route.Path[i], route.Path[i+1])
		}
	}

	failing := &recorder{fail: 2}
	if err := nav.Walk(context.Background(), route, failing, nil); err == nil {
		t.Error("Walk should surface emitter errors")
	}
	if len(failing.moves) != 2 {
		t.Errorf("Walk continued after failure: %d moves", len(failing.moves))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := nav.Walk(ctx, route, &recorder{}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Walk with cancelled context error = %v, want context.Canceled", err)
	}
}

func TestTravelTime(t *testing.T) {
	from := pathfind.Position{Map: "m"}
	to := pathfind.Position{X: 3, Y: 4, Map: "m"}

	start := time.Now()
	if err := TravelTime(1000)(context.Background(), from, to); err != nil {
		t.Fatalf("TravelTime failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("waited %v, want at least 5ms", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := TravelTime(0.001)(ctx, from, to); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled TravelTime error = %v, want context.Canceled", err)
	}
}
