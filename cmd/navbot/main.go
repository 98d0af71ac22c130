// Package main is the entry point for the navigation bot. It plans a route
// over the loaded maps and walks it on a game server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-nav/internal/app"
	"github.com/Faultbox/midgard-nav/internal/config"
	"github.com/Faultbox/midgard-nav/internal/logger"
	"github.com/Faultbox/midgard-nav/internal/navigator"
	"github.com/Faultbox/midgard-nav/internal/network"
	"github.com/Faultbox/midgard-nav/internal/pathfind"
	"github.com/Faultbox/midgard-nav/internal/world"
)

// newMapEvent is sent by the server when the character changes map.
const newMapEvent = "new_map"

var (
	errMapChanged     = errors.New("character left the map before arriving")
	errConnectionLost = errors.New("connection lost before arriving")
)

var (
	flagFrom = flag.String("from", "", `Start position "x,y,map" or location name`)
	flagTo   = flag.String("to", "", `Destination "x,y[,map]" or location name`)
	flagDry  = flag.Bool("dry-run", false, "Plan the route without connecting")
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	if *flagFrom == "" || *flagTo == "" {
		fmt.Fprintln(os.Stderr, "Usage: navbot [options] -from <position> -to <target>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.SetComponentLevels(cfg.Logging.Components)
	defer logger.Sync()

	logger.Info("=== Midgard Navigation Bot ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
			return
		}
		logger.Error("navigation failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("arrived")
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(cfg, logger.Named("app"))
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Metrics.ListenAddr != "" {
		srv := serveMetrics(cfg.Metrics.ListenAddr, a.Registry)
		defer srv.Close()
	}

	from, err := navigator.ParseTarget(*flagFrom)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	origin, err := from.Resolve(pathfind.Position{}, a.Locations)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	if origin.Map == "" {
		return errors.New("-from: map name required")
	}
	target, err := navigator.ParseTarget(*flagTo)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}

	if _, err := a.LoadMap(origin.Map); err != nil {
		return err
	}

	route, err := a.Navigator.Plan(ctx, origin, target, cfg.Pathfinding.Options())
	if err != nil {
		return err
	}
	if *flagDry {
		for i, p := range route.Path {
			logger.Info("waypoint", zap.Int("index", i), zap.Stringer("position", p))
		}
		return nil
	}

	client := network.New(logger.Named("network"))
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Network.ConnectTimeout)
	err = client.Connect(connectCtx, cfg.Network.ServerURL)
	cancel()
	if err != nil {
		return err
	}
	defer client.Close()

	logger.Info("connected",
		zap.String("server", cfg.Network.ServerURL),
		zap.String("sid", client.SID()),
		zap.String("character", cfg.Network.Character))

	// A local character mirrors the walk so the bot knows where it stands.
	char := world.NewCharacter(cfg.Network.Character, origin)
	mc := world.NewMovementController(a.Finder, char)
	mc.Follow(route.Path)

	err = walk(ctx, a.Navigator, route, client, mc.Arrival(world.SimulationTick))
	logger.Info("walk ended",
		zap.Stringer("position", char.Position()),
		zap.Int("waypoint", mc.PathIndex()),
		zap.Int("waypoints", len(route.Path)-1))
	return err
}

// session is the part of the network client a walk depends on.
type session interface {
	navigator.Emitter
	NextEvent(ctx context.Context, event string) ([]json.RawMessage, error)
	MapChanged()
	Err() error
}

// walk follows route over s. The walk stops early when the server moves the
// character to another map or the session ends.
func walk(ctx context.Context, nav *navigator.Navigator, route *navigator.Route, s session, arrive navigator.ArrivalFunc) error {
	walkCtx, cancelWalk := context.WithCancelCause(ctx)
	defer cancelWalk(nil)

	watched := make(chan struct{})
	go func() {
		defer close(watched)
		_, err := s.NextEvent(walkCtx, newMapEvent)
		switch {
		case err == nil:
			s.MapChanged()
			cancelWalk(errMapChanged)
		case walkCtx.Err() == nil:
			cancelWalk(errConnectionLost)
		}
	}()

	err := nav.Walk(walkCtx, route, s, arrive)
	cancelWalk(nil)
	<-watched
	if err == nil {
		return nil
	}

	switch cause := context.Cause(walkCtx); {
	case errors.Is(cause, errMapChanged):
		return errMapChanged
	case errors.Is(cause, errConnectionLost):
		if serr := s.Err(); serr != nil {
			return fmt.Errorf("%w: %v", errConnectionLost, serr)
		}
		return errConnectionLost
	}
	return err
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
