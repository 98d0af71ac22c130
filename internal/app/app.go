// Package app wires configuration into the runtime components shared by
// the commands.
package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-nav/internal/assets"
	"github.com/Faultbox/midgard-nav/internal/collision"
	"github.com/Faultbox/midgard-nav/internal/config"
	"github.com/Faultbox/midgard-nav/internal/navigator"
	"github.com/Faultbox/midgard-nav/internal/pathfind"
	"github.com/Faultbox/midgard-nav/internal/world"
)

// App holds the components built from one configuration.
type App struct {
	Config    *config.Config
	Assets    *assets.Manager
	World     *world.Manager
	Oracle    *collision.Cached
	Locations *world.Locations
	Finder    *pathfind.Finder
	Navigator *navigator.Navigator
	Registry  *prometheus.Registry
}

// New opens the configured data sources and builds the navigation stack.
// Maps are loaded on demand with LoadMap.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	a := &App{
		Config:   cfg,
		Assets:   assets.NewManager(),
		Registry: prometheus.NewRegistry(),
	}

	for _, path := range cfg.Data.GRFPaths {
		if err := a.Assets.AddArchive(path); err != nil {
			// A missing default archive is normal when maps come from directories.
			log.Warn("skipping archive", zap.String("path", path), zap.Error(err))
		}
	}
	for _, dir := range cfg.Data.MapDirs {
		if err := a.Assets.AddDir(dir); err != nil {
			a.Assets.Close()
			return nil, fmt.Errorf("map directory: %w", err)
		}
	}
	if a.Assets.Sources() == 0 {
		a.Assets.Close()
		return nil, errors.New("no GRF archive or map directory could be opened")
	}

	a.World = world.NewManager(a.Assets, cfg.Data.CellSize)
	a.Oracle = collision.NewCached(a.World.Oracle(), 0)

	a.Locations = world.NewLocations()
	for name, loc := range cfg.Locations {
		if err := a.Locations.Add(name, loc.Position()); err != nil {
			a.Assets.Close()
			return nil, fmt.Errorf("location %q: %w", name, err)
		}
	}

	a.Finder = pathfind.NewFinder(a.Oracle, cfg.Pathfinding.Params())
	a.Navigator = navigator.New(a.Finder, a.Locations, log.Named("navigator"),
		navigator.NewMetrics(a.Registry))
	return a, nil
}

// LoadMap loads a map. Cached oracle answers are dropped because a newly
// loaded map can change them.
func (a *App) LoadMap(name string) (*world.Map, error) {
	if mp, err := a.World.Get(name); err == nil {
		return mp, nil
	}
	mp, err := a.World.LoadMap(name)
	if err != nil {
		return nil, err
	}
	a.Oracle.Reset()
	return mp, nil
}

// Close releases the data sources.
func (a *App) Close() error {
	return a.Assets.Close()
}
