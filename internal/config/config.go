// Package config handles configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/midgard-nav/internal/pathfind"
)

// Config holds all settings.
type Config struct {
	Pathfinding PathfindingConfig         `yaml:"pathfinding" json:"pathfinding"`
	Data        DataConfig                `yaml:"data" json:"data"`
	Network     NetworkConfig             `yaml:"network" json:"network"`
	Logging     LoggingConfig             `yaml:"logging" json:"logging"`
	Metrics     MetricsConfig             `yaml:"metrics" json:"metrics"`
	Locations   map[string]LocationConfig `yaml:"locations" json:"locations"`
}

// PathfindingConfig holds finder tunables and default search options.
type PathfindingConfig struct {
	TileSize       float64       `yaml:"tile_size" json:"tile_size"`
	SmallStepRange float64       `yaml:"small_step_range" json:"small_step_range"`
	Range          float64       `yaml:"range" json:"range"`
	MaxSegment     float64       `yaml:"max_segment" json:"max_segment"`
	YieldInterval  time.Duration `yaml:"yield_interval" json:"yield_interval"`
	MapPenalty     float64       `yaml:"map_penalty" json:"map_penalty"`

	MaxDistance float64 `yaml:"max_distance" json:"max_distance"` // 0 = unbounded
	Exact       bool    `yaml:"exact" json:"exact"`
	Simplify    bool    `yaml:"simplify" json:"simplify"`
}

// DataConfig holds game data locations.
type DataConfig struct {
	GRFPaths []string `yaml:"grf_paths" json:"grf_paths"` // Paths to GRF archives
	MapDirs  []string `yaml:"map_dirs" json:"map_dirs"`   // Directories holding data/<map>.gat
	CellSize float64  `yaml:"cell_size" json:"cell_size"` // World units per GAT cell
}

// NetworkConfig holds server connection settings.
type NetworkConfig struct {
	ServerURL      string        `yaml:"server_url" json:"server_url"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	Character      string        `yaml:"character" json:"character"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	LogFile string `yaml:"log_file" json:"log_file"`

	// Components overrides the level of named components, e.g. network: debug.
	Components map[string]string `yaml:"components,omitempty" json:"components,omitempty"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"` // empty = disabled
}

// LocationConfig is a named point on a map.
type LocationConfig struct {
	Map string  `yaml:"map" json:"map"`
	X   float64 `yaml:"x" json:"x"`
	Y   float64 `yaml:"y" json:"y"`
}

// Position converts the location to a finder position.
func (l LocationConfig) Position() pathfind.Position {
	return pathfind.Position{X: l.X, Y: l.Y, Map: l.Map}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	p := pathfind.DefaultParams()
	return &Config{
		Pathfinding: PathfindingConfig{
			TileSize:       p.TileSize,
			SmallStepRange: p.SmallStepRange,
			Range:          p.Range,
			MaxSegment:     p.MaxSegment,
			YieldInterval:  p.YieldInterval,
			MapPenalty:     p.MapPenalty,
			Simplify:       true,
		},
		Data: DataConfig{
			GRFPaths: []string{"data.grf"},
			CellSize: 5,
		},
		Network: NetworkConfig{
			ServerURL:      "ws://127.0.0.1:8022",
			ConnectTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Params returns the finder tunables.
func (c PathfindingConfig) Params() pathfind.Params {
	return pathfind.Params{
		TileSize:       c.TileSize,
		SmallStepRange: c.SmallStepRange,
		Range:          c.Range,
		MaxSegment:     c.MaxSegment,
		YieldInterval:  c.YieldInterval,
		MapPenalty:     c.MapPenalty,
	}
}

// Options returns the default search options.
func (c PathfindingConfig) Options() pathfind.Options {
	return pathfind.Options{
		MaxDistance: c.MaxDistance,
		Exact:       c.Exact,
		Simplify:    c.Simplify,
	}
}
