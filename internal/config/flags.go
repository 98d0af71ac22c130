package config

import (
	"flag"
	"strings"
)

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagServer      = flag.String("server", "", "Game server URL")
	flagGRF         = flag.String("grf", "", "Comma-separated GRF archives (replaces config)")
	flagMaps        = flag.String("maps", "", "Comma-separated map directories (replaces config)")
	flagMaxDistance = flag.Float64("max-distance", -1, "Search distance budget, 0 = unbounded")
	flagExact       = flag.Bool("exact", false, "Require paths to end exactly on the target")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagServer != "" {
		cfg.Network.ServerURL = *flagServer
	}
	if *flagGRF != "" {
		cfg.Data.GRFPaths = splitList(*flagGRF)
	}
	if *flagMaps != "" {
		cfg.Data.MapDirs = splitList(*flagMaps)
	}
	if *flagMaxDistance >= 0 {
		cfg.Pathfinding.MaxDistance = *flagMaxDistance
	}
	if *flagExact {
		cfg.Pathfinding.Exact = true
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
