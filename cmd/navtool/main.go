// navtool is a CLI utility for planning routes over Ragnarok Online maps.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-nav/internal/app"
	"github.com/Faultbox/midgard-nav/internal/config"
	"github.com/Faultbox/midgard-nav/internal/logger"
	"github.com/Faultbox/midgard-nav/internal/navigator"
	"github.com/Faultbox/midgard-nav/internal/pathfind"
	"github.com/Faultbox/midgard-nav/pkg/formats"
	"github.com/Faultbox/midgard-nav/pkg/grf"
)

func main() {
	config.ParseFlags()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "path", "route":
		cmdPath(args)
	case "info":
		cmdInfo(args)
	case "gat-new":
		cmdGATNew(args)
	case "maps":
		cmdMaps(args)
	case "pack":
		cmdPack(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`navtool - Ragnarok Online route planning utility

Usage:
  navtool [global options] <command> [options]

Global options:
  -config <file>     Config file (default ./config.yaml or user config dir)
  -grf <a.grf,...>   GRF archives to search
  -maps <dir,...>    Directories holding data/<map>.gat
  -debug             Debug logging

Commands:
  path <map> <from> <to> [-exact] [-max D] [-raw]
                             Plan a route; <to> is "x,y" or a location name
  info <map>                 Show walkability statistics of a map
  gat-new <out.gat> -size WxH [-block x0,y0,x1,y1;...]
                             Write a synthetic GAT
  maps <file.grf> [pattern]  List the maps stored in an archive
  pack <out.grf> <dir>       Pack a directory tree into a GRF archive

Examples:
  navtool -grf data.grf path prontera 780,560 "east gate"
  navtool -maps ./testmaps info prontera
  navtool gat-new data/box.gat -size 40x40 -block "20,0,20,29"
  navtool pack maps.grf ./testmaps`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// openApp loads the configuration and builds the navigation stack.
func openApp() *app.App {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	level := cfg.Logging.Level
	if level == "info" {
		// Keep CLI output readable unless asked otherwise.
		level = "warn"
	}
	if err := logger.Init(level, cfg.Logging.LogFile); err != nil {
		fail(err)
	}
	logger.SetComponentLevels(cfg.Logging.Components)

	a, err := app.New(cfg, logger.Named("app"))
	if err != nil {
		fail(err)
	}
	return a
}

func cmdPath(args []string) {
	fset := flag.NewFlagSet("path", flag.ExitOnError)
	exact := fset.Bool("exact", false, "Require the route to end exactly on the target")
	maxDist := fset.Float64("max", -1, "Search distance budget, 0 = unbounded")
	raw := fset.Bool("raw", false, "Print the unsimplified route")
	fset.Parse(reorder(args, "exact", "raw"))

	if fset.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "Usage: navtool path <map> <from> <to> [-exact] [-max D] [-raw]")
		os.Exit(1)
	}
	mapName, from, to := fset.Arg(0), fset.Arg(1), fset.Arg(2)

	a := openApp()
	defer a.Close()
	defer logger.Sync()

	if _, err := a.LoadMap(mapName); err != nil {
		fail(err)
	}

	origin, err := parseOrigin(from, mapName, a)
	if err != nil {
		fail(err)
	}
	if origin.Map != mapName {
		if _, err := a.LoadMap(origin.Map); err != nil {
			fail(err)
		}
	}
	target, err := navigator.ParseTarget(to)
	if err != nil {
		fail(err)
	}

	opts := a.Config.Pathfinding.Options()
	if *exact {
		opts.Exact = true
	}
	if *maxDist >= 0 {
		opts.MaxDistance = *maxDist
	}
	if *raw {
		opts.Simplify = false
	}

	route, err := a.Navigator.Plan(context.Background(), origin, target, opts)
	switch {
	case errors.Is(err, pathfind.ErrUnsupported):
		fail(fmt.Errorf("%s and %s are on different maps", origin, target))
	case err != nil:
		fail(err)
	}

	fmt.Printf("Route %s -> %s\n", origin, route.Target)
	fmt.Printf("  Length:    %.1f (%d waypoints, %d raw)\n", route.Path.Length(), len(route.Path), len(route.Raw))
	fmt.Printf("  Expanded:  %d nodes in %v\n", route.Expanded, route.Duration)
	fmt.Println()
	for i, p := range route.Path {
		fmt.Printf("  %3d  %8.1f %8.1f\n", i, p.X, p.Y)
	}

	stats := a.Oracle.Stats()
	logger.Debug("oracle cache",
		zap.Int("entries", stats.Entries),
		zap.Int("hits", stats.Hits),
		zap.Int("misses", stats.Misses))
}

// parseOrigin accepts "x,y" on the given map or a location name.
func parseOrigin(s, mapName string, a *app.App) (pathfind.Position, error) {
	t, err := navigator.ParseTarget(s)
	if err != nil {
		return pathfind.Position{}, err
	}
	return t.Resolve(pathfind.Position{Map: mapName}, a.Locations)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: navtool info <map>")
		os.Exit(1)
	}

	a := openApp()
	defer a.Close()
	defer logger.Sync()

	mp, err := a.LoadMap(args[0])
	if err != nil {
		fail(err)
	}

	counts := mp.GAT.CountByType()
	types := make([]formats.GATCellType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	total := mp.Width * mp.Height
	bounds := mp.Bounds()
	minAlt, maxAlt := mp.GAT.GetAltitudeRange()

	fmt.Printf("Map: %s\n", mp.Name)
	fmt.Printf("  Version:   %s\n", mp.GAT.Version)
	fmt.Printf("  Cells:     %d x %d (%d)\n", mp.Width, mp.Height, total)
	fmt.Printf("  World:     %.0f x %.0f (cell size %.1f)\n", bounds.X, bounds.Y, mp.CellSize)
	fmt.Printf("  Altitude:  %.2f .. %.2f\n", minAlt, maxAlt)
	fmt.Println()
	fmt.Println("Cell types:")
	for _, t := range types {
		pct := float64(counts[t]) * 100 / float64(total)
		fmt.Printf("  %-16s %8d  %5.1f%%\n", t, counts[t], pct)
	}
}

func cmdGATNew(args []string) {
	fset := flag.NewFlagSet("gat-new", flag.ExitOnError)
	size := fset.String("size", "64x64", "Map size in cells, WxH")
	blocks := fset.String("block", "", "Blocked rectangles x0,y0,x1,y1 separated by ';'")
	fset.Parse(reorder(args))

	if fset.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: navtool gat-new <out.gat> -size WxH [-block x0,y0,x1,y1;...]")
		os.Exit(1)
	}

	w, h, err := parseSize(*size)
	if err != nil {
		fail(err)
	}
	gat, err := formats.NewGAT(w, h)
	if err != nil {
		fail(err)
	}

	rects, err := parseRects(*blocks)
	if err != nil {
		fail(err)
	}
	for _, r := range rects {
		gat.FillRect(r[0], r[1], r[2], r[3], formats.GATBlocked)
	}

	var buf bytes.Buffer
	if err := gat.Encode(&buf); err != nil {
		fail(err)
	}

	out := fset.Arg(0)
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fail(err)
		}
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s (%dx%d, %d blocked rects)\n", out, w, h, len(rects))
}

func cmdMaps(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: navtool maps <file.grf> [pattern]")
		os.Exit(1)
	}

	archive, err := grf.Open(args[0])
	if err != nil {
		fail(err)
	}
	defer archive.Close()

	pattern := ""
	if len(args) > 1 {
		pattern = strings.ToLower(args[1])
	}

	count := 0
	for _, f := range archive.List() {
		if !strings.HasSuffix(f, ".gat") {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(f), ".gat")
		if pattern != "" {
			matched, _ := filepath.Match(pattern, name)
			if !matched && !strings.Contains(name, pattern) {
				continue
			}
		}
		entry, _ := archive.Stat(f)
		fmt.Printf("  %-24s %8d bytes\n", name, entry.UncompressedSize)
		count++
	}
	fmt.Fprintf(os.Stderr, "\n(%d maps)\n", count)
}

func cmdPack(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: navtool pack <out.grf> <dir>")
		os.Exit(1)
	}
	out, root := args[0], args[1]

	files := make(map[string][]byte)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		fail(err)
	}
	if len(files) == 0 {
		fail(fmt.Errorf("no files under %s", root))
	}

	f, err := os.Create(out)
	if err != nil {
		fail(err)
	}
	if err := grf.Write(f, files); err != nil {
		f.Close()
		fail(err)
	}
	if err := f.Close(); err != nil {
		fail(err)
	}
	fmt.Printf("Packed %d files into %s\n", len(files), out)
}

// reorder moves flags ahead of positional arguments so that
// "path prontera 1,2 3,4 -raw" parses. Names in boolFlags take no value.
func reorder(args []string, boolFlags ...string) []string {
	isBool := make(map[string]bool, len(boolFlags))
	for _, name := range boolFlags {
		isBool[name] = true
	}

	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}
		flags = append(flags, arg)
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") || isBool[name] {
			continue
		}
		if i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, positional...)
}

func parseSize(s string) (uint32, uint32, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	w, err := strconv.ParseUint(ws, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q", ws)
	}
	h, err := strconv.ParseUint(hs, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height %q", hs)
	}
	return uint32(w), uint32(h), nil
}

func parseRects(s string) ([][4]int, error) {
	var rects [][4]int
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("invalid rect %q, want x0,y0,x1,y1", part)
		}
		var r [4]int
		for i, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("invalid rect %q: %w", part, err)
			}
			r[i] = v
		}
		rects = append(rects, r)
	}
	return rects, nil
}
