// Package world handles map loading, named locations and movement.
package world

import (
	"errors"
	"fmt"
	gomath "math"
	"sort"
	"strings"
	"sync"

	"github.com/Faultbox/midgard-nav/internal/collision"
	"github.com/Faultbox/midgard-nav/pkg/formats"
	"github.com/Faultbox/midgard-nav/pkg/math"
)

// ErrMapNotLoaded is returned for maps that were never loaded.
var ErrMapNotLoaded = errors.New("map not loaded")

// Loader reads raw asset data by archive path.
type Loader interface {
	Load(path string) ([]byte, error)
}

// Map represents a loaded game map.
type Map struct {
	Name     string
	Width    int // cells
	Height   int // cells
	CellSize float64

	// Collision/walkability data
	GAT *formats.GAT
}

// NewMap creates a map from an already parsed GAT.
func NewMap(name string, gat *formats.GAT, cellSize float64) *Map {
	return &Map{
		Name:     name,
		Width:    int(gat.Width),
		Height:   int(gat.Height),
		CellSize: cellSize,
		GAT:      gat,
	}
}

// GATPath returns the archive path of a map's altitude table.
func GATPath(name string) string {
	return "data/" + strings.ToLower(name) + ".gat"
}

// IsWalkable checks if a world position is walkable.
func (m *Map) IsWalkable(x, y float64) bool {
	if m.GAT == nil {
		return false
	}
	cx, cy := m.WorldToCell(x, y)
	return m.GAT.IsWalkable(cx, cy)
}

// WorldToCell converts world coordinates to cell coordinates.
func (m *Map) WorldToCell(x, y float64) (int, int) {
	return int(gomath.Floor(x / m.CellSize)), int(gomath.Floor(y / m.CellSize))
}

// CellToWorld converts cell coordinates to the world position of the cell center.
func (m *Map) CellToWorld(x, y int) math.Vec2 {
	return math.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}.Scale(m.CellSize)
}

// Bounds returns the world size of the map.
func (m *Map) Bounds() math.Vec2 {
	return math.Vec2{X: float64(m.Width), Y: float64(m.Height)}.Scale(m.CellSize)
}

// Manager keeps loaded maps and a collision oracle covering all of them.
type Manager struct {
	loader   Loader
	cellSize float64
	oracle   *collision.GATOracle

	mu      sync.RWMutex
	maps    map[string]*Map
	current *Map
}

// NewManager creates a new world manager.
func NewManager(loader Loader, cellSize float64) *Manager {
	oracle := collision.NewGATOracle(cellSize)
	return &Manager{
		loader:   loader,
		cellSize: oracle.CellSize(),
		oracle:   oracle,
		maps:     make(map[string]*Map),
	}
}

// LoadMap loads a map by name and makes it current.
// A map that is already loaded is not read again.
func (m *Manager) LoadMap(name string) (*Map, error) {
	m.mu.RLock()
	loaded, ok := m.maps[name]
	m.mu.RUnlock()
	if ok {
		m.setCurrent(loaded)
		return loaded, nil
	}

	data, err := m.loader.Load(GATPath(name))
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", name, err)
	}
	gat, err := formats.ParseGAT(data)
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", name, err)
	}

	return m.AddMap(name, gat), nil
}

// AddMap registers a parsed GAT under name and makes it current.
func (m *Manager) AddMap(name string, gat *formats.GAT) *Map {
	mp := NewMap(name, gat, m.cellSize)
	m.oracle.SetMap(name, gat)

	m.mu.Lock()
	m.maps[name] = mp
	m.current = mp
	m.mu.Unlock()
	return mp
}

func (m *Manager) setCurrent(mp *Map) {
	m.mu.Lock()
	m.current = mp
	m.mu.Unlock()
}

// Current returns the current map.
func (m *Manager) Current() *Map {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Get returns a loaded map.
func (m *Manager) Get(name string) (*Map, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mp, ok := m.maps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMapNotLoaded, name)
	}
	return mp, nil
}

// Names returns the names of all loaded maps, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.maps))
	for name := range m.maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Oracle returns the collision oracle over every loaded map.
func (m *Manager) Oracle() *collision.GATOracle {
	return m.oracle
}
