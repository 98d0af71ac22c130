// Package collision provides movement oracles for the path finder.
package collision

import (
	gomath "math"
	"sync"

	"github.com/Faultbox/midgard-nav/pkg/formats"
)

// DefaultCellSize is the world size of one GAT cell.
const DefaultCellSize = 5.0

// GATOracle answers movement queries from GAT walkability grids.
// A move is allowed when every cell the segment passes through is walkable.
type GATOracle struct {
	cellSize float64

	mu    sync.RWMutex
	grids map[string]*formats.GAT
}

// NewGATOracle creates an oracle with the given world units per cell.
func NewGATOracle(cellSize float64) *GATOracle {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &GATOracle{
		cellSize: cellSize,
		grids:    make(map[string]*formats.GAT),
	}
}

// SetMap registers (or replaces) the grid for a map.
func (o *GATOracle) SetMap(mapID string, gat *formats.GAT) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.grids[mapID] = gat
}

// RemoveMap forgets a map.
func (o *GATOracle) RemoveMap(mapID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.grids, mapID)
}

// CellSize returns the world units per cell.
func (o *GATOracle) CellSize() float64 {
	return o.cellSize
}

// CanMove implements pathfind.Oracle. Unknown maps are never movable.
func (o *GATOracle) CanMove(mapID string, fromX, fromY, toX, toY float64) bool {
	o.mu.RLock()
	gat, ok := o.grids[mapID]
	o.mu.RUnlock()
	if !ok {
		return false
	}
	return traverse(gat,
		fromX/o.cellSize, fromY/o.cellSize,
		toX/o.cellSize, toY/o.cellSize)
}

// traverse walks the grid cells crossed by the segment (x0,y0)-(x1,y1),
// given in cell units. Passing exactly through a cell corner requires both
// side cells to be walkable, the same rule diagonal grid steps follow.
func traverse(gat *formats.GAT, x0, y0, x1, y1 float64) bool {
	cx, cy := int(gomath.Floor(x0)), int(gomath.Floor(y0))
	ex, ey := int(gomath.Floor(x1)), int(gomath.Floor(y1))
	if !gat.IsWalkable(cx, cy) {
		return false
	}

	stepX, tMaxX, tDeltaX := axis(x0, x1, cx)
	stepY, tMaxY, tDeltaY := axis(y0, y1, cy)

	remaining := abs(ex-cx) + abs(ey-cy)
	for remaining > 0 {
		switch {
		case tMaxX < tMaxY:
			cx += stepX
			tMaxX += tDeltaX
			remaining--
		case tMaxY < tMaxX:
			cy += stepY
			tMaxY += tDeltaY
			remaining--
		default:
			if !gat.IsWalkable(cx+stepX, cy) || !gat.IsWalkable(cx, cy+stepY) {
				return false
			}
			cx += stepX
			cy += stepY
			tMaxX += tDeltaX
			tMaxY += tDeltaY
			remaining -= 2
		}
		if !gat.IsWalkable(cx, cy) {
			return false
		}
	}
	return true
}

// axis returns the step direction, the parametric distance to the first
// cell boundary, and the parametric width of one cell along one axis.
func axis(from, to float64, cell int) (step int, tMax, tDelta float64) {
	d := to - from
	switch {
	case d > 0:
		return 1, (float64(cell+1) - from) / d, 1 / d
	case d < 0:
		return -1, (from - float64(cell)) / -d, 1 / -d
	default:
		return 0, gomath.Inf(1), gomath.Inf(1)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
