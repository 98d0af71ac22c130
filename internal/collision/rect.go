package collision

import "sync"

// Rect is an axis-aligned rectangle in world units.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether the point lies inside r or on its border.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Intersects reports whether the segment (x0,y0)-(x1,y1) touches r.
// It clips the segment against the four slabs (Liang-Barsky).
func (r Rect) Intersects(x0, y0, x1, y1 float64) bool {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
			return true
		}
		if t < t0 {
			return false
		}
		if t < t1 {
			t1 = t
		}
		return true
	}

	return clip(-dx, x0-r.MinX) && clip(dx, r.MaxX-x0) &&
		clip(-dy, y0-r.MinY) && clip(dy, r.MaxY-y0)
}

type plane struct {
	bounds    *Rect
	obstacles []Rect
}

// RectOracle is an open plane per map with rectangular obstacles.
type RectOracle struct {
	mu     sync.RWMutex
	planes map[string]*plane
}

// NewRectOracle creates an oracle with no maps.
func NewRectOracle() *RectOracle {
	return &RectOracle{planes: make(map[string]*plane)}
}

// AddMap registers an empty, unbounded map. Existing maps are kept.
func (o *RectOracle) AddMap(mapID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.planeLocked(mapID)
}

// AddObstacle adds a blocked rectangle, registering the map if needed.
func (o *RectOracle) AddObstacle(mapID string, r Rect) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.planeLocked(mapID)
	p.obstacles = append(p.obstacles, r)
}

// SetBounds limits movement on a map to r.
func (o *RectOracle) SetBounds(mapID string, r Rect) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.planeLocked(mapID)
	p.bounds = &r
}

func (o *RectOracle) planeLocked(mapID string) *plane {
	p, ok := o.planes[mapID]
	if !ok {
		p = &plane{}
		o.planes[mapID] = p
	}
	return p
}

// CanMove implements pathfind.Oracle.
func (o *RectOracle) CanMove(mapID string, fromX, fromY, toX, toY float64) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	p, ok := o.planes[mapID]
	if !ok {
		return false
	}
	if p.bounds != nil && (!p.bounds.Contains(fromX, fromY) || !p.bounds.Contains(toX, toY)) {
		return false
	}
	for _, r := range p.obstacles {
		if r.Intersects(fromX, fromY, toX, toY) {
			return false
		}
	}
	return true
}
