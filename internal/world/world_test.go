package world

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/Faultbox/midgard-nav/pkg/formats"
)

// memLoader serves assets from memory and counts loads.
type memLoader struct {
	files map[string][]byte
	loads int
}

func (l *memLoader) Load(path string) ([]byte, error) {
	l.loads++
	data, ok := l.files[path]
	if !ok {
		return nil, fmt.Errorf("missing %s", path)
	}
	return data, nil
}

// encodeGAT returns the bytes of a w x h table with blocked cells.
func encodeGAT(t *testing.T, w, h uint32, blocked [][2]int) []byte {
	t.Helper()
	gat, err := formats.NewGAT(w, h)
	if err != nil {
		t.Fatalf("NewGAT failed: %v", err)
	}
	for _, b := range blocked {
		gat.SetType(b[0], b[1], formats.GATBlocked)
	}
	var buf bytes.Buffer
	if err := gat.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestManagerLoadMap(t *testing.T) {
	loader := &memLoader{files: map[string][]byte{
		"data/prontera.gat": encodeGAT(t, 10, 8, [][2]int{{3, 3}}),
		"data/broken.gat":   []byte("JUNK0000000000"),
	}}
	m := NewManager(loader, 5)

	mp, err := m.LoadMap("Prontera")
	if err != nil {
		t.Fatalf("LoadMap failed: %v", err)
	}
	if mp.Width != 10 || mp.Height != 8 {
		t.Errorf("size = %dx%d, want 10x8", mp.Width, mp.Height)
	}
	if m.Current() != mp {
		t.Error("loaded map should be current")
	}
	if b := mp.Bounds(); b.X != 50 || b.Y != 40 {
		t.Errorf("Bounds() = %v, want (50, 40)", b)
	}

	// Second load is served from memory.
	if _, err := m.LoadMap("Prontera"); err != nil {
		t.Fatalf("second LoadMap failed: %v", err)
	}
	if loader.loads != 1 {
		t.Errorf("loader called %d times, want 1", loader.loads)
	}

	if _, err := m.LoadMap("broken"); !errors.Is(err, formats.ErrInvalidGATMagic) {
		t.Errorf("LoadMap(broken) error = %v, want ErrInvalidGATMagic", err)
	}
	if _, err := m.LoadMap("payon"); err == nil {
		t.Error("LoadMap(payon) should fail")
	}
	if m.Current() != mp {
		t.Error("failed loads should not change the current map")
	}

	if _, err := m.Get("payon"); !errors.Is(err, ErrMapNotLoaded) {
		t.Errorf("Get(payon) error = %v, want ErrMapNotLoaded", err)
	}
	if got := m.Names(); len(got) != 1 || got[0] != "Prontera" {
		t.Errorf("Names() = %v, want [Prontera]", got)
	}
}

func TestManagerOracle(t *testing.T) {
	loader := &memLoader{files: map[string][]byte{
		"data/prontera.gat": encodeGAT(t, 10, 10, [][2]int{{5, 0}, {5, 1}, {5, 2}}),
	}}
	m := NewManager(loader, 5)
	if _, err := m.LoadMap("prontera"); err != nil {
		t.Fatalf("LoadMap failed: %v", err)
	}

	o := m.Oracle()
	if o.CanMove("prontera", 10, 7, 40, 7) {
		t.Error("move through blocked cell (5,1) should be rejected")
	}
	if !o.CanMove("prontera", 10, 30, 40, 30) {
		t.Error("move along open row should be allowed")
	}
	if o.CanMove("geffen", 10, 30, 40, 30) {
		t.Error("move on unloaded map should be rejected")
	}
}

func TestMapCells(t *testing.T) {
	gat, err := formats.NewGAT(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	gat.SetType(1, 2, formats.GATBlocked)
	mp := NewMap("m", gat, 5)

	tests := []struct {
		x, y   float64
		cx, cy int
		walk   bool
	}{
		{0, 0, 0, 0, true},
		{4.9, 4.9, 0, 0, true},
		{5, 10, 1, 2, false},
		{9.9, 14.9, 1, 2, false},
		{-0.1, 3, -1, 0, false},
		{19.9, 19.9, 3, 3, true},
		{20, 0, 4, 0, false},
	}
	for _, tt := range tests {
		cx, cy := mp.WorldToCell(tt.x, tt.y)
		if cx != tt.cx || cy != tt.cy {
			t.Errorf("WorldToCell(%v, %v) = (%d, %d), want (%d, %d)", tt.x, tt.y, cx, cy, tt.cx, tt.cy)
		}
		if got := mp.IsWalkable(tt.x, tt.y); got != tt.walk {
			t.Errorf("IsWalkable(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.walk)
		}
	}

	if c := mp.CellToWorld(1, 2); c.X != 7.5 || c.Y != 12.5 {
		t.Errorf("CellToWorld(1, 2) = %v, want (7.5, 12.5)", c)
	}
}
