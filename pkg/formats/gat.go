// Package formats provides parsers for Ragnarok Online map data.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"
)

// GAT format errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
	ErrInvalidGATDimensions  = errors.New("invalid GAT dimensions")
)

const (
	gatMagic      = "GRAT"
	gatHeaderSize = 14 // magic(4) + version(2) + width(4) + height(4)
	gatCellSize   = 20 // 4 corner heights + type
	gatMaxSide    = 4096
)

// GATVersion represents the GAT file version.
type GATVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v GATVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GATCellType represents the walkability type of a cell.
type GATCellType uint32

// Cell type constants.
const (
	GATWalkable      GATCellType = 0 // Normal walkable ground
	GATBlocked       GATCellType = 1 // Cannot walk through
	GATWater         GATCellType = 2 // Water (walkable with certain skills)
	GATWalkableWater GATCellType = 3 // Shore/shallow water
	GATSnipeable     GATCellType = 4 // Can attack over but not walk (cliffs)
	GATBlockedSnipe  GATCellType = 5 // Blocked but can shoot over
)

// String returns a human-readable cell type name.
func (t GATCellType) String() string {
	switch t {
	case GATWalkable:
		return "Walkable"
	case GATBlocked:
		return "Blocked"
	case GATWater:
		return "Water"
	case GATWalkableWater:
		return "Walkable+Water"
	case GATSnipeable:
		return "Snipeable"
	case GATBlockedSnipe:
		return "Blocked+Snipe"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// IsWalkable returns true if the cell type allows walking.
func (t GATCellType) IsWalkable() bool {
	return t == GATWalkable || t == GATWalkableWater
}

// IsBlocked returns true if the cell blocks movement.
func (t GATCellType) IsBlocked() bool {
	return t == GATBlocked || t == GATBlockedSnipe
}

// IsWater returns true if the cell contains water.
func (t GATCellType) IsWater() bool {
	return t == GATWater || t == GATWalkableWater
}

// GATCell represents a single cell in the GAT grid.
type GATCell struct {
	// Heights contains the altitude of each corner:
	// [0] = bottom-left, [1] = bottom-right, [2] = top-left, [3] = top-right
	Heights [4]float32
	Type    GATCellType
}

// GAT represents a parsed Ground Altitude Table file.
type GAT struct {
	Version GATVersion
	Width   uint32
	Height  uint32
	Cells   []GATCell
}

// NewGAT creates an all-walkable table of the given size.
func NewGAT(width, height uint32) (*GAT, error) {
	if width == 0 || height == 0 || width > gatMaxSide || height > gatMaxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGATDimensions, width, height)
	}
	return &GAT{
		Version: GATVersion{Major: 1, Minor: 2},
		Width:   width,
		Height:  height,
		Cells:   make([]GATCell, int(width)*int(height)),
	}, nil
}

// GetCell returns the cell at the given coordinates.
// Returns nil if coordinates are out of bounds.
func (g *GAT) GetCell(x, y int) *GATCell {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Cells[y*int(g.Width)+x]
}

// IsWalkable checks if the cell at (x, y) is walkable.
func (g *GAT) IsWalkable(x, y int) bool {
	cell := g.GetCell(x, y)
	if cell == nil {
		return false
	}
	return cell.Type.IsWalkable()
}

// SetType sets the type of the cell at (x, y). Out of bounds is a no-op.
func (g *GAT) SetType(x, y int, t GATCellType) {
	if cell := g.GetCell(x, y); cell != nil {
		cell.Type = t
	}
}

// FillRect sets the type of every cell in [x0,x1]x[y0,y1], clipped to the map.
func (g *GAT) FillRect(x0, y0, x1, y1 int, t GATCellType) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			g.SetType(x, y, t)
		}
	}
}

// ParseGAT parses a GAT file from raw bytes.
func ParseGAT(data []byte) (*GAT, error) {
	if len(data) < gatHeaderSize {
		return nil, ErrTruncatedGATData
	}

	if string(data[0:4]) != gatMagic {
		return nil, ErrInvalidGATMagic
	}

	// Version is stored as [minor, major]
	version := GATVersion{
		Major: data[5],
		Minor: data[4],
	}

	// Supported versions: 1.2, 1.3, 2.x, 3.x (cell format is identical)
	if version.Major < 1 || version.Major > 3 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGATVersion, version)
	}

	width := binary.LittleEndian.Uint32(data[6:])
	height := binary.LittleEndian.Uint32(data[10:])
	if width == 0 || height == 0 || width > gatMaxSide || height > gatMaxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGATDimensions, width, height)
	}

	cellCount := int(width) * int(height)
	body := data[gatHeaderSize:]
	if len(body) < cellCount*gatCellSize {
		return nil, fmt.Errorf("%w: %d cells need %d bytes, have %d",
			ErrTruncatedGATData, cellCount, cellCount*gatCellSize, len(body))
	}

	gat := &GAT{
		Version: version,
		Width:   width,
		Height:  height,
		Cells:   make([]GATCell, cellCount),
	}
	for i := range gat.Cells {
		gat.Cells[i] = decodeGATCell(body[i*gatCellSize:])
	}
	return gat, nil
}

func decodeGATCell(b []byte) GATCell {
	var cell GATCell
	for i := 0; i < 4; i++ {
		cell.Heights[i] = gomath.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	cell.Type = GATCellType(binary.LittleEndian.Uint32(b[16:]))
	return cell
}

// ParseGATFile parses a GAT file from disk.
func ParseGATFile(path string) (*GAT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	return ParseGAT(data)
}

// Encode writes g in GAT format.
func (g *GAT) Encode(w io.Writer) error {
	buf := bytes.NewBuffer(make([]byte, 0, gatHeaderSize+len(g.Cells)*gatCellSize))
	buf.WriteString(gatMagic)
	buf.WriteByte(g.Version.Minor)
	buf.WriteByte(g.Version.Major)

	var scratch [gatCellSize]byte
	binary.LittleEndian.PutUint32(scratch[0:], g.Width)
	binary.LittleEndian.PutUint32(scratch[4:], g.Height)
	buf.Write(scratch[:8])

	for _, cell := range g.Cells {
		for i, h := range cell.Heights {
			binary.LittleEndian.PutUint32(scratch[i*4:], gomath.Float32bits(h))
		}
		binary.LittleEndian.PutUint32(scratch[16:], uint32(cell.Type))
		buf.Write(scratch[:])
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// CountByType returns the count of cells for each type.
func (g *GAT) CountByType() map[GATCellType]int {
	counts := make(map[GATCellType]int)
	for _, cell := range g.Cells {
		counts[cell.Type]++
	}
	return counts
}

// GetAltitudeRange returns the minimum and maximum altitude in the map.
func (g *GAT) GetAltitudeRange() (min, max float32) {
	if len(g.Cells) == 0 {
		return 0, 0
	}

	min = g.Cells[0].Heights[0]
	max = g.Cells[0].Heights[0]

	for _, cell := range g.Cells {
		for _, h := range cell.Heights {
			if h < min {
				min = h
			}
			if h > max {
				max = h
			}
		}
	}

	return min, max
}
