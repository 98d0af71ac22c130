package world

import (
	gomath "math"

	"github.com/Faultbox/midgard-nav/internal/pathfind"
	"github.com/Faultbox/midgard-nav/pkg/math"
)

// Direction constants for 8-way movement (RO standard order).
const (
	DirS  = 0 // South (facing camera)
	DirSW = 1 // Southwest
	DirW  = 2 // West
	DirNW = 3 // Northwest
	DirN  = 4 // North (facing away)
	DirNE = 5 // Northeast
	DirE  = 6 // East
	DirSE = 7 // Southeast
)

const (
	// DefaultMoveSpeed is the default speed in world units per second.
	DefaultMoveSpeed = 150.0

	// ArrivalThreshold is the distance at which a destination counts as reached.
	ArrivalThreshold = 0.5
)

// Character is a moving entity on a map.
type Character struct {
	Name string
	Pos  pathfind.Position

	// Movement state
	IsMoving  bool
	Direction int     // 0-7: S, SW, W, NW, N, NE, E, SE
	MoveSpeed float64 // Units per second

	// Click-to-move destination
	Dest           math.Vec2
	HasDestination bool
}

// NewCharacter creates a new character at the given position.
func NewCharacter(name string, pos pathfind.Position) *Character {
	return &Character{
		Name:      name,
		Pos:       pos,
		Direction: DirS,
		MoveSpeed: DefaultMoveSpeed,
	}
}

// Position returns the character's position.
func (c *Character) Position() pathfind.Position {
	return c.Pos
}

// SetPosition places the character, e.g. after a warp.
func (c *Character) SetPosition(pos pathfind.Position) {
	c.Pos = pos
	c.ClearDestination()
}

// SetDestination sets a click-to-move destination on the current map.
func (c *Character) SetDestination(x, y float64) {
	c.Dest = math.Vec2{X: x, Y: y}
	c.HasDestination = true
}

// ClearDestination clears the current destination.
func (c *Character) ClearDestination() {
	c.HasDestination = false
	c.IsMoving = false
}

// Arrived reports whether the character has no pending destination.
func (c *Character) Arrived() bool {
	return !c.HasDestination
}

// Update moves the character toward its destination.
// deltaMs is the time since last update in milliseconds.
// Returns true if the character's state changed.
func (c *Character) Update(deltaMs float64) bool {
	if !c.HasDestination {
		return false
	}

	pos := c.Pos.Vec()
	delta := c.Dest.Sub(pos)
	dist := delta.Length()

	if dist < ArrivalThreshold {
		c.Pos.X, c.Pos.Y = c.Dest.X, c.Dest.Y
		c.HasDestination = false
		c.IsMoving = false
		return true
	}

	moveAmount := c.MoveSpeed * deltaMs / 1000.0
	if moveAmount >= dist {
		moveAmount = dist
	}
	next := pos.Add(delta.Normalize().Scale(moveAmount))
	c.Pos.X, c.Pos.Y = next.X, next.Y
	c.IsMoving = true
	c.Direction = CalculateDirection(delta.X, delta.Y)
	return true
}

// CalculateDirection converts a movement delta to an RO direction index.
// +Y is south.
func CalculateDirection(dx, dy float64) int {
	angle := gomath.Atan2(dx, dy)
	if angle < 0 {
		angle += 2 * gomath.Pi
	}

	// Eight 45 degree sectors centred on the axes.
	sector := int((angle + gomath.Pi/8) / (gomath.Pi / 4))
	if sector >= 8 {
		sector = 0
	}

	// Clockwise from +Y: S, SE, E, NE, N, NW, W, SW.
	directionMap := [8]int{DirS, DirSE, DirE, DirNE, DirN, DirNW, DirW, DirSW}
	return directionMap[sector]
}
