package world

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-nav/internal/pathfind"
)

func TestCharacterUpdate(t *testing.T) {
	c := NewCharacter("hero", pathfind.Position{X: 0, Y: 0, Map: "prontera"})
	if c.Update(100) {
		t.Error("Update without destination should report no change")
	}

	c.SetDestination(30, 40)
	if !c.Update(100) {
		t.Fatal("Update should move the character")
	}
	// 150 units/s for 100ms = 15 units along (0.6, 0.8).
	if gomath.Abs(c.Pos.X-9) > 1e-9 || gomath.Abs(c.Pos.Y-12) > 1e-9 {
		t.Errorf("position = %v, want (9, 12)", c.Pos)
	}
	if !c.IsMoving {
		t.Error("character should be moving")
	}

	// Long update snaps to the destination, next one arrives.
	c.Update(10000)
	c.Update(16)
	if !c.Arrived() || c.IsMoving {
		t.Errorf("character should have arrived, pos %v", c.Pos)
	}
	if c.Pos.X != 30 || c.Pos.Y != 40 || c.Pos.Map != "prontera" {
		t.Errorf("final position = %v, want (30, 40, prontera)", c.Pos)
	}
}

func TestCharacterSetPosition(t *testing.T) {
	c := NewCharacter("hero", pathfind.Position{Map: "prontera"})
	c.SetDestination(10, 10)
	c.SetPosition(pathfind.Position{X: 5, Y: 5, Map: "geffen"})
	if !c.Arrived() {
		t.Error("SetPosition should clear the destination")
	}
	if c.Position().Map != "geffen" {
		t.Errorf("Map = %q, want geffen", c.Position().Map)
	}
}

func TestCalculateDirection(t *testing.T) {
	tests := []struct {
		dx, dy float64
		want   int
	}{
		{0, 1, DirS},
		{-1, 1, DirSW},
		{-1, 0, DirW},
		{-1, -1, DirNW},
		{0, -1, DirN},
		{1, -1, DirNE},
		{1, 0, DirE},
		{1, 1, DirSE},
		{0.1, 1, DirS},
	}
	for _, tt := range tests {
		if got := CalculateDirection(tt.dx, tt.dy); got != tt.want {
			t.Errorf("CalculateDirection(%v, %v) = %d, want %d", tt.dx, tt.dy, got, tt.want)
		}
	}
}
