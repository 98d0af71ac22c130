package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := 5.0
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec2.Normalize().Length() = %v, want ~1", l)
	}

	if (Vec2{}).Normalize() != (Vec2{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec2Distance(t *testing.T) {
	a := Vec2{1, 1}
	b := Vec2{4, 5}
	if got := a.Distance(b); got != 5 {
		t.Errorf("Vec2.Distance() = %v, want 5", got)
	}
}

func TestVec2Lerp(t *testing.T) {
	a := Vec2{0, 0}
	b := Vec2{10, -20}
	if got := a.Lerp(b, 0.5); got != (Vec2{5, -10}) {
		t.Errorf("Vec2.Lerp() = %v, want {5 -10}", got)
	}
}

func TestVec2Snap(t *testing.T) {
	tests := []struct {
		in   Vec2
		step float64
		want Vec2
	}{
		{Vec2{7.9, -7.9}, 16, Vec2{0, 0}},
		{Vec2{8.1, -8.1}, 16, Vec2{16, -16}},
		{Vec2{13, 29}, 8, Vec2{16, 32}},
		{Vec2{13.4, 2}, 0, Vec2{13.4, 2}},
	}
	for _, tt := range tests {
		if got := tt.in.Snap(tt.step); got != tt.want {
			t.Errorf("%v.Snap(%v) = %v, want %v", tt.in, tt.step, got, tt.want)
		}
	}
}
