package geom

import "testing"

func TestPositionArithmetic(t *testing.T) {
	start := Pos(10, 20)
	end := Pos(55, 5)

	delta := end.Sub(start)
	if delta != (Vector2D{X: 45, Y: -15}) {
		t.Fatalf("expected delta <45, -15>, got %v", delta)
	}
	if got := start.Add(delta); got != end {
		t.Fatalf("expected start+delta == end, got %v", got)
	}
}

func TestSizeGrowClampsToZero(t *testing.T) {
	tests := []struct {
		name  string
		size  Size
		delta Vector2D
		want  Size
	}{
		{"grow", Sz(300, 200), Vector2D{X: 20, Y: 10}, Sz(320, 210)},
		{"shrink", Sz(300, 200), Vector2D{X: -100, Y: -50}, Sz(200, 150)},
		{"width underflow", Sz(300, 200), Vector2D{X: -400, Y: 0}, Sz(0, 200)},
		{"both underflow", Sz(30, 20), Vector2D{X: -31, Y: -1000}, Sz(0, 0)},
		{"exact zero", Sz(30, 20), Vector2D{X: -30, Y: -20}, Sz(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.size.Grow(tt.delta); got != tt.want {
				t.Fatalf("%v.Grow(%v) = %v, want %v", tt.size, tt.delta, got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := R(10, 10, 20, 5)
	if !r.Contains(Pos(10, 10)) {
		t.Fatalf("expected top-left corner inside")
	}
	if r.Contains(Pos(30, 10)) {
		t.Fatalf("expected right edge to be exclusive")
	}
	if r.Contains(Pos(15, 15)) {
		t.Fatalf("expected bottom edge to be exclusive")
	}
}
