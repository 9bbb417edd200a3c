// Package geom holds the small value types used for window placement and
// pointer gestures.
package geom

import "fmt"

// Position is a point in root-window coordinates.
type Position struct {
	X int
	Y int
}

// Size is a window width and height.
type Size struct {
	Width  int
	Height int
}

// Vector2D is a displacement between two positions.
type Vector2D struct {
	X int
	Y int
}

// Pos returns the Position (x, y).
func Pos(x, y int) Position { return Position{X: x, Y: y} }

// Sz returns the Size width×height.
func Sz(width, height int) Size { return Size{Width: width, Height: height} }

// Add translates p by v.
func (p Position) Add(v Vector2D) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the vector that takes q to p.
func (p Position) Sub(q Position) Vector2D {
	return Vector2D{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Add grows s by v. The result may be negative; use Clamp for window sizes.
func (s Size) Add(v Vector2D) Size {
	return Size{Width: s.Width + v.X, Height: s.Height + v.Y}
}

// Clamp returns s with negative components replaced by zero.
func (s Size) Clamp() Size {
	return Size{Width: max(s.Width, 0), Height: max(s.Height, 0)}
}

// Grow returns s resized by v and clamped so neither dimension drops below zero.
func (s Size) Grow(v Vector2D) Size {
	return s.Add(v).Clamp()
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

func (v Vector2D) String() string {
	return fmt.Sprintf("<%d, %d>", v.X, v.Y)
}

// Rect is a positioned size.
type Rect struct {
	Position
	Size
}

// R builds a Rect from its components.
func R(x, y, width, height int) Rect {
	return Rect{Position: Pos(x, y), Size: Sz(width, height)}
}

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p Position) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("%s@%s", r.Size, r.Position)
}
