package geom

import "math"

// Rect is an axis-aligned box in world pixel coordinates.
// X,Y is the top-left corner; W,H must be positive for a valid rect.
type Rect struct {
	X, Y float64
	W, H float64
}

// NewRect builds a rect from a top-left corner and a size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Center returns the rect's center point.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.CenterX(), Y: r.CenterY()}
}

// Valid reports whether the rect has positive area.
func (r Rect) Valid() bool {
	return r.W > 0 && r.H > 0
}

// Moved returns a copy of the rect displaced by (dx, dy).
func (r Rect) Moved(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// At returns a copy of the rect repositioned to (x, y).
func (r Rect) At(x, y float64) Rect {
	return Rect{X: x, Y: y, W: r.W, H: r.H}
}

// Intersects reports whether two rects overlap with positive area.
// Rects that merely share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Left() < o.Right() && o.Left() < r.Right() &&
		r.Top() < o.Bottom() && o.Top() < r.Bottom()
}

// ContainsPoint reports whether (x, y) lies inside the rect.
// Intervals are half-open so a point on a shared edge belongs
// to exactly one of two adjacent rects.
func (r Rect) ContainsPoint(x, y float64) bool {
	return r.Left() <= x && x < r.Right() &&
		r.Top() <= y && y < r.Bottom()
}

// Vec2 is a point or direction in world pixel coordinates.
type Vec2 struct {
	X, Y float64
}

// Dist returns the distance between two points.
func Dist(a, b Vec2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Normalize scales v to unit length; the zero vector stays zero.
func Normalize(v Vec2) Vec2 {
	l := math.Sqrt(v.X*v.X + v.Y*v.Y)
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}
