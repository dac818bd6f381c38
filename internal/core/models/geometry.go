package models

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Degrees returns the angle of v measured from the positive X axis.
func (v Vec2) Degrees() float64 {
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// Rotate returns v rotated counter-clockwise by deg degrees.
func (v Vec2) Rotate(deg float64) Vec2 {
	if deg == 0 {
		return v
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// FromDegrees returns the unit vector pointing at deg degrees.
func FromDegrees(deg float64) Vec2 {
	return Vec2{X: 1}.Rotate(deg)
}

// Distance computes the Euclidean distance between two points.
func Distance(a, b Vec2) float64 { return b.Sub(a).Length() }

// Transform is a position plus a rotation in degrees.
type Transform struct {
	Pos      Vec2
	Rotation float64
}

// Compose applies offset in the local space of t.
func (t Transform) Compose(offset Transform) Transform {
	return Transform{
		Pos:      t.Pos.Add(offset.Pos.Rotate(t.Rotation)),
		Rotation: t.Rotation + offset.Rotation,
	}
}
