package kinematic

// This package includes the small amount of vector math used by the simulation.

import (
	"math"
)

// Vector is a 2D vector in world units.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v multiplied by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{X: v.X * s, Y: v.Y * s}
}

// Length returns the euclidean length of v.
func (v Vector) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector of v, or the zero vector if v has no length
// or is not finite.
func (v Vector) Normalize() Vector {
	l := v.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vector{}
	}
	return Vector{X: v.X / l, Y: v.Y / l}
}

// ClampLength returns v scaled down to max if it is longer.
func (v Vector) ClampLength(max float64) Vector {
	l := v.Length()
	if math.IsNaN(l) || math.IsInf(l, 0) {
		return Vector{}
	}
	if l <= max {
		return v
	}
	return v.Scale(max / l)
}

// IsZero reports whether both components are zero.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
