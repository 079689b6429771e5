package types

import "github.com/cbodonnell/skwarz/pkg/kinematic"

// Position is an axis aligned box; X, Y is its top left corner.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (p Position) Center() kinematic.Vector {
	return kinematic.Vector{X: p.X + p.Width/2, Y: p.Y + p.Height/2}
}

// Corners returns the four corners of the box.
func (p Position) Corners() [4]kinematic.Vector {
	return [4]kinematic.Vector{
		{X: p.X, Y: p.Y},
		{X: p.X + p.Width, Y: p.Y},
		{X: p.X, Y: p.Y + p.Height},
		{X: p.X + p.Width, Y: p.Y + p.Height},
	}
}

// Overlaps reports whether the interiors of the two boxes intersect.
// Boxes that only share an edge do not overlap.
func (p Position) Overlaps(o Position) bool {
	return p.X < o.X+o.Width &&
		o.X < p.X+p.Width &&
		p.Y < o.Y+o.Height &&
		o.Y < p.Y+p.Height
}

func (p Position) Translate(dx, dy float64) Position {
	p.X += dx
	p.Y += dy
	return p
}
