// Package ring implements the shrinking safe zone around the world origin.
// Radii are expressed in grid cells.
package ring

import (
	"math"
	"time"
)

type Ring struct {
	maxRadius      float64
	minRadius      float64
	startDelay     time.Duration
	shrinkDuration time.Duration

	radius float64
}

type NewRingOptions struct {
	MaxRadius      float64
	MinRadius      float64
	StartDelay     time.Duration
	ShrinkDuration time.Duration
}

func New(opts NewRingOptions) *Ring {
	return &Ring{
		maxRadius:      opts.MaxRadius,
		minRadius:      math.Min(opts.MinRadius, opts.MaxRadius),
		startDelay:     opts.StartDelay,
		shrinkDuration: opts.ShrinkDuration,
		radius:         opts.MaxRadius,
	}
}

// RadiusAt returns the scheduled radius after elapsed session time: the
// maximum during the start delay, then a linear shrink to the minimum.
func (r *Ring) RadiusAt(elapsed time.Duration) float64 {
	if elapsed <= r.startDelay {
		return r.maxRadius
	}
	if r.shrinkDuration <= 0 {
		return r.minRadius
	}
	progress := float64(elapsed-r.startDelay) / float64(r.shrinkDuration)
	if progress >= 1 {
		return r.minRadius
	}
	return r.maxRadius - (r.maxRadius-r.minRadius)*progress
}

// Update moves the radius to its scheduled value. The radius never grows,
// even if elapsed goes backwards.
func (r *Ring) Update(elapsed time.Duration) float64 {
	r.radius = math.Min(r.radius, r.RadiusAt(elapsed))
	return r.radius
}

func (r *Ring) Radius() float64 {
	return r.radius
}

// Reached reports whether the cell lies outside the current radius.
func (r *Ring) Reached(gridX, gridY int) bool {
	return Reached(gridX, gridY, r.radius)
}

// Reached reports whether the cell at gridX, gridY lies outside radius.
func Reached(gridX, gridY int, radius float64) bool {
	x, y := float64(gridX), float64(gridY)
	return x*x+y*y > radius*radius
}
