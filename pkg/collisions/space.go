package collisions

import (
	"math"

	"github.com/solarlune/resolv"
)

const (
	TagPlayer     string = "player"
	TagProjectile string = "projectile"
)

// Space is a resolv.Space centered on the world origin. resolv indexes cells
// from zero, so world coordinates are shifted by the half extent on the way in
// and never leak out: callers only see world coordinates.
type Space struct {
	space  *resolv.Space
	offset float64
}

// NewSpace creates a square space covering [-extent, extent] on both axes.
func NewSpace(extent float64, cellSize int) *Space {
	side := int(math.Ceil(extent * 2))
	return &Space{
		space:  resolv.NewSpace(side, side, cellSize, cellSize),
		offset: extent,
	}
}

// Add creates an object at world position x, y and adds it to the space.
func (s *Space) Add(x, y, w, h float64, tags ...string) *resolv.Object {
	obj := resolv.NewObject(x+s.offset, y+s.offset, w, h, tags...)
	s.space.Add(obj)
	return obj
}

// Move places obj at world position x, y and refreshes its cells.
func (s *Space) Move(obj *resolv.Object, x, y float64) {
	obj.Position.X = x + s.offset
	obj.Position.Y = y + s.offset
	obj.Update()
}

func (s *Space) Remove(obj *resolv.Object) {
	s.space.Remove(obj)
}

// Nearby returns the objects sharing a cell with obj that carry one of tags.
// It is a broad-phase query; callers run their own overlap test.
func (s *Space) Nearby(obj *resolv.Object, tags ...string) []*resolv.Object {
	collision := obj.Check(0, 0, tags...)
	if collision == nil {
		return nil
	}
	return collision.Objects
}
