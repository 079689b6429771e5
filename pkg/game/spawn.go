package game

import (
	"math"

	"github.com/cbodonnell/skwarz/pkg/game/types"
)

// spawnInset keeps the box off the cell edge the walk landed on
const spawnInset = 2

// spawnWalk zig-zags across the spawn area from its left edge. Each placement
// advances the walk by a tenth of the radius per axis, bouncing off the
// radius, so successive players land far apart.
type spawnWalk struct {
	x, y       float64
	xInc, yInc float64
	radius     float64
	// maxNudges bounds the unit steps taken looking for one valid box: the
	// perimeter of the spawn area
	maxNudges int
}

func newSpawnWalk(radius float64) *spawnWalk {
	inc := math.Trunc(radius / 10)
	return &spawnWalk{
		x:         -radius,
		y:         0,
		xInc:      inc,
		yInc:      -inc,
		radius:    radius,
		maxNudges: int(math.Max(1, 8*radius)),
	}
}

// next returns the first box along the walk accepted by valid, nudging one
// unit per axis at a time. It reports false when no box was accepted.
func (s *spawnWalk) next(width, height float64, valid func(types.Position) bool) (types.Position, bool) {
	found := false
	var candidate types.Position
	for i := 0; i < s.maxNudges; i++ {
		candidate = types.Position{X: s.x + spawnInset, Y: s.y + spawnInset, Width: width, Height: height}
		if valid(candidate) {
			found = true
			break
		}
		s.x += unit(s.xInc)
		s.y += unit(s.yInc)
		s.bounce()
	}

	s.x += s.xInc
	s.y += s.yInc
	s.bounce()
	return candidate, found
}

func (s *spawnWalk) bounce() {
	if math.Abs(s.x) >= s.radius {
		s.xInc = -s.xInc
		s.x = math.Copysign(s.radius, s.x)
	}
	if math.Abs(s.y) >= s.radius {
		s.yInc = -s.yInc
		s.y = math.Copysign(s.radius, s.y)
	}
}

func unit(v float64) float64 {
	if v >= 0 {
		return 1
	}
	return -1
}

// scanSpawn visits every cell of the spawn area row by row and returns the
// first box accepted by valid.
func scanSpawn(radius, gridSide, width, height float64, valid func(types.Position) bool) (types.Position, bool) {
	for y := -radius; y <= radius; y += gridSide {
		for x := -radius; x <= radius; x += gridSide {
			candidate := types.Position{X: x + spawnInset, Y: y + spawnInset, Width: width, Height: height}
			if valid(candidate) {
				return candidate, true
			}
		}
	}
	return types.Position{}, false
}

// validSpawn accepts boxes with no corner on solid or hazardous terrain that
// do not overlap an already placed player.
func validSpawn(w *World, placed []types.Position) func(types.Position) bool {
	return func(pos types.Position) bool {
		if w.Blocked(pos) || w.Hazardous(pos) {
			return false
		}
		for _, other := range placed {
			if pos.Overlaps(other) {
				return false
			}
		}
		return true
	}
}
