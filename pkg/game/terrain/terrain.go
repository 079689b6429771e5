// Package terrain classifies grid cells from the session seed. Nothing is
// stored: every server and client holding the seed computes the same map.
package terrain

import (
	"math"

	"github.com/cbodonnell/skwarz/pkg/game/ring"
)

type Block uint8

const (
	BlockWall Block = iota
	BlockDirt
	BlockBush
	BlockFire
)

func (b Block) String() string {
	switch b {
	case BlockWall:
		return "wall"
	case BlockDirt:
		return "dirt"
	case BlockBush:
		return "bush"
	case BlockFire:
		return "fire"
	default:
		return "unknown"
	}
}

// Solid blocks stop players and projectiles.
func (b Block) Solid() bool {
	return b == BlockWall
}

// Conceals reports whether a player standing on the block is hidden from others.
func (b Block) Conceals() bool {
	return b == BlockBush
}

// Hazardous blocks damage players standing on them.
func (b Block) Hazardous() bool {
	return b == BlockFire
}

const (
	magnitudeScale = 100000
	dirtThreshold  = 4000
	bushThreshold  = 2000

	latticeBase   = 25
	latticeSpread = 50
	latticeWidth  = 5
	latticeHeight = 2
)

// Classify returns the block at gridX, gridY for seed, given the current
// hazard radius in cells. Cells outside the radius are always fire.
func Classify(gridX, gridY int, seed int64, hazardRadius float64) Block {
	if ring.Reached(gridX, gridY, hazardRadius) {
		return BlockFire
	}

	x, y, s := float64(gridX), float64(gridY), float64(seed)
	magnitude := math.Abs(math.Cos(x/2+y*y*y+s*s)) * magnitudeScale

	period := int(seed%latticeSpread) + latticeBase
	if period != 0 && abs(gridX)%period < latticeWidth && abs(gridY)%period < latticeHeight {
		return BlockWall
	}

	switch {
	case magnitude > dirtThreshold:
		return BlockDirt
	case magnitude > bushThreshold:
		return BlockBush
	default:
		return BlockWall
	}
}

// Cell converts a world coordinate to its grid cell.
func Cell(v, gridSide float64) int {
	return int(math.Floor(v / gridSide))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
