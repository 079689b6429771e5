package terrain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_IsPure(t *testing.T) {
	first := Classify(5, 5, 12345, 100)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Classify(5, 5, 12345, 100))
	}

	for x := -30; x <= 30; x++ {
		for y := -30; y <= 30; y++ {
			assert.Equal(t, Classify(x, y, 777, 40), Classify(x, y, 777, 40))
		}
	}
}

func TestClassify_HazardOverridesEverything(t *testing.T) {
	for _, seed := range []int64{1, 12345, 100000} {
		// the origin is always on the lattice
		assert.Equal(t, BlockWall, Classify(0, 0, seed, 100))
		assert.Equal(t, BlockFire, Classify(0, 1, seed, 0))
		assert.Equal(t, BlockFire, Classify(101, 0, seed, 100))
		assert.Equal(t, BlockFire, Classify(71, 71, seed, 100))
	}
}

func TestClassify_Lattice(t *testing.T) {
	// seed 12345: period 12345%50+25 = 70
	seed := int64(12345)
	for _, cell := range [][2]int{{0, 0}, {4, 1}, {-4, -1}, {70, 0}, {-74, 71}} {
		assert.Equal(t, BlockWall, Classify(cell[0], cell[1], seed, 1000), "cell %v", cell)
	}
}

func TestClassify_Magnitude(t *testing.T) {
	seed := int64(12345)
	s := float64(seed)
	// off lattice cells follow the magnitude thresholds
	for x := 10; x < 40; x++ {
		for y := 10; y < 40; y++ {
			fx, fy := float64(x), float64(y)
			magnitude := math.Abs(math.Cos(fx/2+fy*fy*fy+s*s)) * 100000
			want := BlockWall
			if magnitude > 4000 {
				want = BlockDirt
			} else if magnitude > 2000 {
				want = BlockBush
			}
			assert.Equal(t, want, Classify(x, y, seed, 1000))
		}
	}
}

func TestBlockProperties(t *testing.T) {
	assert.True(t, BlockWall.Solid())
	assert.False(t, BlockDirt.Solid())
	assert.False(t, BlockBush.Solid())
	assert.False(t, BlockFire.Solid())

	assert.True(t, BlockBush.Conceals())
	assert.True(t, BlockFire.Hazardous())
	assert.False(t, BlockDirt.Hazardous())

	assert.Equal(t, "bush", BlockBush.String())
}

func TestCell(t *testing.T) {
	assert.Equal(t, 0, Cell(0, 20))
	assert.Equal(t, 0, Cell(19.9, 20))
	assert.Equal(t, 1, Cell(20, 20))
	assert.Equal(t, -1, Cell(-0.1, 20))
	assert.Equal(t, -2, Cell(-21, 20))
}
