package ring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRing() *Ring {
	return New(NewRingOptions{
		MaxRadius:      100,
		MinRadius:      10,
		StartDelay:     10 * time.Second,
		ShrinkDuration: 90 * time.Second,
	})
}

func TestRing_RadiusAt(t *testing.T) {
	r := newTestRing()
	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 100},
		{10 * time.Second, 100},
		{55 * time.Second, 55},
		{100 * time.Second, 10},
		{time.Hour, 10},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, r.RadiusAt(tt.elapsed), 1e-9, "elapsed %s", tt.elapsed)
	}
}

func TestRing_UpdateIsMonotonic(t *testing.T) {
	r := newTestRing()
	prev := r.Radius()
	for elapsed := time.Duration(0); elapsed <= 2*time.Minute; elapsed += 250 * time.Millisecond {
		radius := r.Update(elapsed)
		assert.LessOrEqual(t, radius, prev)
		prev = radius
	}
	assert.Equal(t, 10.0, r.Radius())

	r.Update(0)
	assert.Equal(t, 10.0, r.Radius())
}

func TestRing_NoShrinkDuration(t *testing.T) {
	r := New(NewRingOptions{MaxRadius: 50, MinRadius: 5, StartDelay: time.Second})
	assert.Equal(t, 50.0, r.Update(time.Second))
	assert.Equal(t, 5.0, r.Update(time.Second+1))
}

func TestReached(t *testing.T) {
	assert.False(t, Reached(0, 0, 0))
	assert.False(t, Reached(3, 4, 5))
	assert.True(t, Reached(3, 5, 5))
	assert.True(t, Reached(-101, 0, 100))

	r := newTestRing()
	assert.False(t, r.Reached(60, 60))
	r.Update(55 * time.Second)
	assert.True(t, r.Reached(60, 60))
}
