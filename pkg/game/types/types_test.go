package types

import (
	"testing"
	"time"

	"github.com/cbodonnell/skwarz/pkg/kinematic"
	"github.com/stretchr/testify/assert"
)

func TestPosition_Overlaps(t *testing.T) {
	a := Position{X: 0, Y: 0, Width: 10, Height: 10}
	tests := []struct {
		name string
		b    Position
		want bool
	}{
		{"same box", a, true},
		{"partial", Position{X: 5, Y: 5, Width: 10, Height: 10}, true},
		{"contained", Position{X: 2, Y: 2, Width: 2, Height: 2}, true},
		{"shared edge", Position{X: 10, Y: 0, Width: 10, Height: 10}, false},
		{"apart", Position{X: 20, Y: 20, Width: 5, Height: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a))
		})
	}
}

func TestPosition_Corners(t *testing.T) {
	p := Position{X: 1, Y: 2, Width: 3, Height: 4}
	assert.Equal(t, [4]kinematic.Vector{{X: 1, Y: 2}, {X: 4, Y: 2}, {X: 1, Y: 6}, {X: 4, Y: 6}}, p.Corners())
	assert.Equal(t, kinematic.Vector{X: 2.5, Y: 4}, p.Center())
}

func TestPlayer(t *testing.T) {
	p := NewPlayer(NewPlayerOptions{ID: 3, Secret: "s3cret", Size: 16, Health: 100, ShootCooldown: time.Second})

	view := p.View()
	assert.Equal(t, 3, view.ID)
	assert.Equal(t, 16.0, view.Width)
	assert.True(t, view.Visible)

	now := time.Now()
	assert.True(t, p.AllowShot(now))
	assert.False(t, p.AllowShot(now.Add(500*time.Millisecond)))
	assert.True(t, p.AllowShot(now.Add(1100*time.Millisecond)))

	p.Damage(60)
	assert.True(t, p.Alive())
	p.Damage(60)
	assert.False(t, p.Alive())
	assert.Equal(t, 0.0, p.Health)
}

func TestProjectile_Advance(t *testing.T) {
	p := &Projectile{
		Position:  Position{Width: 6, Height: 6},
		Direction: kinematic.Vector{X: 1},
		Speed:     10,
		Range:     25,
	}
	p.Advance()
	p.Advance()
	assert.Equal(t, 20.0, p.Position.X)
	assert.False(t, p.Expired())
	p.Advance()
	assert.True(t, p.Expired())
}
