package types

import (
	"github.com/cbodonnell/skwarz/pkg/kinematic"
	"github.com/cbodonnell/skwarz/pkg/messages"
	"github.com/solarlune/resolv"
)

type Projectile struct {
	ID        uint32
	OwnerID   int
	Position  Position
	Direction kinematic.Vector
	Speed     float64
	Range     float64
	Traveled  float64
	Object    *resolv.Object
}

// Advance moves the projectile one tick along its direction.
func (p *Projectile) Advance() {
	step := p.Direction.Scale(p.Speed)
	p.Position = p.Position.Translate(step.X, step.Y)
	p.Traveled += p.Speed
}

// Expired reports whether the projectile covered its range.
func (p *Projectile) Expired() bool {
	return p.Traveled >= p.Range
}

func (p *Projectile) View() messages.ProjectileView {
	return messages.ProjectileView{
		ID:      p.ID,
		OwnerID: p.OwnerID,
		X:       p.Position.X,
		Y:       p.Position.Y,
		Width:   p.Position.Width,
		Height:  p.Position.Height,
	}
}
