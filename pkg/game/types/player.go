package types

import (
	"time"

	"github.com/cbodonnell/skwarz/pkg/kinematic"
	"github.com/cbodonnell/skwarz/pkg/messages"
	"github.com/cbodonnell/skwarz/pkg/network"
	"github.com/solarlune/resolv"
	"golang.org/x/time/rate"
)

type Player struct {
	ID       int
	Secret   string
	Position Position
	Health   float64
	Visible  bool
	Conn     network.Conn

	// Movement is the last movement intent received, applied every tick
	Movement kinematic.Vector
	// Object is the player's box in the collision space, nil until spawned
	Object *resolv.Object

	shots *rate.Limiter
}

type NewPlayerOptions struct {
	ID            int
	Secret        string
	Conn          network.Conn
	Size          float64
	Health        float64
	ShootCooldown time.Duration
}

func NewPlayer(opts NewPlayerOptions) *Player {
	return &Player{
		ID:     opts.ID,
		Secret: opts.Secret,
		Position: Position{
			Width:  opts.Size,
			Height: opts.Size,
		},
		Health:  opts.Health,
		Visible: true,
		Conn:    opts.Conn,
		shots:   rate.NewLimiter(rate.Every(opts.ShootCooldown), 1),
	}
}

// AllowShot reports whether the player may fire at now and consumes the shot.
func (p *Player) AllowShot(now time.Time) bool {
	return p.shots.AllowN(now, 1)
}

func (p *Player) Alive() bool {
	return p.Health > 0
}

// Damage removes amount health, never going below zero.
func (p *Player) Damage(amount float64) {
	p.Health -= amount
	if p.Health < 0 {
		p.Health = 0
	}
}

// View is the public state of the player. The secret is never included.
func (p *Player) View() messages.PlayerView {
	return messages.PlayerView{
		ID:      p.ID,
		X:       p.Position.X,
		Y:       p.Position.Y,
		Width:   p.Position.Width,
		Height:  p.Position.Height,
		Health:  p.Health,
		Visible: p.Visible,
	}
}
