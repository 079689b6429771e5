package game

import (
	"math"

	"github.com/cbodonnell/skwarz/pkg/game/types"
)

// Interactions resolves what happens between entities during a running tick.
// The session calls the methods in declaration order.
type Interactions interface {
	// Projectiles advances every projectile, expiring it on range or terrain
	// and applying damage to the player it hits.
	Projectiles(w *World, e *EntityRegistry)
	// Hazard damages players standing on hazardous terrain.
	Hazard(w *World, e *EntityRegistry)
	// Contacts separates overlapping players.
	Contacts(w *World, e *EntityRegistry)
}

// VisibilityFunc reports whether viewer receives target in its state.
type VisibilityFunc func(viewer, target *types.Player) bool

// DefaultVisibility shows a player to itself and hides concealed players from others.
func DefaultVisibility(viewer, target *types.Player) bool {
	return viewer == target || target.Visible
}

// Rules is the default Interactions: AABB overlap over the broad-phase,
// fixed damage per projectile hit and per hazardous tick.
type Rules struct {
	ProjectileDamage float64
	HazardDamage     float64
}

var _ Interactions = Rules{}

func NewRules(settings Settings) Rules {
	return Rules{
		ProjectileDamage: settings.ProjectileDamage,
		HazardDamage:     settings.RingDamagePerTick,
	}
}

func (r Rules) Projectiles(w *World, e *EntityRegistry) {
	for _, p := range e.Projectiles() {
		p.Advance()
		if p.Expired() || w.Blocked(p.Position) {
			e.RemoveProjectile(p.ID)
			continue
		}
		e.MoveProjectile(p)

		// the lowest id wins when a projectile overlaps several players
		for _, target := range e.NearbyPlayers(p.Object) {
			if target.ID == p.OwnerID || !target.Alive() {
				continue
			}
			if !p.Position.Overlaps(target.Position) {
				continue
			}
			target.Damage(r.ProjectileDamage)
			e.RemoveProjectile(p.ID)
			break
		}
	}
}

func (r Rules) Hazard(w *World, e *EntityRegistry) {
	for _, p := range e.Players() {
		if !e.Spawned(p) {
			continue
		}
		center := p.Position.Center()
		if w.TerrainAt(center.X, center.Y).Hazardous() {
			p.Damage(r.HazardDamage)
		}
	}
}

// Contacts pushes every overlapping pair apart along the axis of least
// penetration, each player taking half of the push. A push that would put a
// player on solid terrain is not applied to that player.
func (r Rules) Contacts(w *World, e *EntityRegistry) {
	for _, a := range e.Players() {
		if !e.Spawned(a) {
			continue
		}
		for _, b := range e.NearbyPlayers(a.Object) {
			if b.ID <= a.ID || !a.Position.Overlaps(b.Position) {
				continue
			}
			dxA, dyA := separation(a.Position, b.Position)
			push(w, e, a, dxA/2, dyA/2)
			push(w, e, b, -dxA/2, -dyA/2)
		}
	}
}

// separation returns the displacement that moves a out of b.
func separation(a, b types.Position) (float64, float64) {
	overlapX := math.Min(a.X+a.Width, b.X+b.Width) - math.Max(a.X, b.X)
	overlapY := math.Min(a.Y+a.Height, b.Y+b.Height) - math.Max(a.Y, b.Y)
	ca, cb := a.Center(), b.Center()
	if overlapX <= overlapY {
		if ca.X < cb.X {
			return -overlapX, 0
		}
		return overlapX, 0
	}
	if ca.Y < cb.Y {
		return 0, -overlapY
	}
	return 0, overlapY
}

func push(w *World, e *EntityRegistry, p *types.Player, dx, dy float64) {
	next := p.Position.Translate(dx, dy)
	if w.Blocked(next) {
		return
	}
	e.PlacePlayer(p, next.X, next.Y)
}
