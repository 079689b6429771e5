package game

import (
	"math"
	"time"

	"github.com/cbodonnell/skwarz/pkg/collisions"
	"github.com/cbodonnell/skwarz/pkg/game/constants"
	"github.com/cbodonnell/skwarz/pkg/game/ring"
	"github.com/cbodonnell/skwarz/pkg/game/terrain"
	"github.com/cbodonnell/skwarz/pkg/game/types"
)

// Settings holds the tunables of a session.
type Settings struct {
	MinPlayers     int
	TickInterval   time.Duration
	ConfirmDelay   time.Duration
	SetupDelay     time.Duration
	AbandonTimeout time.Duration

	GridSide        float64
	MaxGridRadius   float64
	SpawnGridRadius float64

	PlayerSize    float64
	PlayerHealth  float64
	PlayerSpeed   float64
	ShootCooldown time.Duration

	ProjectileSize   float64
	ProjectileSpeed  float64
	ProjectileRange  float64
	ProjectileDamage float64

	RingStartDelay     time.Duration
	RingShrinkDuration time.Duration
	RingMinRadius      float64
	RingDamagePerTick  float64

	CommandQueueSize int
	// Seed fixes the terrain of every session; 0 draws a new seed per session
	Seed int64
}

func DefaultSettings() Settings {
	return Settings{
		MinPlayers:         constants.MinPlayers,
		TickInterval:       constants.TickInterval,
		ConfirmDelay:       constants.ConfirmDelay,
		SetupDelay:         constants.SetupDelay,
		AbandonTimeout:     constants.AbandonTimeout,
		GridSide:           constants.GridSide,
		MaxGridRadius:      constants.MaxGridRadius,
		SpawnGridRadius:    constants.SpawnGridRadius,
		PlayerSize:         constants.PlayerSize,
		PlayerHealth:       constants.PlayerHealth,
		PlayerSpeed:        constants.PlayerSpeed,
		ShootCooldown:      constants.ShootCooldown,
		ProjectileSize:     constants.ProjectileSize,
		ProjectileSpeed:    constants.ProjectileSpeed,
		ProjectileRange:    constants.ProjectileRange,
		ProjectileDamage:   constants.ProjectileDamage,
		RingStartDelay:     constants.RingStartDelay,
		RingShrinkDuration: constants.RingShrinkDuration,
		RingMinRadius:      constants.RingMinRadius,
		RingDamagePerTick:  constants.RingDamagePerTick,
		CommandQueueSize:   constants.CommandQueueSize,
	}
}

// worldMargin is the number of cells past the initial ring that players may
// still walk through.
const worldMargin = 10

// World is the static part of a session: terrain is derived from the seed and
// the current ring radius.
type World struct {
	Seed     int64
	GridSide float64
	// Extent bounds both axes to [-Extent, Extent] in world units
	Extent float64
	Ring   *ring.Ring
}

func NewWorld(seed int64, settings Settings) *World {
	return &World{
		Seed:     seed,
		GridSide: settings.GridSide,
		Extent:   (settings.MaxGridRadius + worldMargin) * settings.GridSide,
		Ring: ring.New(ring.NewRingOptions{
			MaxRadius:      settings.MaxGridRadius,
			MinRadius:      settings.RingMinRadius,
			StartDelay:     settings.RingStartDelay,
			ShrinkDuration: settings.RingShrinkDuration,
		}),
	}
}

// NewCollisionSpace creates a broad-phase space covering the world.
func (w *World) NewCollisionSpace() *collisions.Space {
	return collisions.NewSpace(w.Extent, int(math.Max(1, w.GridSide*2)))
}

// TerrainAt classifies the cell containing the world point x, y.
func (w *World) TerrainAt(x, y float64) terrain.Block {
	return terrain.Classify(terrain.Cell(x, w.GridSide), terrain.Cell(y, w.GridSide), w.Seed, w.Ring.Radius())
}

// Inside reports whether the box lies within the world bounds.
func (w *World) Inside(pos types.Position) bool {
	return pos.X >= -w.Extent && pos.Y >= -w.Extent &&
		pos.X+pos.Width <= w.Extent && pos.Y+pos.Height <= w.Extent
}

// Blocked reports whether the box leaves the world or has a corner on solid terrain.
func (w *World) Blocked(pos types.Position) bool {
	if !w.Inside(pos) {
		return true
	}
	for _, c := range pos.Corners() {
		if w.TerrainAt(c.X, c.Y).Solid() {
			return true
		}
	}
	return false
}

// Hazardous reports whether a corner of the box is on hazardous terrain.
func (w *World) Hazardous(pos types.Position) bool {
	for _, c := range pos.Corners() {
		if w.TerrainAt(c.X, c.Y).Hazardous() {
			return true
		}
	}
	return false
}
