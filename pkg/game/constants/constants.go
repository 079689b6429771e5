package constants

import "time"

const (
	// SessionPath is the HTTP prefix of the matchmaking endpoint
	SessionPath string = "/skwarz"
	// MinPlayers is the smallest roster a room dispatches and a session keeps running with
	MinPlayers int = 2
	// MaxPlayers is the largest matchmaking room
	MaxPlayers int = 10
	// DispatchDelay is how long a room with enough players waits for more before dispatching
	DispatchDelay time.Duration = 5 * time.Second
	// TicketTTL is how long an unconfirmed ticket stays valid
	TicketTTL time.Duration = 5 * time.Minute
	// TicketExpiryInterval is how often expired tickets are swept
	TicketExpiryInterval time.Duration = time.Minute

	// TickInterval is the simulation step (~60 Hz)
	TickInterval time.Duration = 16 * time.Millisecond
	// ConfirmDelay gives the remaining tickets of a dispatched room time to connect
	ConfirmDelay time.Duration = 100 * time.Millisecond
	// SetupDelay is the pause between the setup message and the first tick
	SetupDelay time.Duration = 3 * time.Second
	// AbandonTimeout ends sessions that never gather enough players
	AbandonTimeout time.Duration = time.Minute

	// GridSide is the side of a terrain cell in world units
	GridSide float64 = 20
	// MaxGridRadius is the initial safe radius in cells
	MaxGridRadius float64 = 100
	// SpawnGridRadius bounds spawn placement in cells
	SpawnGridRadius float64 = 80

	// PlayerSize is the side of the player bounding box
	PlayerSize float64 = GridSide - 4
	// PlayerHealth is the starting health
	PlayerHealth float64 = 100
	// PlayerSpeed is the distance covered per tick at full input
	PlayerSpeed float64 = 3

	// ProjectileSize is the side of the projectile bounding box
	ProjectileSize float64 = 6
	// ProjectileSpeed is the distance covered per tick
	ProjectileSpeed float64 = 10
	// ProjectileRange is the distance after which a projectile expires
	ProjectileRange float64 = 600
	// ProjectileDamage is the health removed per hit
	ProjectileDamage float64 = 20
	// ShootCooldown is the minimum time between two shots of a player
	ShootCooldown time.Duration = 300 * time.Millisecond

	// RingStartDelay is how long the ring holds its initial radius
	RingStartDelay time.Duration = 30 * time.Second
	// RingShrinkDuration is how long the ring takes to reach its minimum radius
	RingShrinkDuration time.Duration = 3 * time.Minute
	// RingMinRadius is the final safe radius in cells
	RingMinRadius float64 = 0
	// RingDamagePerTick is the health a player outside the ring loses every tick
	RingDamagePerTick float64 = 0.25

	// CommandQueueSize bounds the commands buffered between two ticks
	CommandQueueSize int = 1024
	// SendBufferSize bounds the messages buffered per connection
	SendBufferSize int = 64
)
