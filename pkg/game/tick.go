package game

import (
	"time"

	"github.com/cbodonnell/skwarz/pkg/game/types"
	"github.com/cbodonnell/skwarz/pkg/kinematic"
	"github.com/cbodonnell/skwarz/pkg/messages"
	"github.com/cbodonnell/skwarz/pkg/network"
)

// command is a player input waiting for the next tick.
type command struct {
	conn     network.Conn
	movement *messages.Movement
	shoot    *messages.Shoot
}

// tick runs one simulation step. Only the first tick after setup and running
// ticks do anything.
func (s *Session) tick(now time.Time) {
	if s.status == StatusStarting {
		s.startedAt = now
		s.setStatus(StatusRunning)
	}
	if s.status != StatusRunning {
		return
	}
	s.tickCount++

	s.world.Ring.Update(now.Sub(s.startedAt))
	s.applyCommands(now)
	s.movePlayers()
	s.interactions.Projectiles(s.world, s.entities)
	s.interactions.Hazard(s.world, s.entities)
	s.interactions.Contacts(s.world, s.entities)
	s.eliminate()

	s.checkConnected()
	if s.status != StatusRunning {
		return
	}
	s.broadcastState()
}

func (s *Session) applyCommands(now time.Time) {
	for _, cmd := range s.commands.ReadAllMessages() {
		player, ok := s.entities.PlayerByConn(cmd.conn)
		if !ok || !s.entities.Spawned(player) {
			continue
		}
		switch {
		case cmd.movement != nil:
			player.Movement = kinematic.Vector{X: cmd.movement.X, Y: cmd.movement.Y}.ClampLength(1)
		case cmd.shoot != nil:
			s.shoot(player, kinematic.Vector{X: cmd.shoot.Direction.X, Y: cmd.shoot.Direction.Y}, now)
		}
	}
}

func (s *Session) shoot(player *types.Player, direction kinematic.Vector, now time.Time) {
	direction = direction.Normalize()
	if direction.IsZero() {
		return
	}
	if !player.AllowShot(now) {
		return
	}
	size := s.settings.ProjectileSize
	center := player.Position.Center()
	first := center.Add(direction.Scale(s.settings.ProjectileSpeed))
	s.entities.AddProjectile(&types.Projectile{
		OwnerID: player.ID,
		Position: types.Position{
			X:      first.X - size/2,
			Y:      first.Y - size/2,
			Width:  size,
			Height: size,
		},
		Direction: direction,
		Speed:     s.settings.ProjectileSpeed,
		Range:     s.settings.ProjectileRange,
	})
}

// movePlayers applies movement intents one axis at a time so a player slides
// along walls, then refreshes visibility.
func (s *Session) movePlayers() {
	for _, p := range s.entities.Players() {
		if !s.entities.Spawned(p) {
			continue
		}
		if !p.Movement.IsZero() {
			step := p.Movement.Scale(s.settings.PlayerSpeed)
			pos := p.Position
			if next := pos.Translate(step.X, 0); !s.world.Blocked(next) {
				pos = next
			}
			if next := pos.Translate(0, step.Y); !s.world.Blocked(next) {
				pos = next
			}
			s.entities.PlacePlayer(p, pos.X, pos.Y)
		}
		center := p.Position.Center()
		p.Visible = !s.world.TerrainAt(center.X, center.Y).Conceals()
	}
}

func (s *Session) eliminate() {
	for _, p := range s.entities.Players() {
		if p.Alive() {
			continue
		}
		s.entities.RemovePlayer(p)
		s.logger.Info("Player %d eliminated", p.ID)
		emit(s.logger, p.Conn, messages.EventEliminated, nil)
		if p.Conn != nil {
			if err := p.Conn.Close(); err != nil {
				s.logger.Debug("Failed to close connection of player %d: %v", p.ID, err)
			}
		}
	}
	s.syncRosterSize()
}

func (s *Session) broadcastState() {
	players := s.entities.Players()
	projectiles := s.entities.Projectiles()
	projectileViews := make([]messages.ProjectileView, 0, len(projectiles))
	for _, p := range projectiles {
		projectileViews = append(projectileViews, p.View())
	}
	for _, viewer := range players {
		emit(s.logger, viewer.Conn, messages.EventState, s.stateFor(viewer, players, projectileViews))
	}
}

// stateFor builds the state seen by viewer; visibility is evaluated per viewer.
func (s *Session) stateFor(viewer *types.Player, players []*types.Player, projectiles []messages.ProjectileView) messages.State {
	views := make([]messages.PlayerView, 0, len(players))
	for _, target := range players {
		if s.visibility(viewer, target) {
			views = append(views, target.View())
		}
	}
	return messages.State{
		Tick:        s.tickCount,
		You:         viewer.View(),
		Players:     views,
		Projectiles: projectiles,
		Seed:        s.world.Seed,
		Radius:      s.world.Ring.Radius(),
	}
}
