package game

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cbodonnell/skwarz/pkg/game/types"
	"github.com/cbodonnell/skwarz/pkg/log"
	"github.com/cbodonnell/skwarz/pkg/messages"
	"github.com/cbodonnell/skwarz/pkg/network"
	"github.com/cbodonnell/skwarz/pkg/queue"
	"github.com/cbodonnell/skwarz/pkg/tickets"
	"github.com/cbodonnell/skwarz/pkg/timers"
)

type Status string

const (
	StatusWaitingPlayers Status = "waiting players"
	StatusWaitingDelayed Status = "waiting delayed"
	StatusSettingUp      Status = "setting up"
	StatusStarting       Status = "starting"
	StatusRunning        Status = "running"
	StatusEnded          Status = "ended"
)

// inGame reports whether the roster minimum is enforced in this status.
func (s Status) inGame() bool {
	return s == StatusSettingUp || s == StatusStarting || s == StatusRunning
}

const (
	timerConfirm = "confirm"
	timerSetup   = "setup"
	timerAbandon = "abandon"

	inboxSize = 256
	maxSeed   = 100000
)

// Session is one match. A single goroutine, Run, owns every field below the
// mutex; other goroutines reach it by posting closures to the inbox.
type Session struct {
	ID     string
	Path   string
	RoomID int

	mu      sync.RWMutex
	status  Status
	players int

	settings     Settings
	tickets      []tickets.Ticket
	world        *World
	entities     *EntityRegistry
	interactions Interactions
	visibility   VisibilityFunc
	spawns       *spawnWalk

	timers   timers.Scheduler
	commands *queue.InMemoryQueue[command]
	inbox    chan func()
	done     chan struct{}

	ticker    *time.Ticker
	tickC     <-chan time.Time
	tickCount uint64
	startedAt time.Time

	onEnd  func(*Session)
	logger *log.Logger
}

type NewSessionOptions struct {
	ID     string
	Path   string
	RoomID int
	// Tickets are the tickets handed over by matchmaking; the roster holds at most one player per ticket
	Tickets  []tickets.Ticket
	Settings Settings
	// Timers defaults to wall clock timers dispatched to the session goroutine
	Timers timers.Scheduler
	// Interactions defaults to Rules built from Settings
	Interactions Interactions
	// Visibility defaults to DefaultVisibility
	Visibility VisibilityFunc
	// OnEnd is called on the session goroutine once the session ended
	OnEnd func(*Session)
}

func NewSession(opts NewSessionOptions) *Session {
	settings := opts.Settings
	seed := settings.Seed
	if seed == 0 {
		seed = rand.Int64N(maxSeed) + 1
	}

	ts := make([]tickets.Ticket, len(opts.Tickets))
	copy(ts, opts.Tickets)
	for i := range ts {
		ts[i].Taken = false
	}

	world := NewWorld(seed, settings)
	s := &Session{
		ID:           opts.ID,
		Path:         opts.Path,
		RoomID:       opts.RoomID,
		status:       StatusWaitingPlayers,
		settings:     settings,
		tickets:      ts,
		world:        world,
		entities:     NewEntityRegistry(settings.MinPlayers, len(ts), world.NewCollisionSpace()),
		interactions: opts.Interactions,
		visibility:   opts.Visibility,
		spawns:       newSpawnWalk(settings.SpawnGridRadius * settings.GridSide),
		timers:       opts.Timers,
		commands:     queue.NewInMemoryQueue[command](settings.CommandQueueSize),
		inbox:        make(chan func(), inboxSize),
		done:         make(chan struct{}),
		onEnd:        opts.OnEnd,
		logger:       log.With("session", opts.ID),
	}
	if s.interactions == nil {
		s.interactions = NewRules(settings)
	}
	if s.visibility == nil {
		s.visibility = DefaultVisibility
	}
	if s.timers == nil {
		s.timers = timers.New(s.post)
	}
	if settings.AbandonTimeout > 0 {
		s.timers.Schedule(timerAbandon, settings.AbandonTimeout, s.abandon)
	}
	return s
}

// Run processes the session until it ends or ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	s.logger.Info("Session started for room %d with %d tickets and seed %d", s.RoomID, len(s.tickets), s.world.Seed)
	for {
		select {
		case <-ctx.Done():
			s.end()
			return
		case <-s.done:
			return
		case fn := <-s.inbox:
			fn()
		case now := <-s.tickC:
			s.tick(now)
		}
	}
}

// Done is closed once the session ended.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// post hands fn to the session goroutine. It is dropped once the session ended.
func (s *Session) post(fn func()) {
	select {
	case <-s.done:
	case s.inbox <- fn:
	}
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) Seed() int64 {
	return s.world.Seed
}

// Info is a snapshot of the session for listings.
type Info struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	RoomID  int    `json:"roomId"`
	Status  Status `json:"status"`
	Players int    `json:"players"`
	Tickets int    `json:"tickets"`
}

func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Info{
		ID:      s.ID,
		Path:    s.Path,
		RoomID:  s.RoomID,
		Status:  s.status,
		Players: s.players,
		Tickets: len(s.tickets),
	}
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.logger.Debug("Session is %s", status)
}

func (s *Session) syncRosterSize() {
	s.mu.Lock()
	s.players = s.entities.Roster().Size()
	s.mu.Unlock()
}

// claimTicket marks the matching ticket as taken. A ticket is accepted once.
func (s *Session) claimTicket(id int, secret string) (tickets.Ticket, bool) {
	for i := range s.tickets {
		t := &s.tickets[i]
		if t.ID != id || t.Taken || !tickets.SecretsMatch(t.Secret, secret) {
			continue
		}
		t.Taken = true
		return *t, true
	}
	return tickets.Ticket{}, false
}

func (s *Session) enterGame(conn network.Conn, claim messages.TicketClaim) {
	if s.status == StatusEnded {
		emit(s.logger, conn, messages.EventNotConfirmed, nil)
		return
	}
	if _, ok := s.entities.PlayerByConn(conn); ok {
		s.logger.Warn("Connection %s already entered the game", conn.ID())
		emit(s.logger, conn, messages.EventNotConfirmed, nil)
		return
	}
	ticket, ok := s.claimTicket(claim.ID, claim.Secret)
	if !ok {
		s.logger.Debug("Rejected %v from connection %s", &tickets.ErrInvalidTicket{ID: claim.ID}, conn.ID())
		emit(s.logger, conn, messages.EventNotConfirmed, nil)
		return
	}

	player := types.NewPlayer(types.NewPlayerOptions{
		ID:            ticket.ID,
		Secret:        ticket.Secret,
		Conn:          conn,
		Size:          s.settings.PlayerSize,
		Health:        s.settings.PlayerHealth,
		ShootCooldown: s.settings.ShootCooldown,
	})
	if err := s.entities.AddPlayer(player); err != nil {
		s.logger.Error("Failed to add player %d: %v", player.ID, err)
		emit(s.logger, conn, messages.EventNotConfirmed, nil)
		return
	}
	if s.status.inGame() && len(s.placeSpawns([]*types.Player{player})) > 0 {
		s.reject(player)
		return
	}
	s.syncRosterSize()
	s.logger.Info("Player %d entered the game", player.ID)
	emit(s.logger, conn, messages.EventWaitingPlayers, nil)

	if s.status.inGame() {
		s.sendSetup(player)
	}
	s.checkConnected()
	if s.status == StatusWaitingPlayers && s.undersized() && s.allTicketsTaken() {
		s.logger.Warn("Session cannot reach %d players with %d tickets", s.settings.MinPlayers, len(s.tickets))
		s.end()
	}
}

// reject drops a player that could not be spawned and frees its ticket.
func (s *Session) reject(p *types.Player) {
	s.entities.RemovePlayer(p)
	s.syncRosterSize()
	s.releaseTicket(p.ID)
	emit(s.logger, p.Conn, messages.EventNotConfirmed, nil)
}

func (s *Session) releaseTicket(id int) {
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			s.tickets[i].Taken = false
			return
		}
	}
}

// undersized reports whether the session holds fewer tickets than it needs
// to start.
func (s *Session) undersized() bool {
	return len(s.tickets) < s.settings.MinPlayers
}

func (s *Session) allTicketsTaken() bool {
	for _, t := range s.tickets {
		if !t.Taken {
			return false
		}
	}
	return true
}

func (s *Session) leaveGame(conn network.Conn) {
	player, ok := s.entities.PlayerByConn(conn)
	if !ok {
		return
	}
	s.entities.RemovePlayer(player)
	s.syncRosterSize()
	s.logger.Info("Player %d left the game", player.ID)
	s.checkConnected()
}

// checkConnected moves the state machine after a roster change.
func (s *Session) checkConnected() {
	roster := s.entities.Roster()
	switch {
	case s.status == StatusWaitingPlayers && roster.PlayersEnough():
		s.timers.Cancel(timerAbandon)
		s.setStatus(StatusWaitingDelayed)
		if roster.IsFull() {
			s.setup()
			return
		}
		s.timers.Schedule(timerConfirm, s.settings.ConfirmDelay, s.confirmDelayElapsed)
	case s.status == StatusWaitingDelayed && roster.IsFull():
		s.timers.Cancel(timerConfirm)
		s.setup()
	case s.status.inGame() && !roster.PlayersEnough():
		s.end()
	}
}

func (s *Session) confirmDelayElapsed() {
	if s.status != StatusWaitingDelayed {
		return
	}
	if s.entities.Roster().PlayersEnough() {
		s.setup()
		return
	}
	s.setStatus(StatusWaitingPlayers)
	if s.settings.AbandonTimeout > 0 {
		s.timers.Schedule(timerAbandon, s.settings.AbandonTimeout, s.abandon)
	}
}

func (s *Session) abandon() {
	if s.status != StatusWaitingPlayers {
		return
	}
	s.logger.Warn("Session abandoned with %d players", s.entities.Roster().Size())
	s.end()
}

func (s *Session) setup() {
	s.setStatus(StatusSettingUp)
	for _, p := range s.placeSpawns(s.entities.Players()) {
		s.reject(p)
	}
	if !s.entities.Roster().PlayersEnough() {
		s.end()
		return
	}
	for _, p := range s.entities.Players() {
		s.sendSetup(p)
	}
	s.timers.Schedule(timerSetup, s.settings.SetupDelay, s.startGame)
}

// placeSpawns places players that were not placed yet, continuing the walk
// of earlier placements. Once the ring has shrunk inside the spawn area only
// the cells still inside the ring are scanned. It returns the players left
// unplaced.
func (s *Session) placeSpawns(players []*types.Player) []*types.Player {
	var placed []types.Position
	for _, p := range s.entities.Players() {
		if s.entities.Spawned(p) {
			placed = append(placed, p.Position)
		}
	}
	ringRadius := s.world.Ring.Radius()
	radius := math.Min(s.settings.SpawnGridRadius, ringRadius) * s.settings.GridSide
	var unplaced []*types.Player
	for _, p := range players {
		if s.entities.Spawned(p) {
			continue
		}
		valid := validSpawn(s.world, placed)
		var pos types.Position
		ok := false
		if ringRadius >= s.settings.SpawnGridRadius {
			pos, ok = s.spawns.next(p.Position.Width, p.Position.Height, valid)
		}
		if !ok {
			pos, ok = scanSpawn(radius, s.settings.GridSide, p.Position.Width, p.Position.Height, valid)
		}
		if !ok {
			s.logger.Warn("No valid spawn for player %d with seed %d and radius %.1f", p.ID, s.world.Seed, ringRadius)
			unplaced = append(unplaced, p)
			continue
		}
		s.entities.PlacePlayer(p, pos.X, pos.Y)
		placed = append(placed, p.Position)
	}
	return unplaced
}

func (s *Session) sendSetup(p *types.Player) {
	players := s.entities.Players()
	views := make([]messages.PlayerView, 0, len(players))
	for _, other := range players {
		views = append(views, other.View())
	}
	emit(s.logger, p.Conn, messages.EventSetup, messages.Setup{
		You:     p.View(),
		Players: views,
		Seed:    s.world.Seed,
	})
}

func (s *Session) startGame() {
	if s.status != StatusSettingUp {
		return
	}
	s.setStatus(StatusStarting)
	s.ticker = time.NewTicker(s.settings.TickInterval)
	s.tickC = s.ticker.C
}

// end stops the session for good: timers and ticker are stopped, remaining
// players are told the winner and disconnected. Only a session that got past
// setup has a winner.
func (s *Session) end() {
	if s.status == StatusEnded {
		return
	}
	inGame := s.status.inGame()
	s.setStatus(StatusEnded)
	s.timers.Stop()
	if s.ticker != nil {
		s.ticker.Stop()
	}
	s.tickC = nil
	s.commands.ClearQueue()

	players := s.entities.Players()
	winner := 0
	if inGame && len(players) == 1 && players[0].Alive() {
		winner = players[0].ID
	}
	for _, p := range players {
		emit(s.logger, p.Conn, messages.EventEnd, messages.End{Winner: winner})
		if p.Conn != nil {
			if err := p.Conn.Close(); err != nil {
				s.logger.Debug("Failed to close connection of player %d: %v", p.ID, err)
			}
		}
	}
	s.entities.Clear()
	s.syncRosterSize()
	close(s.done)
	s.logger.Info("Session ended after %d ticks, winner %d", s.tickCount, winner)

	if s.onEnd != nil {
		s.onEnd(s)
	}
}

func emit(logger *log.Logger, conn network.Conn, event string, data interface{}) {
	if conn == nil {
		return
	}
	if err := conn.Emit(event, data); err != nil {
		logger.Warn("Failed to emit %s to %s: %v", event, conn.ID(), err)
	}
}
