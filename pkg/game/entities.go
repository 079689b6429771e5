package game

import (
	"sort"

	"github.com/cbodonnell/skwarz/pkg/collisions"
	"github.com/cbodonnell/skwarz/pkg/game/types"
	"github.com/cbodonnell/skwarz/pkg/network"
	"github.com/cbodonnell/skwarz/pkg/rooms"
	"github.com/solarlune/resolv"
)

// EntityRegistry owns the players and projectiles of one session and keeps
// their collision objects in sync with their positions.
type EntityRegistry struct {
	roster   *rooms.Room[*types.Player]
	byConn   map[network.Conn]*types.Player
	byObject map[*resolv.Object]*types.Player

	projectiles      map[uint32]*types.Projectile
	nextProjectileID uint32

	space *collisions.Space
}

func NewEntityRegistry(min, max int, space *collisions.Space) *EntityRegistry {
	return &EntityRegistry{
		roster:      rooms.New[*types.Player](0, min, max),
		byConn:      make(map[network.Conn]*types.Player),
		byObject:    make(map[*resolv.Object]*types.Player),
		projectiles: make(map[uint32]*types.Projectile),
		space:       space,
	}
}

func (e *EntityRegistry) Roster() *rooms.Room[*types.Player] {
	return e.roster
}

// Players returns the roster in join order.
func (e *EntityRegistry) Players() []*types.Player {
	return e.roster.Members()
}

// AddPlayer joins p to the roster. The player has no collision object until
// it is placed.
func (e *EntityRegistry) AddPlayer(p *types.Player) error {
	if err := e.roster.Join(p); err != nil {
		return err
	}
	if p.Conn != nil {
		e.byConn[p.Conn] = p
	}
	return nil
}

// PlacePlayer moves p to x, y, creating its collision object on first placement.
func (e *EntityRegistry) PlacePlayer(p *types.Player, x, y float64) {
	p.Position.X = x
	p.Position.Y = y
	if p.Object == nil {
		p.Object = e.space.Add(x, y, p.Position.Width, p.Position.Height, collisions.TagPlayer)
		e.byObject[p.Object] = p
		return
	}
	e.space.Move(p.Object, x, y)
}

// RemovePlayer drops p from the roster and the collision space.
func (e *EntityRegistry) RemovePlayer(p *types.Player) bool {
	if !e.roster.Leave(p) {
		return false
	}
	if p.Conn != nil {
		delete(e.byConn, p.Conn)
	}
	if p.Object != nil {
		e.space.Remove(p.Object)
		delete(e.byObject, p.Object)
		p.Object = nil
	}
	return true
}

func (e *EntityRegistry) PlayerByConn(conn network.Conn) (*types.Player, bool) {
	p, ok := e.byConn[conn]
	return p, ok
}

// Spawned reports whether p has been placed in the world.
func (e *EntityRegistry) Spawned(p *types.Player) bool {
	return p.Object != nil
}

// NearbyPlayers returns the players sharing broad-phase cells with obj,
// ordered by id.
func (e *EntityRegistry) NearbyPlayers(obj *resolv.Object) []*types.Player {
	var players []*types.Player
	for _, o := range e.space.Nearby(obj, collisions.TagPlayer) {
		if p, ok := e.byObject[o]; ok {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players
}

// AddProjectile assigns the next id to p and adds it to the collision space.
func (e *EntityRegistry) AddProjectile(p *types.Projectile) *types.Projectile {
	e.nextProjectileID++
	p.ID = e.nextProjectileID
	p.Object = e.space.Add(p.Position.X, p.Position.Y, p.Position.Width, p.Position.Height, collisions.TagProjectile)
	e.projectiles[p.ID] = p
	return p
}

func (e *EntityRegistry) MoveProjectile(p *types.Projectile) {
	if p.Object != nil {
		e.space.Move(p.Object, p.Position.X, p.Position.Y)
	}
}

func (e *EntityRegistry) RemoveProjectile(id uint32) {
	p, ok := e.projectiles[id]
	if !ok {
		return
	}
	if p.Object != nil {
		e.space.Remove(p.Object)
		p.Object = nil
	}
	delete(e.projectiles, id)
}

// Projectiles returns the live projectiles ordered by id.
func (e *EntityRegistry) Projectiles() []*types.Projectile {
	projectiles := make([]*types.Projectile, 0, len(e.projectiles))
	for _, p := range e.projectiles {
		projectiles = append(projectiles, p)
	}
	sort.Slice(projectiles, func(i, j int) bool { return projectiles[i].ID < projectiles[j].ID })
	return projectiles
}

// Clear removes every entity.
func (e *EntityRegistry) Clear() {
	for _, p := range e.Players() {
		e.RemovePlayer(p)
	}
	for id := range e.projectiles {
		e.RemoveProjectile(id)
	}
}
