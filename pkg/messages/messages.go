package messages

import "encoding/json"

const (
	// MessageBufferSize represents the maximum size of an inbound message
	MessageBufferSize = 4096
)

// Matchmaking channel events
const (
	EventConfirm        = "confirm"
	EventWaitingOnQueue = "waiting on queue"
	EventNotConfirmed   = "not confirmed"
	EventPlayers        = "players"
	EventGame           = "game"
)

// Session channel events
const (
	EventEnterGame      = "enterGame"
	EventWaitingPlayers = "waiting players"
	EventSetup          = "setup"
	EventState          = "state"
	EventMovement       = "movement"
	EventShoot          = "shoot"
	EventEliminated     = "eliminated"
	EventEnd            = "end"
)

// Envelope is the frame exchanged on every channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TicketClaim is sent by clients on confirm and enterGame.
type TicketClaim struct {
	ID     int    `json:"id"`
	Secret string `json:"secret"`
}

type WaitingOnQueue struct {
	PlayersCount int `json:"playersCount"`
}

type Players struct {
	Count int `json:"count"`
}

// Game tells the members of a dispatched room where their session lives.
type Game struct {
	Path string `json:"path"`
}

// Vector mirrors kinematic.Vector on the wire.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Movement is the movement intent of a player; components are in [-1, 1].
type Movement struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Shoot struct {
	Direction Vector `json:"direction"`
}

type PlayerView struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Health  float64 `json:"health"`
	Visible bool    `json:"visible"`
}

type ProjectileView struct {
	ID      uint32  `json:"id"`
	OwnerID int     `json:"ownerId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

type Setup struct {
	You     PlayerView   `json:"you"`
	Players []PlayerView `json:"players"`
	Seed    int64        `json:"seed"`
}

type State struct {
	Tick        uint64           `json:"tick"`
	You         PlayerView       `json:"you"`
	Players     []PlayerView     `json:"players"`
	Projectiles []ProjectileView `json:"projectiles"`
	Seed        int64            `json:"seed"`
	Radius      float64          `json:"radius"`
}

type End struct {
	// Winner is the id of the last player standing, 0 if none
	Winner int `json:"winner"`
}
