package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/cbodonnell/skwarz/pkg/game"
	"github.com/cbodonnell/skwarz/pkg/game/constants"
	"github.com/cbodonnell/skwarz/pkg/log"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as a string such as "5s" in config files.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %v", string(b), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	LogLevel    string            `toml:"log_level"`
	Server      ServerConfig      `toml:"server"`
	Matchmaking MatchmakingConfig `toml:"matchmaking"`
	Game        GameConfig        `toml:"game"`
}

type ServerConfig struct {
	Port int `toml:"port"`
	// Path prefixes every route, e.g. "/skwarz"
	Path           string     `toml:"path"`
	AllowOrigins   []string   `toml:"allow_origins"`
	Compress       bool       `toml:"compress"`
	SendBufferSize int        `toml:"send_buffer_size"`
	TLS            *TLSConfig `toml:"tls"`
}

type TLSConfig struct {
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
}

type MatchmakingConfig struct {
	MinPlayers     int      `toml:"min_players"`
	MaxPlayers     int      `toml:"max_players"`
	DispatchDelay  Duration `toml:"dispatch_delay"`
	TicketTTL      Duration `toml:"ticket_ttl"`
	ExpiryInterval Duration `toml:"expiry_interval"`
}

type GameConfig struct {
	TickInterval     Duration `toml:"tick_interval"`
	ConfirmDelay     Duration `toml:"confirm_delay"`
	SetupDelay       Duration `toml:"setup_delay"`
	AbandonTimeout   Duration `toml:"abandon_timeout"`
	GridSide         float64  `toml:"grid_side"`
	MaxGridRadius    float64  `toml:"max_grid_radius"`
	SpawnGridRadius  float64  `toml:"spawn_grid_radius"`
	PlayerSize       float64  `toml:"player_size"`
	PlayerHealth     float64  `toml:"player_health"`
	PlayerSpeed      float64  `toml:"player_speed"`
	ShootCooldown    Duration `toml:"shoot_cooldown"`
	ProjectileSize   float64  `toml:"projectile_size"`
	ProjectileSpeed  float64  `toml:"projectile_speed"`
	ProjectileRange  float64  `toml:"projectile_range"`
	ProjectileDamage float64  `toml:"projectile_damage"`
	CommandQueueSize int      `toml:"command_queue_size"`
	// Seed fixes the terrain of every session; 0 draws one per session
	Seed int64      `toml:"seed"`
	Ring RingConfig `toml:"ring"`
}

type RingConfig struct {
	StartDelay     Duration `toml:"start_delay"`
	ShrinkDuration Duration `toml:"shrink_duration"`
	MinRadius      float64  `toml:"min_radius"`
	DamagePerTick  float64  `toml:"damage_per_tick"`
}

// Default returns the built-in configuration.
func Default() *Config {
	s := game.DefaultSettings()
	return &Config{
		LogLevel: log.LogLevelInfo.String(),
		Server: ServerConfig{
			Port:           8000,
			Path:           constants.SessionPath,
			SendBufferSize: constants.SendBufferSize,
		},
		Matchmaking: MatchmakingConfig{
			MinPlayers:     constants.MinPlayers,
			MaxPlayers:     constants.MaxPlayers,
			DispatchDelay:  Duration(constants.DispatchDelay),
			TicketTTL:      Duration(constants.TicketTTL),
			ExpiryInterval: Duration(constants.TicketExpiryInterval),
		},
		Game: GameConfig{
			TickInterval:     Duration(s.TickInterval),
			ConfirmDelay:     Duration(s.ConfirmDelay),
			SetupDelay:       Duration(s.SetupDelay),
			AbandonTimeout:   Duration(s.AbandonTimeout),
			GridSide:         s.GridSide,
			MaxGridRadius:    s.MaxGridRadius,
			SpawnGridRadius:  s.SpawnGridRadius,
			PlayerSize:       s.PlayerSize,
			PlayerHealth:     s.PlayerHealth,
			PlayerSpeed:      s.PlayerSpeed,
			ShootCooldown:    Duration(s.ShootCooldown),
			ProjectileSize:   s.ProjectileSize,
			ProjectileSpeed:  s.ProjectileSpeed,
			ProjectileRange:  s.ProjectileRange,
			ProjectileDamage: s.ProjectileDamage,
			CommandQueueSize: s.CommandQueueSize,
			Ring: RingConfig{
				StartDelay:     Duration(s.RingStartDelay),
				ShrinkDuration: Duration(s.RingShrinkDuration),
				MinRadius:      s.RingMinRadius,
				DamagePerTick:  s.RingDamagePerTick,
			},
		},
	}
}

// Load overlays the TOML file at path on the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %v", path, err)
	}
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %v", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations no server could run with.
func (c *Config) Validate() error {
	if _, err := log.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.TLS != nil && (c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "") {
		return fmt.Errorf("tls requires cert_file and key_file")
	}
	m := c.Matchmaking
	if m.MinPlayers < 1 {
		return fmt.Errorf("min_players must be at least 1, got %d", m.MinPlayers)
	}
	if m.MaxPlayers < m.MinPlayers {
		return fmt.Errorf("max_players %d is below min_players %d", m.MaxPlayers, m.MinPlayers)
	}
	if m.DispatchDelay < 0 || m.TicketTTL < 0 {
		return fmt.Errorf("matchmaking delays must not be negative")
	}
	if m.TicketTTL > 0 && m.ExpiryInterval <= 0 {
		return fmt.Errorf("expiry_interval must be positive when ticket_ttl is set")
	}
	g := c.Game
	if g.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if g.GridSide <= 0 || g.MaxGridRadius <= 0 {
		return fmt.Errorf("grid_side and max_grid_radius must be positive")
	}
	if g.SpawnGridRadius <= 0 || g.SpawnGridRadius > g.MaxGridRadius {
		return fmt.Errorf("spawn_grid_radius must be in (0, max_grid_radius]")
	}
	if g.PlayerSize <= 0 || g.PlayerSize >= g.GridSide {
		return fmt.Errorf("player_size must be in (0, grid_side)")
	}
	if g.Ring.MinRadius < 0 || g.Ring.MinRadius > g.MaxGridRadius {
		return fmt.Errorf("ring min_radius must be in [0, max_grid_radius]")
	}
	if g.Seed < 0 || g.Seed > 100000 {
		return fmt.Errorf("seed must be in [0, 100000], got %d", g.Seed)
	}
	if g.CommandQueueSize <= 0 {
		return fmt.Errorf("command_queue_size must be positive")
	}
	return nil
}

// Settings converts the game section for the session manager.
func (c *Config) Settings() game.Settings {
	g := c.Game
	return game.Settings{
		MinPlayers:         c.Matchmaking.MinPlayers,
		TickInterval:       g.TickInterval.Std(),
		ConfirmDelay:       g.ConfirmDelay.Std(),
		SetupDelay:         g.SetupDelay.Std(),
		AbandonTimeout:     g.AbandonTimeout.Std(),
		GridSide:           g.GridSide,
		MaxGridRadius:      g.MaxGridRadius,
		SpawnGridRadius:    g.SpawnGridRadius,
		PlayerSize:         g.PlayerSize,
		PlayerHealth:       g.PlayerHealth,
		PlayerSpeed:        g.PlayerSpeed,
		ShootCooldown:      g.ShootCooldown.Std(),
		ProjectileSize:     g.ProjectileSize,
		ProjectileSpeed:    g.ProjectileSpeed,
		ProjectileRange:    g.ProjectileRange,
		ProjectileDamage:   g.ProjectileDamage,
		RingStartDelay:     g.Ring.StartDelay.Std(),
		RingShrinkDuration: g.Ring.ShrinkDuration.Std(),
		RingMinRadius:      g.Ring.MinRadius,
		RingDamagePerTick:  g.Ring.DamagePerTick,
		CommandQueueSize:   g.CommandQueueSize,
		Seed:               g.Seed,
	}
}
