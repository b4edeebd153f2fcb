package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"quizgame-service/internal/app"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		// PublicURL is the base used in join links and QR codes. Empty means
		// the request host.
		PublicURL string `yaml:"public_url"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Game struct {
		Countdown      string `yaml:"countdown"`
		MaxPlayers     int    `yaml:"max_players"`
		MaxActiveGames int    `yaml:"max_active_games"`
		MaxAutoStart   int    `yaml:"max_auto_start"`
	} `yaml:"game"`
}

// Load reads YAML config from path. A missing file yields the zero config so
// the service can run on flags and environment alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Limits merges the game section over the default rules. Unset or
// non-positive values keep the defaults.
func (c Config) Limits() app.Limits {
	l := app.DefaultLimits()
	l.Countdown = TTLDuration(c.Game.Countdown, l.Countdown)
	if c.Game.MaxPlayers > 0 {
		l.MaxPlayers = c.Game.MaxPlayers
	}
	if c.Game.MaxActiveGames > 0 {
		l.MaxActiveGames = c.Game.MaxActiveGames
	}
	if c.Game.MaxAutoStart > 0 {
		l.MaxAutoStart = c.Game.MaxAutoStart
	}
	return l
}
