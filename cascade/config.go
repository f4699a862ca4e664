package cascade

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config containing all the configuration values for a service.
type Config struct {
	Port       uint16
	CookieName string
	DBPath     string
	// QueueSize is the length of the worker's job queue.
	QueueSize int
	// SessionMaxAge is how long a session cookie stays valid.  Zero never
	// expires.
	SessionMaxAge time.Duration
}

// DefaultConfig returns the configuration used for values that are not set
// in a configuration file.
func DefaultConfig() Config {
	return Config{
		Port:          3000,
		CookieName:    "cascade-session",
		DBPath:        "./cascade.db",
		QueueSize:     100,
		SessionMaxAge: 7 * 24 * time.Hour,
	}
}

// config.toml key mapping.
type fileConfig struct {
	Port          uint16 `toml:"port"`
	CookieName    string `toml:"cookie_name"`
	DBPath        string `toml:"db_path"`
	QueueSize     int    `toml:"queue_size"`
	SessionMaxAge string `toml:"session_max_age"`
}

// LoadConfig reads a TOML configuration file and overlays the values it
// defines on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("cookie_name") {
		cfg.CookieName = strings.TrimSpace(raw.CookieName)
	}
	if meta.IsDefined("db_path") {
		cfg.DBPath = strings.TrimSpace(raw.DBPath)
	}
	if meta.IsDefined("queue_size") {
		cfg.QueueSize = raw.QueueSize
	}
	if meta.IsDefined("session_max_age") {
		age, err := time.ParseDuration(strings.TrimSpace(raw.SessionMaxAge))
		if err != nil {
			return Config{}, fmt.Errorf("load config: session_max_age: %w", err)
		}
		cfg.SessionMaxAge = age
	}
	if cfg.CookieName == "" {
		return Config{}, fmt.Errorf("load config: cookie_name must not be empty")
	}
	return cfg, nil
}
