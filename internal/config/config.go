package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode        string            `mapstructure:"mode"`
	Port        int               `mapstructure:"port"`
	LogLevel    string            `mapstructure:"log_level"`
	WS          WSConfig          `mapstructure:"ws"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Broadcast   BroadcastConfig   `mapstructure:"broadcast"`
	Hub         HubConfig         `mapstructure:"hub"`
	Invitations InvitationsConfig `mapstructure:"invitations"`
	Reminders   RemindersConfig   `mapstructure:"reminders"`
}

type WSConfig struct {
	ReadLimit       int64         `mapstructure:"read_limit"`
	PingPeriod      time.Duration `mapstructure:"ping_period"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
	WriteWait       time.Duration `mapstructure:"write_wait"`
	SendBuffer      int           `mapstructure:"send_buffer"`
	AuthTimeout     time.Duration `mapstructure:"auth_timeout"`
	EventsPerWindow int           `mapstructure:"events_per_window"`
	EventWindow     time.Duration `mapstructure:"event_window"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Issuer string        `mapstructure:"issuer"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type BroadcastConfig struct {
	Backend       string `mapstructure:"backend"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	NatsURL       string `mapstructure:"nats_url"`
	Prefix        string `mapstructure:"prefix"`
}

type HubConfig struct {
	PersistTimeout   time.Duration `mapstructure:"persist_timeout"`
	MaxMessageLength int           `mapstructure:"max_message_length"`
	// Backpressure is "kick" or "drop".
	Backpressure string `mapstructure:"backpressure"`
}

type InvitationsConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	ClientURL       string        `mapstructure:"client_url"`
}

type RemindersConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	TaskLead  time.Duration `mapstructure:"task_lead"`
	EventLead time.Duration `mapstructure:"event_lead"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("ws.read_limit", 65536)
	v.SetDefault("ws.ping_period", "54s")
	v.SetDefault("ws.pong_wait", "60s")
	v.SetDefault("ws.write_wait", "10s")
	v.SetDefault("ws.send_buffer", 64)
	v.SetDefault("ws.auth_timeout", "10s")
	v.SetDefault("ws.events_per_window", 40)
	v.SetDefault("ws.event_window", "5s")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", "168h")
	v.SetDefault("jwt.issuer", "studyhub")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "studyhub.db")

	v.SetDefault("broadcast.backend", "local")
	v.SetDefault("broadcast.redis_addr", "localhost:6379")
	v.SetDefault("broadcast.redis_password", "")
	v.SetDefault("broadcast.redis_db", 0)
	v.SetDefault("broadcast.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("broadcast.prefix", "studyhub.rooms")

	v.SetDefault("hub.persist_timeout", "5s")
	v.SetDefault("hub.max_message_length", 4000)
	v.SetDefault("hub.backpressure", "kick")

	v.SetDefault("invitations.ttl", "168h")
	v.SetDefault("invitations.cleanup_interval", "24h")
	v.SetDefault("invitations.client_url", "http://localhost:5173")

	v.SetDefault("reminders.interval", "1m")
	v.SetDefault("reminders.task_lead", "5m")
	v.SetDefault("reminders.event_lead", "15m")
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then STUDYHUB_* overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg(".env not loaded")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	setDefaults(v)
	v.SetEnvPrefix("STUDYHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("db", cfg.Database.Driver).Str("broadcast", cfg.Broadcast.Backend).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required (STUDYHUB_JWT_SECRET)")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	switch c.Broadcast.Backend {
	case "local", "redis", "nats":
	default:
		return fmt.Errorf("unknown broadcast.backend %q", c.Broadcast.Backend)
	}
	switch c.Hub.Backpressure {
	case "kick", "drop":
	default:
		return fmt.Errorf("unknown hub.backpressure %q", c.Hub.Backpressure)
	}
	if c.WS.SendBuffer <= 0 {
		return errors.New("ws.send_buffer must be positive")
	}
	return nil
}
