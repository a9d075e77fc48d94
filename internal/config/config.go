package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DOSAGE"

type Config struct {
	Env string `mapstructure:"env" validate:"oneof=dev test prod"`

	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Registry      RegistryConfig      `mapstructure:"registry"`
	Redis         RedisConfig         `mapstructure:"redis"`
	History       HistoryConfig       `mapstructure:"history"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	CORS          CORSConfig          `mapstructure:"cors"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	App    string `mapstructure:"app"`
}

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type StorageConfig struct {
	Backend    string `mapstructure:"backend" validate:"oneof=memory postgres sqlite"`
	DSN        string `mapstructure:"dsn" validate:"required_if=Backend postgres"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Backend sqlite"`
	// SeedFile es un YAML opcional con devices/asignaciones/dosis (memory y sqlite).
	SeedFile string `mapstructure:"seed_file"`
}

// AuthConfig: sin BaseURL el servicio corre en modo dev (header X-Debug-User-ID).
type AuthConfig struct {
	BaseURL      string        `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey       string        `mapstructure:"api_key" validate:"required_with=BaseURL"`
	APIKeyHeader string        `mapstructure:"api_key_header"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

func (a AuthConfig) Enabled() bool { return strings.TrimSpace(a.BaseURL) != "" }

// RegistryConfig: si BaseURL viene, las asignaciones se leen del registry remoto.
type RegistryConfig struct {
	BaseURL      string        `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey       string        `mapstructure:"api_key" validate:"required_with=BaseURL"`
	APIKeyHeader string        `mapstructure:"api_key_header"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

func (r RegistryConfig) Enabled() bool { return strings.TrimSpace(r.BaseURL) != "" }

// RedisConfig: con Addr vacío el feed es in-process.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
	Channel  string `mapstructure:"channel" validate:"required"`
}

func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

type HistoryConfig struct {
	PageSize     int    `mapstructure:"page_size" validate:"min=1,max=500"`
	DefaultDays  int    `mapstructure:"default_days" validate:"min=0,max=366"`
	MaxRangeDays int    `mapstructure:"max_range_days" validate:"min=1,max=3660"`
	Timezone     string `mapstructure:"timezone" validate:"required"`
}

// Location resuelve Timezone (validado en Load).
func (h HistoryConfig) Location() *time.Location {
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type NotificationsConfig struct {
	Max              int           `mapstructure:"max" validate:"min=1"`
	TTL              time.Duration `mapstructure:"ttl" validate:"gt=0"`
	SubscribeTimeout time.Duration `mapstructure:"subscribe_timeout" validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoadOptions struct {
	// ConfigFile explícito; si está vacío se busca config.yaml en . y ./config.
	ConfigFile string
	// EnvFile se carga antes de leer env (default ".env"); si no existe se ignora.
	EnvFile string
}

// Load combina defaults, archivo YAML opcional y variables DOSAGE_* (ganan las env).
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// desde env llega "a, b": normalizamos espacios y vacíos
	cfg.CORS.AllowedOrigins = splitList(strings.Join(cfg.CORS.AllowedOrigins, ","))

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.app", "dosage-dashboard")

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.sqlite_path", "dosage.db")
	v.SetDefault("storage.seed_file", "")

	v.SetDefault("auth.base_url", "")
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.api_key_header", "X-Api-Key")
	v.SetDefault("auth.timeout", "5s")

	v.SetDefault("registry.base_url", "")
	v.SetDefault("registry.api_key", "")
	v.SetDefault("registry.api_key_header", "X-Api-Key")
	v.SetDefault("registry.timeout", "5s")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "dosage:medical_raw:insert")

	v.SetDefault("history.page_size", 20)
	v.SetDefault("history.default_days", 30)
	v.SetDefault("history.max_range_days", 366)
	v.SetDefault("history.timezone", "UTC")

	v.SetDefault("notifications.max", 5)
	v.SetDefault("notifications.ttl", "5s")
	v.SetDefault("notifications.subscribe_timeout", "5s")

	v.SetDefault("cors.allowed_origins", []string{})
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if _, err := time.LoadLocation(cfg.History.Timezone); err != nil {
		return fmt.Errorf("history.timezone: %w", err)
	}
	// el rango por defecto (hoy + default_days hacia atrás) tiene que caber en el máximo
	if cfg.History.DefaultDays+1 > cfg.History.MaxRangeDays {
		return fmt.Errorf("history.default_days (%d) exceeds history.max_range_days (%d)", cfg.History.DefaultDays, cfg.History.MaxRangeDays)
	}
	// prod sin verifier dejaría abierto el header de debug
	if cfg.Env == "prod" && !cfg.Auth.Enabled() {
		return errors.New("auth.base_url is required in prod")
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
