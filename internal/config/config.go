package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"pennywise/internal/logger"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "PENNYWISE_"

// Config holds application configuration
type Config struct {
	Env    string `koanf:"env"`
	Server Server `koanf:"server"`
	Client Client `koanf:"client"`
}

// Server configures the reference API.
type Server struct {
	Port     string   `koanf:"port"`
	Database Database `koanf:"db"`
	JWT      JWT      `koanf:"jwt"`
	Google   Google   `koanf:"google"`
}

// Database selects and configures the backend store.
type Database struct {
	Driver   string `koanf:"driver"` // postgres or sqlite
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
	Path     string `koanf:"path"` // sqlite file
}

// JWT configures access tokens.
type JWT struct {
	Secret    string        `koanf:"secret"`
	ExpiresIn time.Duration `koanf:"expiresin"`
}

// Google configures the OAuth code exchange.
type Google struct {
	ClientID     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	RedirectURL  string `koanf:"redirecturl"`
}

// Client configures the client core.
type Client struct {
	BaseURL         string        `koanf:"baseurl"`
	Platform        string        `koanf:"platform"`
	RequestTimeout  time.Duration `koanf:"requesttimeout"`
	StaleTime       time.Duration `koanf:"staletime"`
	RefreshInterval time.Duration `koanf:"refreshinterval"`
	DataDir         string        `koanf:"datadir"`
	StorageKey      string        `koanf:"storagekey"`
	// TestMode enables the mock purchase path used by demos and tests.
	TestMode bool `koanf:"testmode"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Env: "development",
		Server: Server{
			Port: "8080",
			Database: Database{
				Driver:   "postgres",
				Host:     "localhost",
				Port:     "5432",
				User:     "pennywise",
				Password: "pennywise",
				Name:     "pennywise",
				SSLMode:  "disable",
				Path:     "pennywise.db",
			},
			JWT: JWT{
				Secret:    "fallback-secret-key-for-dev-only",
				ExpiresIn: 24 * time.Hour,
			},
		},
		Client: Client{
			BaseURL:         "http://localhost:8080",
			Platform:        "mobile",
			RequestTimeout:  30 * time.Second,
			StaleTime:       5 * time.Minute,
			RefreshInterval: 30 * time.Second,
			DataDir:         ".pennywise",
		},
	}
}

// Load reads configuration from defaults, an optional YAML file at path and
// PENNYWISE_* environment variables, in that order of precedence. A .env file
// in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	log := logger.Get()

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Infof("Loaded configuration from file: %s", path)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	switch c.Server.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid db driver %q: must be postgres or sqlite", c.Server.Database.Driver)
	}
	switch c.Client.Platform {
	case "mobile", "web":
	default:
		return fmt.Errorf("invalid platform %q: must be mobile or web", c.Client.Platform)
	}
	durations := map[string]time.Duration{
		"server.jwt.expiresin":   c.Server.JWT.ExpiresIn,
		"client.requesttimeout":  c.Client.RequestTimeout,
		"client.staletime":       c.Client.StaleTime,
		"client.refreshinterval": c.Client.RefreshInterval,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	return nil
}
