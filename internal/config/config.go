package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Transport TransportConfig `yaml:"transport"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path, when set, sends logs to a size-capped file.
	Path string `yaml:"path"`
}

// AuthConfig controls bearer token authentication. With auth disabled every
// request runs as DefaultPrincipal, which is created as a global admin on
// startup if it does not exist.
type AuthConfig struct {
	Enabled          bool   `yaml:"enabled"`
	DefaultPrincipal string `yaml:"default_principal"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// ErrHelp is returned by Load when --help was requested.
var ErrHelp = pflag.ErrHelp

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "planscope.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			Enabled:          true,
			DefaultPrincipal: "local-admin",
		},
		Transport: TransportConfig{
			Mode: TransportHTTP,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// PLANSCOPE_* environment variables and command line flags, in increasing
// order of precedence.
func Load(args []string) (Config, error) {
	cfg := defaults()

	flagSet := pflag.NewFlagSet("planscope", pflag.ContinueOnError)
	configPath := flagSet.String("config", os.Getenv("PLANSCOPE_CONFIG_PATH"), "path to a YAML config file")
	transport := flagSet.String("transport", "", "transport mode: http or stdio")
	dbPath := flagSet.String("db", "", "SQLite database path")
	port := flagSet.Int("port", 0, "HTTP listen port")
	logLevel := flagSet.String("log-level", "", "log level: debug, info, warn or error")
	noAuth := flagSet.Bool("no-auth", false, "disable bearer token authentication")
	if err := flagSet.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		if err := loadFromFile(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if *transport != "" {
		cfg.Transport.Mode = *transport
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *noAuth {
		cfg.Auth.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("PLANSCOPE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PLANSCOPE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid PLANSCOPE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("PLANSCOPE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("PLANSCOPE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("PLANSCOPE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if enabled := os.Getenv("PLANSCOPE_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid PLANSCOPE_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}
	if principal := os.Getenv("PLANSCOPE_DEFAULT_PRINCIPAL"); principal != "" {
		cfg.Auth.DefaultPrincipal = principal
	}
	if mode := os.Getenv("PLANSCOPE_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	return nil
}

// Validate reports configuration values the server cannot run with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if c.Transport.Mode == TransportHTTP && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.DB.Path == "" {
		return errors.New("database path is required")
	}
	if (!c.Auth.Enabled || c.Transport.Mode == TransportStdio) && c.Auth.DefaultPrincipal == "" {
		return errors.New("a default principal is required when auth is disabled or in stdio mode")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
