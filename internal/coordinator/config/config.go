package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Config holds coordinator configuration
type Config struct {
	Hosts     HostsConfig     `json:"hosts" yaml:"hosts"`
	Transport TransportConfig `json:"transport" yaml:"transport"`
	Worker    WorkerConfig    `json:"worker" yaml:"worker"`
	Logger    logger.Config   `json:"logger" yaml:"logger"`
}

type HostsConfig struct {
	// Path to the hosts description file (ip:port:core per line).
	Path string `json:"path" yaml:"path"`
}

type TransportConfig struct {
	// ReceiveTimeout bounds each blocking receive. Zero (the default)
	// preserves the protocol contract of blocking indefinitely; setting it
	// is an opt-in extension for callers that want a liveness bound.
	ReceiveTimeout time.Duration `json:"receive_timeout" yaml:"receive_timeout"`
}

type WorkerConfig struct {
	// Command is the worker command line to launch on every remote node,
	// used when no command is passed on the mpirun command line.
	Command string `json:"command" yaml:"command"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Hosts: HostsConfig{
			Path: "hosts.txt",
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "coordinator", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		log.Printf("Config file not found or failed to parse, using defaults if file not specified. Path: %s, Error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// MustLoad loads configuration or exits on error
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
