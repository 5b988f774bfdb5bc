// Package config provides configuration loading and structs for the vecagent server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/vecagent/internal/agent"
	"github.com/hyperjump/vecagent/internal/engine"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	Index   IndexConfig   `yaml:"index"`
	Stream  StreamConfig  `yaml:"stream"`
	Agent   AgentConfig   `yaml:"agent"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MetricsConfig holds the Prometheus listener settings.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// EnabledOrDefault returns whether metrics are served; defaults to true when unset.
func (m *MetricsConfig) EnabledOrDefault() bool {
	if m.Enabled != nil {
		return *m.Enabled
	}
	return true
}

// Addr returns host:port.
func (m MetricsConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// IndexConfig describes the engine created at startup.
type IndexConfig struct {
	Engine           string      `yaml:"engine"`
	Dimension        int         `yaml:"dimension"`
	DistanceType     string      `yaml:"distance_type"`
	ObjectType       string      `yaml:"object_type"`
	Path             string      `yaml:"path"`
	BuildParallelism int         `yaml:"build_parallelism"`
	Graph            GraphConfig `yaml:"graph"`
}

// GraphConfig tunes the graph engine.
type GraphConfig struct {
	Edges       int `yaml:"edges"`
	SearchEdges int `yaml:"search_edges"`
}

// StreamConfig holds streaming RPC settings.
type StreamConfig struct {
	// BufferSize bounds the replies queued between a stream reader and its writer.
	BufferSize int `yaml:"buffer_size"`
}

// AgentConfig identifies this agent in insert locations.
type AgentConfig struct {
	Name string   `yaml:"name"`
	IPs  []string `yaml:"ips"`
}

// Coordinator converts the index section into a coordinator config.
func (i IndexConfig) Coordinator() agent.Config {
	return agent.Config{
		Engine: engine.Kind(i.Engine),
		Properties: engine.Properties{
			Dimension:    i.Dimension,
			DistanceType: engine.DistanceType(i.DistanceType),
			ObjectType:   engine.ObjectType(i.ObjectType),
			Path:         i.Path,
			Edges:        i.Graph.Edges,
			SearchEdges:  i.Graph.SearchEdges,
		},
		BuildParallelism: i.BuildParallelism,
	}
}

// Validate rejects unknown engine, distance and object names and non-positive sizes.
func (c *Config) Validate() error {
	switch engine.Kind(c.Index.Engine) {
	case engine.KindFlat, engine.KindGraph:
	default:
		return fmt.Errorf("unknown index engine %q", c.Index.Engine)
	}
	switch engine.DistanceType(c.Index.DistanceType) {
	case engine.DistanceL2, engine.DistanceL1, engine.DistanceAngle, engine.DistanceCosine:
	default:
		return fmt.Errorf("unknown distance type %q", c.Index.DistanceType)
	}
	switch engine.ObjectType(c.Index.ObjectType) {
	case engine.ObjectFloat, engine.ObjectUint8:
	default:
		return fmt.Errorf("unknown object type %q", c.Index.ObjectType)
	}
	if c.Index.Dimension <= 0 {
		return fmt.Errorf("index dimension must be positive, got %d", c.Index.Dimension)
	}
	if c.Index.Graph.Edges < 0 || c.Index.Graph.SearchEdges < 0 {
		return fmt.Errorf("graph edges must not be negative")
	}
	if c.Stream.BufferSize <= 0 {
		return fmt.Errorf("stream buffer_size must be positive, got %d", c.Stream.BufferSize)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server port must be positive, got %d", c.Server.Port)
	}
	return nil
}

// Default returns a config with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	cfg.Index.Path = expandPath(cfg.Index.Path, filepath.Dir(path))

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
