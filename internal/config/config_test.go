package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/vecagent/internal/engine"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
index:
  engine: flat
  dimension: 3
  distance_type: cosine
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Index.Engine != "flat" || cfg.Index.Dimension != 3 || cfg.Index.DistanceType != "cosine" {
		t.Errorf("unexpected index config: %+v", cfg.Index)
	}
	if cfg.Index.ObjectType != "float" {
		t.Errorf("object_type should default to float, got %s", cfg.Index.ObjectType)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
index:
  path: "./data/index"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "data", "index")
	if cfg.Index.Path != want {
		t.Errorf("index path = %s, want %s", cfg.Index.Path, want)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Metrics.Port != 9090 || !cfg.Metrics.EnabledOrDefault() {
		t.Errorf("default metrics: got %+v", cfg.Metrics)
	}
	if cfg.Index.Engine != "graph" || cfg.Index.Dimension != 784 || cfg.Index.DistanceType != "l2" {
		t.Errorf("default index: got %+v", cfg.Index)
	}
	if cfg.Index.BuildParallelism != 1 {
		t.Errorf("default build_parallelism: got %d", cfg.Index.BuildParallelism)
	}
	if cfg.Stream.BufferSize != 4 {
		t.Errorf("default buffer_size: got %d", cfg.Stream.BufferSize)
	}
	if cfg.Agent.Name != "vecagent" || cfg.Agent.IPs == nil {
		t.Errorf("default agent: got %+v", cfg.Agent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestMetricsConfig_EnabledOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		m := &MetricsConfig{}
		if got := m.EnabledOrDefault(); !got {
			t.Errorf("EnabledOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		m := &MetricsConfig{Enabled: &f}
		if got := m.EnabledOrDefault(); got {
			t.Errorf("EnabledOrDefault() = %v, want false", got)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown engine", func(c *Config) { c.Index.Engine = "ngt" }},
		{"unknown distance", func(c *Config) { c.Index.DistanceType = "hamming" }},
		{"unknown object type", func(c *Config) { c.Index.ObjectType = "float16" }},
		{"negative dimension", func(c *Config) { c.Index.Dimension = -1 }},
		{"negative edges", func(c *Config) { c.Index.Graph.Edges = -1 }},
		{"negative buffer", func(c *Config) { c.Stream.BufferSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIndexConfig_Coordinator(t *testing.T) {
	cfg := Default()
	cfg.Index.Engine = "flat"
	cfg.Index.ObjectType = "uint8"
	got := cfg.Index.Coordinator()
	if got.Engine != engine.KindFlat || got.Properties.ObjectType != engine.ObjectUint8 {
		t.Errorf("unexpected coordinator config: %+v", got)
	}
	if got.Properties.Dimension != 784 || got.Properties.Edges != 10 || got.BuildParallelism != 1 {
		t.Errorf("unexpected coordinator config: %+v", got)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := Default()
	cfg.Server.Port = 9191
	cfg.Index.Dimension = 16
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9191 || loaded.Index.Dimension != 16 {
		t.Errorf("loaded config: %+v", loaded)
	}
}
