package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "0.0.0.0"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Enabled == nil {
		t := true
		cfg.Metrics.Enabled = &t
	}
	if cfg.Index.Engine == "" {
		cfg.Index.Engine = "graph"
	}
	if cfg.Index.Dimension == 0 {
		cfg.Index.Dimension = 784
	}
	if cfg.Index.DistanceType == "" {
		cfg.Index.DistanceType = "l2"
	}
	if cfg.Index.ObjectType == "" {
		cfg.Index.ObjectType = "float"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "/usr/local/var/vecagent/index"
	}
	if cfg.Index.BuildParallelism == 0 {
		cfg.Index.BuildParallelism = 1
	}
	if cfg.Index.Graph.Edges == 0 {
		cfg.Index.Graph.Edges = 10
	}
	if cfg.Stream.BufferSize == 0 {
		cfg.Stream.BufferSize = 4
	}
	if cfg.Agent.Name == "" {
		cfg.Agent.Name = "vecagent"
	}
	if cfg.Agent.IPs == nil {
		cfg.Agent.IPs = []string{}
	}
}
