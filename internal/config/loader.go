package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr           string `json:"addr" yaml:"addr" toml:"addr"`
	ModelPath      string `json:"model_path" yaml:"model_path" toml:"model_path"`
	MaxBatchSize   int    `json:"max_batch_size" yaml:"max_batch_size" toml:"max_batch_size"`
	MaxBatchWaitMS int    `json:"max_batch_wait_ms" yaml:"max_batch_wait_ms" toml:"max_batch_wait_ms"`
	MaxQueueDepth  int    `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	DrainTimeoutMS int    `json:"drain_timeout_ms" yaml:"drain_timeout_ms" toml:"drain_timeout_ms"`
	MaxBodyBytes   int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	EngineCtx      int    `json:"engine_ctx" yaml:"engine_ctx" toml:"engine_ctx"`
	EngineThreads  int    `json:"engine_threads" yaml:"engine_threads" toml:"engine_threads"`
	LogLevel       string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat      string `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
