// Package config is the engine's ambient configuration layer: a YAML file
// for the durable settings, environment variables for per-process
// overrides, held behind an atomic.Value the way pkg/config/executor_mode.go
// held the Cypher executor mode in the teacher project.
//
// Environment variables (each overrides the loaded file, never the other
// way round):
//
//	CYQL_DATA_DIR                  data_dir
//	CYQL_DEFAULT_LIMIT             default_limit
//	CYQL_MAX_VARLEN_HOPS           max_varlen_hops
//	CYQL_ENABLE_REVERSE_FUNCTION   enable_reverse_function
package config

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

const (
	EnvDataDir        = "CYQL_DATA_DIR"
	EnvDefaultLimit   = "CYQL_DEFAULT_LIMIT"
	EnvMaxVarlenHops  = "CYQL_MAX_VARLEN_HOPS"
	EnvEnableReverse  = "CYQL_ENABLE_REVERSE_FUNCTION"
)

// Config is the engine's tunable surface: where it persists its graph, the
// implicit row cap applied to a query with no explicit LIMIT, the ceiling
// on an unbounded variable-length relationship walk, and whether the
// REVERSE(text) scalar function is registered at all.
type Config struct {
	DataDir               string `yaml:"data_dir"`
	DefaultLimit          int64  `yaml:"default_limit"`
	MaxVarlenHops         int    `yaml:"max_varlen_hops"`
	EnableReverseFunction bool   `yaml:"enable_reverse_function"`
}

// Default is the configuration a fresh process starts with before any file
// or environment override is applied: no implicit row cap, the same 64-hop
// ceiling relstore.Executor falls back to on its own, REVERSE enabled.
func Default() Config {
	return Config{
		DataDir:               "",
		DefaultLimit:          0,
		MaxVarlenHops:         64,
		EnableReverseFunction: true,
	}
}

// Load reads path as YAML over Default() (a field path omits keeps its
// default), then applies environment overrides on top. An empty path
// returns Default() with only environment overrides applied, so a caller
// that has no config file can still tune the engine via env vars alone.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvDefaultLimit); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.DefaultLimit = n
		}
	}
	if v := os.Getenv(EnvMaxVarlenHops); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.MaxVarlenHops = n
		}
	}
	if v := os.Getenv(EnvEnableReverse); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "off":
			cfg.EnableReverseFunction = false
		case "1", "true", "yes", "on":
			cfg.EnableReverseFunction = true
		}
	}
}

var current atomic.Value

func init() {
	current.Store(Default())
}

// Get returns the process-wide current configuration.
func Get() Config {
	return current.Load().(Config)
}

// Set installs cfg as the process-wide current configuration.
func Set(cfg Config) {
	current.Store(cfg)
}

// With temporarily installs cfg, returning a function that restores the
// previous configuration, the shape WithExecutorMode used for the same
// purpose in the teacher project's test suite.
func With(cfg Config) func() {
	prev := Get()
	Set(cfg)
	return func() {
		Set(prev)
	}
}
