package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"genai/internal/registry"
	"genai/pkg/types"
)

const (
	DefaultAddr           = ":8080"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultMaxInflight    = 1
	DefaultMaxWaitSeconds = 30
	DefaultMaxQueueDepth  = 32
	DefaultDrainSeconds   = 30
	DefaultMaxBodyBytes   = 1 << 20
	DefaultBackend        = "bigram"
	DefaultMaxTokens      = 512
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	// Admission: concurrent generations across the server, requests admitted
	// at once and how long a request may wait for a slot.
	MaxInflight    int `json:"max_inflight" yaml:"max_inflight" toml:"max_inflight"`
	MaxQueueDepth  int `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitSeconds int `json:"max_wait_seconds" yaml:"max_wait_seconds" toml:"max_wait_seconds"`
	// DrainTimeoutSeconds bounds how long shutdown waits for in-flight work.
	DrainTimeoutSeconds int `json:"drain_timeout_seconds" yaml:"drain_timeout_seconds" toml:"drain_timeout_seconds"`

	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`

	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`

	Model types.ModelSettings `json:"model" yaml:"model" toml:"model"`
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

// ApplyDefaults fills unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.MaxInflight == 0 {
		c.MaxInflight = DefaultMaxInflight
	}
	if c.MaxWaitSeconds == 0 {
		c.MaxWaitSeconds = DefaultMaxWaitSeconds
	}
	if c.MaxQueueDepth == 0 {
		c.MaxQueueDepth = DefaultMaxQueueDepth
	}
	if c.DrainTimeoutSeconds == 0 {
		c.DrainTimeoutSeconds = DefaultDrainSeconds
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Model.Backend == "" {
		c.Model.Backend = DefaultBackend
	}
	c.Model.Backend = strings.ToLower(c.Model.Backend)
	if c.Model.MaxTokens == 0 {
		c.Model.MaxTokens = DefaultMaxTokens
	}
	if c.Model.Tokenizer == "" {
		switch c.Model.Backend {
		case "llama":
			c.Model.Tokenizer = "llama"
		case "onnx":
			c.Model.Tokenizer = "hf"
		default:
			c.Model.Tokenizer = "vocab"
		}
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.MaxInflight < 0 {
		return fmt.Errorf("max_inflight must not be negative")
	}
	if c.MaxWaitSeconds < 0 {
		return fmt.Errorf("max_wait_seconds must not be negative")
	}
	if c.MaxQueueDepth < 0 {
		return fmt.Errorf("max_queue_depth must not be negative")
	}
	if c.MaxQueueDepth > 0 && c.MaxInflight > c.MaxQueueDepth {
		return fmt.Errorf("max_queue_depth %d is below max_inflight %d", c.MaxQueueDepth, c.MaxInflight)
	}
	if c.DrainTimeoutSeconds < 0 {
		return fmt.Errorf("drain_timeout_seconds must not be negative")
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log_format %q", c.LogFormat)
	}
	return ValidateModel(c.Model)
}

// ValidateModel checks model settings independently of the server config.
func ValidateModel(m types.ModelSettings) error {
	if len(registry.ExtensionsFor(m.Backend)) == 0 {
		return fmt.Errorf("unknown backend %q", m.Backend)
	}
	if m.ModelPath == "" {
		return fmt.Errorf("model.model_path is required")
	}
	if m.MaxTokens <= 0 {
		return fmt.Errorf("model.max_tokens must be positive")
	}
	switch m.Tokenizer {
	case "vocab", "hf":
		if m.TokenizerPath == "" {
			return fmt.Errorf("model.tokenizer_path is required for tokenizer %q", m.Tokenizer)
		}
	case "llama":
		if m.Backend != "llama" {
			return fmt.Errorf("tokenizer llama requires backend llama")
		}
	default:
		return fmt.Errorf("unknown tokenizer %q", m.Tokenizer)
	}
	switch m.Normalizer {
	case "", "nfkc":
	default:
		return fmt.Errorf("unknown normalizer %q", m.Normalizer)
	}
	for i, s := range m.StopSequences {
		if s == "" {
			return fmt.Errorf("model.stop_sequences[%d] is empty", i)
		}
	}
	if m.EncodeCacheSize < 0 {
		return fmt.Errorf("model.encode_cache_size must not be negative")
	}
	if m.Backend == "onnx" && m.VocabSize <= 0 {
		return fmt.Errorf("model.vocab_size is required for backend onnx")
	}
	return nil
}
