// Package config loads run configuration files for the arbor drivers.
//
// Files are YAML or JSON (chosen by extension). They are decoded into a
// generic map, then into File with mapstructure so that numbers written as
// strings and durations such as "24h" are accepted, and finally validated.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPrompt is the image-rating prompt used when none is configured.
const DefaultPrompt = "Rate this image good if the product in the image is below 70% " +
	"of the total image, rate it bad if it's more"

// Evaluator kinds.
const (
	EvaluatorHeuristic = "heuristic"
	EvaluatorOpenAI    = "openai"
)

// Archive kinds.
const (
	ArchiveNone   = "none"
	ArchiveMemory = "memory"
	ArchiveFile   = "file"
	ArchiveRedis  = "redis"
	ArchiveBadger = "badger"
)

// File is the on-disk run configuration.
type File struct {
	InitialPrompt string          `yaml:"initial_prompt" json:"initial_prompt" mapstructure:"initial_prompt" validate:"required"`
	Explore       domain.Config   `yaml:"explore" json:"explore" mapstructure:"explore"`
	Evaluator     EvaluatorConfig `yaml:"evaluator" json:"evaluator" mapstructure:"evaluator"`
	Archive       ArchiveConfig   `yaml:"archive" json:"archive" mapstructure:"archive"`
	LogLevel      string          `yaml:"log_level" json:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// EvaluatorConfig selects and tunes the evaluator.
type EvaluatorConfig struct {
	Kind string `yaml:"kind" json:"kind" mapstructure:"kind" validate:"oneof=heuristic openai"`

	// Seed makes the heuristic evaluator reproducible. Zero means random.
	Seed uint64 `yaml:"seed" json:"seed" mapstructure:"seed"`

	Model       string  `yaml:"model" json:"model" mapstructure:"model"`
	BaseURL     string  `yaml:"base_url" json:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	APIKeyEnv   string  `yaml:"api_key_env" json:"api_key_env" mapstructure:"api_key_env"`
	Temperature float32 `yaml:"temperature" json:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
}

// APIKey reads the key from the configured environment variable.
func (c EvaluatorConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// ArchiveConfig selects where finished runs are kept.
type ArchiveConfig struct {
	Kind     string        `yaml:"kind" json:"kind" mapstructure:"kind" validate:"oneof=none memory file redis badger"`
	Path     string        `yaml:"path" json:"path" mapstructure:"path" validate:"required_if=Kind file,required_if=Kind badger"`
	RedisURL string        `yaml:"redis_url" json:"redis_url" mapstructure:"redis_url" validate:"required_if=Kind redis"`
	TTL      time.Duration `yaml:"ttl" json:"ttl" mapstructure:"ttl" validate:"gte=0"`

	// Redact lists regular expressions masked in archived prompts.
	Redact []string `yaml:"redact" json:"redact" mapstructure:"redact"`

	// EncryptionKeyEnv names the variable holding a base64 AES-256 key.
	// When set, archived prompts are encrypted.
	EncryptionKeyEnv string `yaml:"encryption_key_env" json:"encryption_key_env" mapstructure:"encryption_key_env"`
}

// EncryptionKey decodes the key from the configured environment variable.
// It returns nil when encryption is not configured.
func (c ArchiveConfig) EncryptionKey() ([]byte, error) {
	if c.EncryptionKeyEnv == "" {
		return nil, nil
	}
	raw := os.Getenv(c.EncryptionKeyEnv)
	if raw == "" {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidConfig, c.EncryptionKeyEnv)
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not base64: %v", domain.ErrInvalidConfig, c.EncryptionKeyEnv, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: %s must decode to 32 bytes, got %d", domain.ErrInvalidConfig, c.EncryptionKeyEnv, len(key))
	}
	return key, nil
}

// Default returns the configuration used when no file is given.
func Default() File {
	return File{
		InitialPrompt: DefaultPrompt,
		Explore:       domain.DefaultConfig(),
		Evaluator: EvaluatorConfig{
			Kind:        EvaluatorHeuristic,
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.7,
		},
		Archive: ArchiveConfig{
			Kind: ArchiveFile,
			Path: filepath.Join(".arbor", "runs"),
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data, strings.ToLower(filepath.Ext(path)))
}

// Parse decodes data in the format implied by ext (".json", otherwise YAML).
func Parse(data []byte, ext string) (File, error) {
	raw := map[string]any{}
	if ext == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return File{}, fmt.Errorf("failed to parse json config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return File{}, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	}

	f := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &f,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return File{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return File{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks the whole file, exploration settings included.
func (f File) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if strings.TrimSpace(f.InitialPrompt) == "" {
		return fmt.Errorf("%w: initial_prompt is required", domain.ErrInvalidConfig)
	}
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}
