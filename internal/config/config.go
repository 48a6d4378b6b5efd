// Package config loads the quotefill YAML configuration and fills in defaults
// for anything the file leaves out.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory when
// no explicit path is given.
const FileName = "quotefill.yaml"

// Oracle providers.
const (
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultAPIKeyEnv   = "GEMINI_API_KEY"
	defaultTemperature = 0.1
	defaultMaxAttempts = 3
)

// DefaultYAML documents every setting with its default value.
const DefaultYAML = `# quotefill configuration
oracle:
  # gemini or none; none renders manual proposals only.
  provider: gemini
  model: gemini-2.5-flash
  # Environment variable holding the API key.
  api_key_env: GEMINI_API_KEY
  temperature: 0.1

extraction:
  max_attempts: 3

log:
  # debug, info, warn or error
  level: info
  # json or console
  format: console

templates:
  strict: false
  # Directory overriding the built-in prompt templates.
  prompts_dir: ""
  # JSON preset files applied to the rendering context, in order.
  presets: []
`

// OracleConfig selects and tunes the extraction oracle.
type OracleConfig struct {
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Temperature       float32 `yaml:"temperature"`
	SystemInstruction string  `yaml:"system_instruction,omitempty"`
}

// ExtractionConfig bounds the extraction loop.
type ExtractionConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TemplatesConfig controls template rendering.
type TemplatesConfig struct {
	Strict     bool     `yaml:"strict"`
	PromptsDir string   `yaml:"prompts_dir"`
	Presets    []string `yaml:"presets"`
}

// Config models quotefill.yaml.
type Config struct {
	Oracle     OracleConfig     `yaml:"oracle"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Log        LogConfig        `yaml:"log"`
	Templates  TemplatesConfig  `yaml:"templates"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Oracle: OracleConfig{
			Provider:    ProviderGemini,
			Model:       defaultModel,
			APIKeyEnv:   defaultAPIKeyEnv,
			Temperature: defaultTemperature,
		},
		Extraction: ExtractionConfig{MaxAttempts: defaultMaxAttempts},
		Log:        LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads the configuration at path. An empty path falls back to FileName
// in the working directory, and to Default when that file does not exist.
func Load(path string) (Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = FileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Oracle.Provider = strings.ToLower(strings.TrimSpace(c.Oracle.Provider))
	if c.Oracle.Provider == "" {
		c.Oracle.Provider = ProviderGemini
	}
	if strings.TrimSpace(c.Oracle.Model) == "" {
		c.Oracle.Model = defaultModel
	}
	if strings.TrimSpace(c.Oracle.APIKeyEnv) == "" {
		c.Oracle.APIKeyEnv = defaultAPIKeyEnv
	}
	if c.Extraction.MaxAttempts == 0 {
		c.Extraction.MaxAttempts = defaultMaxAttempts
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate reports settings that can not be honoured.
func (c Config) Validate() error {
	switch c.Oracle.Provider {
	case ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("config: unknown oracle provider %q", c.Oracle.Provider)
	}
	if c.Extraction.MaxAttempts < 1 {
		return fmt.Errorf("config: extraction.max_attempts must be at least 1, got %d", c.Extraction.MaxAttempts)
	}
	if c.Oracle.Temperature < 0 || c.Oracle.Temperature > 2 {
		return fmt.Errorf("config: oracle.temperature must be within [0, 2], got %v", c.Oracle.Temperature)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// APIKey reads the oracle API key from the configured environment variable.
func (c Config) APIKey() string {
	return strings.TrimSpace(os.Getenv(c.Oracle.APIKeyEnv))
}
