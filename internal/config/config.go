package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the tool configuration: binary path overrides and provider
// settings. Lives in config.yaml under the app directory. Runtime settings
// the original interface exposes to the user (model, threads, compute type)
// live in app_config.json instead, see AppConfig.
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	Paths    PathsConfig    `yaml:"paths"`
	Embedder EmbedderConfig `yaml:"embedder"`
	LLM      LLMConfig      `yaml:"llm"`
}

// DefaultsConfig holds pipeline tunables
type DefaultsConfig struct {
	SegmentJoin string  `yaml:"segment_join"` // delimiter between transcript segments
	TopK        int     `yaml:"top_k"`        // retrieval count for ask
	Temperature float64 `yaml:"temperature"`  // generation temperature
	Parallelism int     `yaml:"parallelism"`  // transcription workers per run, 0 = NumCPU capped at 4
}

// PathsConfig holds custom binary path overrides
type PathsConfig struct {
	YtDlp   string `yaml:"yt_dlp"`
	FFmpeg  string `yaml:"ffmpeg"`
	Whisper string `yaml:"whisper"`
}

// EmbedderConfig configures the OpenAI-compatible embeddings provider
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// LLMConfig configures the answer generator
type LLMConfig struct {
	Provider    string `yaml:"provider"` // openai or anthropic
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	MaxTokens   int    `yaml:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			SegmentJoin: " ",
			TopK:        4,
			Temperature: 0,
			Parallelism: 0,
		},
		Embedder: EmbedderConfig{
			BaseURL:     "https://api.openai.com/v1",
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "text-embedding-3-small",
			TimeoutSecs: 30,
			BatchSize:   32,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			BaseURL:     "https://api.openai.com/v1",
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			TimeoutSecs: 60,
		},
	}
}

// AppDir returns the application directory (~/.handyspeech)
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".handyspeech"
	}
	return filepath.Join(home, ".handyspeech")
}

// ModelsDir returns the shared model weights cache directory
func ModelsDir() string {
	return filepath.Join(AppDir(), "models")
}

// ProjectsDir returns the root directory holding all projects
func ProjectsDir() string {
	return filepath.Join(AppDir(), "projects")
}

// BinDir returns the bin directory for managed binaries
func BinDir() string {
	return filepath.Join(AppDir(), "bin")
}

// LogsDir returns the directory for pipeline log files
func LogsDir() string {
	return filepath.Join(AppDir(), "logs")
}

// ConfigPath returns the tool config file path
func ConfigPath() string {
	return filepath.Join(AppDir(), "config.yaml")
}

// AppConfigPath returns the runtime config file path
func AppConfigPath() string {
	return filepath.Join(AppDir(), "app_config.json")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{AppDir(), ModelsDir(), ProjectsDir(), BinDir(), LogsDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Load reads the tool config from file, returns defaults if not exists
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadDefault loads the tool config from the default path
func LoadDefault() (*Config, error) {
	return Load(ConfigPath())
}

// Save writes the tool config to file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Workers resolves the transcription worker count for a run.
func (c *Config) Workers() int {
	if c.Defaults.Parallelism > 0 {
		return c.Defaults.Parallelism
	}
	n := runtime.NumCPU()
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return n
}

// UserConfig is the user-tunable part of the runtime configuration
type UserConfig struct {
	ComputeType string `json:"compute_type"`
	Model       string `json:"model"`
	CPUThreads  int    `json:"cpu_threads"`
}

// AppConfig is the runtime configuration stored as app_config.json. It is
// created with defaults on first run and read-only afterwards except
// through UpdateUserConfig.
type AppConfig struct {
	UserConfig   UserConfig      `json:"user_config"`
	ComputeTypes []string        `json:"compute_types"`
	Models       map[string]bool `json:"models"`
}

// DefaultAppConfig synthesizes the first-run runtime configuration.
func DefaultAppConfig() *AppConfig {
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 4
	}

	return &AppConfig{
		UserConfig: UserConfig{
			ComputeType: "default",
			Model:       "medium",
			CPUThreads:  threads,
		},
		ComputeTypes: []string{
			"default",
			"int8",
			"int8_float32",
			"int8_float16",
			"int8_bfloat16",
			"int16",
			"float16",
			"bfloat16",
			"float32",
		},
		Models: map[string]bool{
			"tiny":      true,
			"tiny.en":   false,
			"base":      true,
			"base.en":   false,
			"small":     true,
			"small.en":  false,
			"medium":    true,
			"medium.en": false,
			"large-v1":  true,
			"large-v2":  true,
			"large-v3":  true,
			"large":     true,
		},
	}
}

// LoadAppConfig reads app_config.json, creating it with defaults on first run.
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultAppConfig()
			if err := cfg.Save(path); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}

	return &cfg, nil
}

// LoadAppConfigDefault loads app_config.json from the default path
func LoadAppConfigDefault() (*AppConfig, error) {
	return LoadAppConfig(AppConfigPath())
}

// Save writes the runtime config to file
func (c *AppConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal app config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write app config: %w", err)
	}
	return nil
}

// UpdateUserConfig mutates user_config and persists the change.
// Unknown models and compute types are rejected.
func (c *AppConfig) UpdateUserConfig(path string, update UserConfig) error {
	if update.Model != "" {
		if _, ok := c.Models[update.Model]; !ok {
			return fmt.Errorf("unknown model %q", update.Model)
		}
		c.UserConfig.Model = update.Model
	}
	if update.ComputeType != "" {
		valid := false
		for _, ct := range c.ComputeTypes {
			if ct == update.ComputeType {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unknown compute type %q", update.ComputeType)
		}
		c.UserConfig.ComputeType = update.ComputeType
	}
	if update.CPUThreads > 0 {
		c.UserConfig.CPUThreads = update.CPUThreads
	}

	return c.Save(path)
}
