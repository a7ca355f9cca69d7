package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Language restricts which grammar is used for source files.
type Language string

const (
	LanguageAuto Language = "auto"
	LanguageC    Language = "c"
	LanguageCPP  Language = "cpp"
)

// Config holds all configuration for cxxflow
type Config struct {
	// Language forces a grammar; auto picks it from the file extension
	Language Language `yaml:"language" env:"CXXFLOW_LANGUAGE"`

	// NoReturnFunctions are treated as never returning when a call has no
	// declaration in the same file
	NoReturnFunctions []string `yaml:"no_return_functions" env:"CXXFLOW_NO_RETURN_FUNCTIONS"`

	// FoldConstants prunes branches whose condition is a constant
	FoldConstants bool `yaml:"fold_constants" env:"CXXFLOW_FOLD_CONSTANTS"`

	// Graph cache
	CacheDir  string `yaml:"cache_dir" env:"CXXFLOW_CACHE_DIR"`
	CacheSize int    `yaml:"cache_size" env:"CXXFLOW_CACHE_SIZE"`

	// Jobs is the number of files scanned in parallel
	Jobs int `yaml:"jobs" env:"CXXFLOW_JOBS"`

	// Logging
	LogLevel string `yaml:"log_level" env:"CXXFLOW_LOG_LEVEL"`
	JSONLogs bool   `yaml:"json_logs" env:"CXXFLOW_JSON_LOGS"`

	// Exclude holds extra ignore patterns for scan
	Exclude []string `yaml:"exclude" env:"CXXFLOW_EXCLUDE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Language:          LanguageAuto,
		NoReturnFunctions: []string{"exit"},
		FoldConstants:     true,
		CacheDir:          defaultCacheDir(),
		CacheSize:         1000,
		Jobs:              4,
		LogLevel:          "warn",
		JSONLogs:          false,
		Exclude:           nil,
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "cxxflow")
	}
	return filepath.Join(".cxxflow", "cache")
}

// GlobalConfigPath returns the global config file path (~/.cxxflow/config.yaml)
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cxxflow/config.yaml"
	}
	return filepath.Join(home, ".cxxflow", "config.yaml")
}

// ProjectConfigPath returns the project-level config file path (./.cxxflow/config.yaml)
func ProjectConfigPath() string {
	return ".cxxflow/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.cxxflow/config.yaml)
// 3. Global config (~/.cxxflow/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigPath(), ProjectConfigPath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CXXFLOW_LANGUAGE"); v != "" {
		cfg.Language = Language(strings.ToLower(v))
	}
	if v, ok := os.LookupEnv("CXXFLOW_NO_RETURN_FUNCTIONS"); ok {
		cfg.NoReturnFunctions = splitList(v)
	}
	if v := os.Getenv("CXXFLOW_FOLD_CONSTANTS"); v != "" {
		cfg.FoldConstants = parseBool(v)
	}
	if v := os.Getenv("CXXFLOW_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("CXXFLOW_CACHE_SIZE"); v != "" {
		i, err := parseInt(v)
		if err != nil {
			return fmt.Errorf("CXXFLOW_CACHE_SIZE: %w", err)
		}
		cfg.CacheSize = i
	}
	if v := os.Getenv("CXXFLOW_JOBS"); v != "" {
		i, err := parseInt(v)
		if err != nil {
			return fmt.Errorf("CXXFLOW_JOBS: %w", err)
		}
		cfg.Jobs = i
	}
	if v := os.Getenv("CXXFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CXXFLOW_JSON_LOGS"); v != "" {
		cfg.JSONLogs = parseBool(v)
	}
	if v, ok := os.LookupEnv("CXXFLOW_EXCLUDE"); ok {
		cfg.Exclude = splitList(v)
	}
	return nil
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	switch c.Language {
	case LanguageAuto, LanguageC, LanguageCPP:
	default:
		return fmt.Errorf("invalid language: %s (must be 'auto', 'c' or 'cpp')", c.Language)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %s (must be 'debug', 'info', 'warn' or 'error')", c.LogLevel)
	}

	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive")
	}
	if c.Jobs <= 0 {
		return fmt.Errorf("jobs must be positive")
	}

	for _, name := range c.NoReturnFunctions {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("no_return_functions must not contain empty names")
		}
	}

	return nil
}

// CachePath returns the file the graph cache is persisted to.
func (c *Config) CachePath() string {
	return filepath.Join(c.CacheDir, "graphs.cache")
}

// splitList parses a comma-separated environment value
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// parseInt attempts to parse a string as int
func parseInt(s string) (int, error) {
	var i int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &i); err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return i, nil
}
