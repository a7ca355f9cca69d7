package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Language", cfg.Language, LanguageAuto},
		{"FoldConstants", cfg.FoldConstants, true},
		{"CacheSize", cfg.CacheSize, 1000},
		{"Jobs", cfg.Jobs, 4},
		{"LogLevel", cfg.LogLevel, "warn"},
		{"JSONLogs", cfg.JSONLogs, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if !reflect.DeepEqual(cfg.NoReturnFunctions, []string{"exit"}) {
		t.Errorf("DefaultConfig().NoReturnFunctions = %v, want [exit]", cfg.NoReturnFunctions)
	}
	if cfg.CacheDir == "" {
		t.Error("DefaultConfig().CacheDir is empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() does not validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Language:          LanguageC,
			NoReturnFunctions: []string{"exit", "abort"},
			CacheSize:         10,
			Jobs:              1,
			LogLevel:          "info",
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:   "cpp with upper-case log level",
			mutate: func(c *Config) { c.Language = LanguageCPP; c.LogLevel = "DEBUG" },
		},
		{
			name:        "unknown language",
			mutate:      func(c *Config) { c.Language = "rust" },
			wantErr:     true,
			errContains: "invalid language",
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.LogLevel = "trace" },
			wantErr:     true,
			errContains: "invalid log_level",
		},
		{
			name:        "zero cache size",
			mutate:      func(c *Config) { c.CacheSize = 0 },
			wantErr:     true,
			errContains: "cache_size must be positive",
		},
		{
			name:        "negative jobs",
			mutate:      func(c *Config) { c.Jobs = -1 },
			wantErr:     true,
			errContains: "jobs must be positive",
		},
		{
			name:        "blank no-return name",
			mutate:      func(c *Config) { c.NoReturnFunctions = []string{"exit", " "} },
			wantErr:     true,
			errContains: "no_return_functions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error containing %q, got nil", tt.errContains)
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Expected error containing %q, got %q", tt.errContains, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		envVars     map[string]string
		checkCfg    func(*testing.T, *Config)
		wantErr     bool
		errContains string
	}{
		{
			name: "load valid config from file",
			configYAML: `
language: cpp
no_return_functions: [exit, abort, panic_now]
fold_constants: false
cache_dir: /tmp/cxxflow-cache
cache_size: 50
jobs: 8
log_level: debug
json_logs: true
exclude: ["third_party/**"]
`,
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.Language != LanguageCPP {
					t.Errorf("Language = %v, want %v", cfg.Language, LanguageCPP)
				}
				if !reflect.DeepEqual(cfg.NoReturnFunctions, []string{"exit", "abort", "panic_now"}) {
					t.Errorf("NoReturnFunctions = %v", cfg.NoReturnFunctions)
				}
				if cfg.FoldConstants {
					t.Error("FoldConstants = true, want false")
				}
				if cfg.CacheDir != "/tmp/cxxflow-cache" {
					t.Errorf("CacheDir = %v, want /tmp/cxxflow-cache", cfg.CacheDir)
				}
				if cfg.CacheSize != 50 {
					t.Errorf("CacheSize = %v, want 50", cfg.CacheSize)
				}
				if cfg.Jobs != 8 {
					t.Errorf("Jobs = %v, want 8", cfg.Jobs)
				}
				if cfg.LogLevel != "debug" || !cfg.JSONLogs {
					t.Errorf("LogLevel = %v, JSONLogs = %v", cfg.LogLevel, cfg.JSONLogs)
				}
				if !reflect.DeepEqual(cfg.Exclude, []string{"third_party/**"}) {
					t.Errorf("Exclude = %v", cfg.Exclude)
				}
				if cfg.CachePath() != filepath.Join("/tmp/cxxflow-cache", "graphs.cache") {
					t.Errorf("CachePath() = %v", cfg.CachePath())
				}
			},
		},
		{
			name:       "partial config keeps defaults",
			configYAML: "jobs: 2\n",
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.Jobs != 2 {
					t.Errorf("Jobs = %v, want 2", cfg.Jobs)
				}
				if cfg.CacheSize != 1000 {
					t.Errorf("CacheSize = %v, want default 1000", cfg.CacheSize)
				}
				if !cfg.FoldConstants {
					t.Error("FoldConstants should default to true")
				}
			},
		},
		{
			name:       "env overrides file",
			configYAML: "language: c\njobs: 2\n",
			envVars: map[string]string{
				"CXXFLOW_LANGUAGE": "CPP",
				"CXXFLOW_JOBS":     "16",
			},
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.Language != LanguageCPP {
					t.Errorf("Language = %v, want cpp", cfg.Language)
				}
				if cfg.Jobs != 16 {
					t.Errorf("Jobs = %v, want 16", cfg.Jobs)
				}
			},
		},
		{
			name:        "invalid yaml",
			configYAML:  "jobs: [1, 2\n",
			wantErr:     true,
			errContains: "failed to parse config file",
		},
		{
			name:        "invalid value",
			configYAML:  "language: go\n",
			wantErr:     true,
			errContains: "invalid language",
		},
		{
			name:        "invalid env integer",
			configYAML:  "jobs: 2\n",
			envVars:     map[string]string{"CXXFLOW_CACHE_SIZE": "lots"},
			wantErr:     true,
			errContains: "CXXFLOW_CACHE_SIZE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.configYAML), 0644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}

			cfg, err := LoadFromFile(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Expected error containing %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			tt.checkCfg(t, cfg)
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("LoadFromFile() error = %v, want read failure", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(*testing.T, *Config)
	}{
		{
			name:    "no-return list",
			envVars: map[string]string{"CXXFLOW_NO_RETURN_FUNCTIONS": "exit, abort ,,die"},
			check: func(t *testing.T, cfg *Config) {
				if !reflect.DeepEqual(cfg.NoReturnFunctions, []string{"exit", "abort", "die"}) {
					t.Errorf("NoReturnFunctions = %v", cfg.NoReturnFunctions)
				}
			},
		},
		{
			name:    "empty no-return list clears defaults",
			envVars: map[string]string{"CXXFLOW_NO_RETURN_FUNCTIONS": ""},
			check: func(t *testing.T, cfg *Config) {
				if len(cfg.NoReturnFunctions) != 0 {
					t.Errorf("NoReturnFunctions = %v, want empty", cfg.NoReturnFunctions)
				}
			},
		},
		{
			name: "booleans",
			envVars: map[string]string{
				"CXXFLOW_FOLD_CONSTANTS": "no",
				"CXXFLOW_JSON_LOGS":      "yes",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.FoldConstants {
					t.Error("FoldConstants = true, want false")
				}
				if !cfg.JSONLogs {
					t.Error("JSONLogs = false, want true")
				}
			},
		},
		{
			name: "cache and logging",
			envVars: map[string]string{
				"CXXFLOW_CACHE_DIR":  "/var/cache/cxxflow",
				"CXXFLOW_CACHE_SIZE": "12",
				"CXXFLOW_LOG_LEVEL":  "error",
				"CXXFLOW_EXCLUDE":    "build/**,*.gen.c",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.CacheDir != "/var/cache/cxxflow" || cfg.CacheSize != 12 {
					t.Errorf("CacheDir = %v, CacheSize = %v", cfg.CacheDir, cfg.CacheSize)
				}
				if cfg.LogLevel != "error" {
					t.Errorf("LogLevel = %v, want error", cfg.LogLevel)
				}
				if !reflect.DeepEqual(cfg.Exclude, []string{"build/**", "*.gen.c"}) {
					t.Errorf("Exclude = %v", cfg.Exclude)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			if err := applyEnvOverrides(cfg); err != nil {
				t.Fatalf("applyEnvOverrides() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{" 7 ", 7, false},
		{"-3", -3, false},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseInt(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInt(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseInt(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dirs", "config.yaml")

	cfg := DefaultConfig()
	cfg.Language = LanguageC
	cfg.NoReturnFunctions = []string{"exit", "fatal"}
	cfg.Jobs = 3
	cfg.Exclude = []string{"vendor/**"}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("Config file was not created at %s", configPath)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}
