package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI      AIConfig      `yaml:"ai" validate:"required"`
	Storage StorageConfig `yaml:"storage" validate:"required"`
	Limits  Limits        `yaml:"limits" validate:"required"`
}

type AIConfig struct {
	// APIKey may be empty; the pipeline then runs against the demo gateway.
	APIKey   string `yaml:"api_key" validate:"required_if=DemoMode false,omitempty,min=20"`
	Model    string `yaml:"model" validate:"required"`
	BaseURL  string `yaml:"base_url" validate:"required,url"`
	DemoMode bool   `yaml:"demo_mode"`
}

type StorageConfig struct {
	DatabasePath string `yaml:"database_path" validate:"required"`
	// ArchiveDir receives raw completion text for degraded records.
	ArchiveDir string `yaml:"archive_dir" validate:"required"`
}

// Load reads the YAML config, fills missing values from the environment, and
// validates the result. A missing config file yields defaults (demo mode
// unless an API key is set in the environment).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := configPath()
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if cfg.AI.APIKey == "" {
		for _, env := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY"} {
			if key := os.Getenv(env); key != "" {
				cfg.AI.APIKey = key
				break
			}
		}
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.DemoMode = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		AI: AIConfig{
			Model:   "claude-3-5-sonnet-20241022",
			BaseURL: "https://api.anthropic.com/v1",
		},
		Storage: StorageConfig{
			DatabasePath: defaultDataPath("critique.db"),
			ArchiveDir:   defaultDataPath("archive"),
		},
		Limits: DefaultLimits(),
	}
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func configPath() string {
	if path := os.Getenv("CRITIQUE_CONFIG"); path != "" {
		return path
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "critique", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "critique", "config.yaml")
}

func defaultDataPath(name string) string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "critique", name)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "critique", name)
}
