package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DevJWTSecret is the placeholder signing key accepted only in development.
const DevJWTSecret = "dev-only-signing-key"

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

type Config struct {
	Addr          string           `yaml:"addr"`
	Env           string           `yaml:"env"`
	JWTSecret     string           `yaml:"jwt_secret"`
	APITimeout    time.Duration    `yaml:"timeout"`
	DatabasePath  string           `yaml:"database_path"`
	SeedPath      string           `yaml:"seed_path"`
	CatalogPath   string           `yaml:"catalog_path"`
	TokenDuration time.Duration    `yaml:"token_duration"`
	Workers       int              `yaml:"workers"`
	Completion    CompletionConfig `yaml:"completion"`
	Ollama        OllamaConfig     `yaml:"ollama"`
	Revocation    RevocationConfig `yaml:"revocation"`
}

// CompletionConfig selects the remote text-completion backend used by the
// eligibility checker and the scheme advisor.
type CompletionConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type OllamaConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RevocationConfig points at a Redis instance shared by all API replicas. An
// empty RedisAddr keeps revoked token ids in process memory.
type RevocationConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("CITIZEN_ADDR", ":8080"),
		Env:           getEnv("CITIZEN_ENV", EnvDevelopment),
		JWTSecret:     getEnv("CITIZEN_JWT_SECRET", DevJWTSecret),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("CITIZEN_DATABASE_PATH", "citizenhub.db"),
		SeedPath:      os.Getenv("CITIZEN_SEED_PATH"),
		CatalogPath:   os.Getenv("CITIZEN_CATALOG_PATH"),
		TokenDuration: 1 * time.Hour,
		Workers:       getEnvInt("CITIZEN_WORKERS", 2),
		Completion: CompletionConfig{
			Provider: getEnv("CITIZEN_COMPLETION_PROVIDER", defaultProvider()),
			Model:    os.Getenv("CITIZEN_COMPLETION_MODEL"),
			APIKey:   os.Getenv("CITIZEN_COMPLETION_API_KEY"),
			BaseURL:  os.Getenv("CITIZEN_COMPLETION_BASE_URL"),
		},
		Revocation: RevocationConfig{
			RedisAddr:     os.Getenv("CITIZEN_REDIS_ADDR"),
			RedisPassword: os.Getenv("CITIZEN_REDIS_PASSWORD"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate fills defaults for unset values and rejects configurations that are
// unsafe for the selected environment.
func (c *Config) Validate() error {
	if c.Env == "" {
		c.Env = EnvDevelopment
	}
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}

	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == DevJWTSecret && c.Env != EnvDevelopment {
		return fmt.Errorf("jwt_secret must be set explicitly in %s", c.Env)
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = time.Hour
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}

	if c.Completion.Timeout <= 0 {
		c.Completion.Timeout = 20 * time.Second
	}
	switch c.Completion.Provider {
	case "", ProviderNone:
		c.Completion.Provider = ProviderNone
	case ProviderGemini:
		if c.Completion.APIKey == "" {
			return errors.New("completion.api_key is required for the gemini provider")
		}
		if c.Completion.Model == "" {
			c.Completion.Model = "gemini-2.0-flash"
		}
	case ProviderOllama:
		if c.Completion.Model == "" {
			c.Completion.Model = "llama3"
		}
		if c.Ollama.BaseURL == "" {
			c.Ollama.BaseURL = "http://localhost:11434"
		}
		if c.Ollama.Timeout <= 0 {
			c.Ollama.Timeout = c.Completion.Timeout
		}
	default:
		return fmt.Errorf("unknown completion provider %q", c.Completion.Provider)
	}

	return nil
}

// IsDevelopment reports whether the process runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// defaultProvider selects gemini only when an API key is present so a bare
// development checkout runs on the local rules.
func defaultProvider() string {
	if os.Getenv("CITIZEN_COMPLETION_API_KEY") != "" {
		return ProviderGemini
	}
	return ProviderNone
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
