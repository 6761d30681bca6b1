package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/garnizeh/citizenhub/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		Addr:          ":8080",
		Env:           config.EnvDevelopment,
		JWTSecret:     config.DevJWTSecret,
		APITimeout:    5 * time.Second,
		DatabasePath:  "citizenhub.db",
		TokenDuration: time.Hour,
		Completion:    config.CompletionConfig{Provider: config.ProviderNone},
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	for _, env := range []string{config.EnvStaging, config.EnvProduction} {
		cfg := baseConfig()
		cfg.Env = env
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected Validate to fail for placeholder secret in %s", env)
		}
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	cfg := baseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_EmptySecret(t *testing.T) {
	cfg := baseConfig()
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for empty secret")
	}
}

func TestValidate_GeminiRequiresAPIKey(t *testing.T) {
	cfg := baseConfig()
	cfg.Completion.Provider = config.ProviderGemini
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail without api key")
	}

	cfg.Completion.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}
	if cfg.Completion.Model == "" {
		t.Fatalf("expected default gemini model")
	}
}

func TestValidate_OllamaDefaultsPopulated(t *testing.T) {
	cfg := baseConfig()
	cfg.Completion.Provider = config.ProviderOllama
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}

	if cfg.Ollama.BaseURL == "" {
		t.Fatalf("expected Ollama.BaseURL to be populated, got empty")
	}
	if cfg.Ollama.Timeout <= 0 {
		t.Fatalf("expected Ollama.Timeout to be > 0")
	}
	if cfg.Completion.Timeout != 20*time.Second {
		t.Fatalf("unexpected completion timeout %v", cfg.Completion.Timeout)
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := baseConfig()
	cfg.Completion.Provider = "openai"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for unknown provider")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"CITIZEN_ADDR", "CITIZEN_ENV", "CITIZEN_JWT_SECRET", "CITIZEN_DATABASE_PATH", "CITIZEN_COMPLETION_PROVIDER", "CITIZEN_COMPLETION_API_KEY"} {
		t.Setenv(k, "")
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.JWTSecret != config.DevJWTSecret {
		t.Fatalf("unexpected JWTSecret: got %q", cfg.JWTSecret)
	}
	if cfg.DatabasePath != "citizenhub.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "citizenhub.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.TokenDuration != 1*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 1*time.Hour)
	}
	if cfg.Completion.Provider != config.ProviderNone {
		t.Fatalf("unexpected provider: %q", cfg.Completion.Provider)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CITIZEN_JWT_SECRET", "from-env")
	t.Setenv("CITIZEN_COMPLETION_API_KEY", "api-key")
	t.Setenv("CITIZEN_WORKERS", "7")
	t.Setenv("CITIZEN_COMPLETION_PROVIDER", "")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Completion.Provider != config.ProviderGemini {
		t.Fatalf("api key should select gemini, got %q", cfg.Completion.Provider)
	}
	if cfg.JWTSecret != "from-env" || cfg.Completion.APIKey != "api-key" || cfg.Workers != 7 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`addr: ":9090"
env: production
jwt_secret: "filekey"
timeout: "30s"
database_path: "test.db"
token_duration: "2h"
completion:
  provider: ollama
  model: mistral
  timeout: 5s
revocation:
  redis_addr: "localhost:6379"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "filekey")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.TokenDuration != 2*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 2*time.Hour)
	}
	if cfg.Completion.Provider != config.ProviderOllama || cfg.Completion.Model != "mistral" || cfg.Completion.Timeout != 5*time.Second {
		t.Fatalf("unexpected completion config: %+v", cfg.Completion)
	}
	if cfg.Revocation.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Revocation.RedisAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("addr: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(path); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}
