package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalYAML = `
database:
  url: postgres://localhost/app
redis:
  url: localhost:6379
ai:
  api_key: sk-test
`

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %+v", cfg.Log)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.AI.DefaultModel != "gpt-4o-mini" {
		t.Errorf("default model = %q", cfg.AI.DefaultModel)
	}
	if cfg.AI.MaxPromptTokens != 6000 {
		t.Errorf("max prompt tokens = %d", cfg.AI.MaxPromptTokens)
	}
	if cfg.Pipeline.TTLDays != 30 || cfg.Pipeline.TTL() != 30*24*time.Hour {
		t.Errorf("ttl = %d days", cfg.Pipeline.TTLDays)
	}
	if cfg.Pipeline.WorkerInterval != 5*time.Minute {
		t.Errorf("worker interval = %v", cfg.Pipeline.WorkerInterval)
	}
	if cfg.Pipeline.CleanupInterval != 24*time.Hour {
		t.Errorf("cleanup interval = %v", cfg.Pipeline.CleanupInterval)
	}
	if cfg.Pipeline.CleanupBatch != 100 {
		t.Errorf("cleanup batch = %d", cfg.Pipeline.CleanupBatch)
	}
	if cfg.Pipeline.MaxPerQuery != 3 {
		t.Errorf("max per query = %d", cfg.Pipeline.MaxPerQuery)
	}
	if !cfg.Pipeline.Enabled() {
		t.Error("pipeline should be enabled by default")
	}
}

func TestLoadConfig_PerStageModelFallback(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML+`
  synthesis_model: gpt-4o
`), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.AI.QueryGenModelName(); got != "gpt-4o-mini" {
		t.Errorf("querygen model = %q, want default", got)
	}
	if got := cfg.AI.SynthesisModelName(); got != "gpt-4o" {
		t.Errorf("synthesis model = %q", got)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-env")
	t.Setenv("DATABASE_URL", "postgres://env-host/app")
	t.Setenv("WEB_MEMORY_DISABLED", "true")
	t.Setenv("WEB_MEMORY_TTL_DAYS", "7")

	cfg, err := LoadConfig(writeConfig(t, minimalYAML), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AI.APIKey != "sk-env" {
		t.Errorf("api key = %q", cfg.AI.APIKey)
	}
	if cfg.Database.URL != "postgres://env-host/app" {
		t.Errorf("database url = %q", cfg.Database.URL)
	}
	if cfg.Pipeline.Enabled() {
		t.Error("WEB_MEMORY_DISABLED=true should disable the pipeline")
	}
	if cfg.Pipeline.TTLDays != 7 {
		t.Errorf("ttl days = %d", cfg.Pipeline.TTLDays)
	}
}

func TestLoadConfig_MissingDatabaseURL(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
redis:
  url: localhost:6379
ai:
  api_key: sk-test
`), false)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadConfig_DevModeSkipsAIKey(t *testing.T) {
	yaml := `
database:
  url: postgres://localhost/app
redis:
  url: localhost:6379
`
	if _, err := LoadConfig(writeConfig(t, yaml), false); err == nil {
		t.Fatal("prod mode without AI key should fail validation")
	}
	cfg, err := LoadConfig(writeConfig(t, yaml), true)
	if err != nil {
		t.Fatalf("dev mode: %v", err)
	}
	if !cfg.Runtime.Dev {
		t.Error("Runtime.Dev not set")
	}
}
