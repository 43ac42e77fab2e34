package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/socratia/socratia-backend/internal/platform/logger"
)

func configLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(configLogger(t))
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Engine.LearningInterval != 300*time.Second {
		t.Fatalf("LearningInterval = %s, want 5m", cfg.Engine.LearningInterval)
	}
	if cfg.Engine.MaxRulesPerUser != 50 {
		t.Fatalf("MaxRulesPerUser = %d, want 50", cfg.Engine.MaxRulesPerUser)
	}
}

func TestLoadConfigFromFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	raw := []byte("adaptation_threshold: 0.7\nlearning_interval_seconds: 120\nmax_rules_per_user: 25\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ENGINE_CONFIG_PATH", path)
	t.Setenv("ENGINE_MAX_RULES_PER_USER", "30")

	cfg := LoadConfig(configLogger(t))
	if cfg.Engine.AdaptationThreshold != 0.7 {
		t.Fatalf("AdaptationThreshold = %f, want 0.7 (file)", cfg.Engine.AdaptationThreshold)
	}
	if cfg.Engine.LearningInterval != 120*time.Second {
		t.Fatalf("LearningInterval = %s, want 2m (file)", cfg.Engine.LearningInterval)
	}
	if cfg.Engine.MaxRulesPerUser != 30 {
		t.Fatalf("MaxRulesPerUser = %d, want 30 (env wins over file)", cfg.Engine.MaxRulesPerUser)
	}
}

func TestLoadConfigToleratesBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(":::"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ENGINE_CONFIG_PATH", path)

	cfg := LoadConfig(configLogger(t))
	if cfg.Engine.AdaptationThreshold != 0.6 {
		t.Fatalf("broken file should leave defaults, got %f", cfg.Engine.AdaptationThreshold)
	}
}
