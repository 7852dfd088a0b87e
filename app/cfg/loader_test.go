package cfg

import (
	"os"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestParseDefaults(t *testing.T) {
	for _, key := range []string{"SOURCES_DIR", "MIN_TARGETS", "PRIVILEGED_ORIGIN", "QUOTA_FLOOR", "AGGREGATE_WORKERS", "AGGREGATE_TIMEOUT", "PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.SourcesDir != "./sources" {
		t.Errorf("Expected sources dir './sources', got '%s'", cfg.SourcesDir)
	}
	if cfg.MinTargets != 15 {
		t.Errorf("Expected min targets 15, got %d", cfg.MinTargets)
	}
	if cfg.PrivilegedOrigin != "youtube" {
		t.Errorf("Expected privileged origin 'youtube', got '%s'", cfg.PrivilegedOrigin)
	}
	if cfg.QuotaFloor != 8 {
		t.Errorf("Expected quota floor 8, got %d", cfg.QuotaFloor)
	}
	if cfg.AggregateTimeout != 120*time.Second {
		t.Errorf("Expected aggregate timeout 120s, got %v", cfg.AggregateTimeout)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
}

func TestParseFlagsAndEnv(t *testing.T) {
	t.Setenv("QUOTA_FLOOR", "3")
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	cfg, err := Parse([]string{"--min-targets", "20", "--port", "9090", "--debug"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.MinTargets != 20 {
		t.Errorf("Expected min targets 20, got %d", cfg.MinTargets)
	}
	if cfg.QuotaFloor != 3 {
		t.Errorf("Expected quota floor 3 from env, got %d", cfg.QuotaFloor)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	if _, err := Parse([]string{"--aggregate-workers", "0"}); err == nil {
		t.Error("Expected error for zero workers")
	}
	if _, err := Parse([]string{"--quota-floor=-1"}); err == nil {
		t.Error("Expected error for negative quota floor")
	}
}
