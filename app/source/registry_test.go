package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRegisterCustomKind(t *testing.T) {
	searcher := &fakeSearcher{items: sampleItems(2)}
	Register("static", func(cfg *Config, env Env) (Searcher, error) {
		if env.Client == nil {
			t.Error("Expected Build to supply an HTTP client")
		}
		return searcher, nil
	})

	tempDir := t.TempDir()
	body := "kind: static\nurl: \"memory://fixtures\"\nplatform: web\n\nsettings:\n  enabled: true\n"
	if err := os.WriteFile(filepath.Join(tempDir, "fixtures.yml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	sourceConfig, err := configCache.GetConfig("fixtures")
	if err != nil {
		t.Fatalf("Expected registered kind to pass validation, got %v", err)
	}

	g, err := Build(sourceConfig, Env{}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	items, err := g.Search(context.Background(), "anything", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("Expected 2 items from the registered kind, got %d", len(items))
	}
	if g.Stats().Kind != "static" {
		t.Errorf("Expected kind 'static', got '%s'", g.Stats().Kind)
	}
}

func TestUnregisteredKindRejectedByConfigCache(t *testing.T) {
	tempDir := t.TempDir()
	writeSource(t, tempDir, "pigeon", "kind: carrier-pigeon\nurl: \"coop://roof\"\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Error("Expected unregistered kind to be rejected")
	}
}
