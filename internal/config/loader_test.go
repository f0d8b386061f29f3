package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	data := []byte(`
log:
  level: debug
qdrant:
  host: vectors.internal
  collection: runbooks
workflow:
  variant: suggestion
  confidence_threshold: 0.8
`)
	cfg, err := Load(data, ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Qdrant.Host != "vectors.internal" || cfg.Qdrant.Collection != "runbooks" {
		t.Errorf("qdrant section = %+v", cfg.Qdrant)
	}
	if cfg.Workflow.Variant != "suggestion" || cfg.Workflow.ConfidenceThreshold != 0.8 {
		t.Errorf("workflow section = %+v", cfg.Workflow)
	}
	// Untouched sections keep their defaults.
	if cfg.Ollama.Host != "http://localhost:11434" {
		t.Errorf("ollama default lost: %q", cfg.Ollama.Host)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("ingest defaults lost: %+v", cfg.Ingest)
	}
}

func TestLoad_JSONDetectedByContent(t *testing.T) {
	data := []byte(`{"http": {"addr": ":9090"}}`)
	cfg, err := Load(data, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown variant", "workflow:\n  variant: turbo\n", "unknown workflow variant"},
		{"threshold out of range", "workflow:\n  confidence_threshold: 1.5\n", "out of range"},
		{"threshold zero", "workflow:\n  confidence_threshold: 0\n", "out of range"},
		{"overlap too large", "ingest:\n  chunk_overlap: 2000\n", "chunk overlap"},
		{"missing collection", "qdrant:\n  collection: \"\"\n", "collection name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.yaml), ".yaml")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lodestar.yml")
	if err := os.WriteFile(path, []byte("chat:\n  history_limit: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Chat.HistoryLimit != 5 {
		t.Errorf("history limit = %d", cfg.Chat.HistoryLimit)
	}

	if _, err := LoadFromPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
