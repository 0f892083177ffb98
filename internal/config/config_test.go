package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("default port = %q", cfg.Server.Port)
	}
	if cfg.Detector.Language != "ja" {
		t.Errorf("default language = %q", cfg.Detector.Language)
	}
	if cfg.Jobs.PageConcurrency != 6 {
		t.Errorf("default page concurrency = %d", cfg.Jobs.PageConcurrency)
	}
	if !cfg.Merge.Enabled {
		t.Error("merge disabled by default")
	}
	if cfg.Merge.DistK != 1.2 {
		t.Errorf("default dist_k = %v", cfg.Merge.DistK)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	got := cm.Get()
	want := DefaultConfig()
	if got.Detector.Endpoint != want.Detector.Endpoint {
		t.Errorf("endpoint = %q, want %q", got.Detector.Endpoint, want.Detector.Endpoint)
	}
	if got.Merge != want.Merge {
		t.Errorf("merge config = %+v, want %+v", got.Merge, want.Merge)
	}
}

func TestManagerReadsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`detector:
  language: en
merge:
  enabled: true
  dist_k: 2.5
  font_ratio: 1.3
  mixed_font_ratio: 1.1
  overlap_min: 0.1
  mixed_overlap_min: 0.5
  min_line_ratio: 0.5
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if got := cm.Get().Detector.Language; got != "en" {
		t.Errorf("language = %q, want en", got)
	}
	if got := cm.MergeConfig().DistK; got != 2.5 {
		t.Errorf("dist_k = %v, want 2.5", got)
	}
	// Sections absent from the file keep their defaults.
	if got := cm.Get().Jobs.SaveEvery; got != 5 {
		t.Errorf("save_every = %v, want default 5", got)
	}
}
