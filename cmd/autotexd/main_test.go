package main

import (
	"os"
	"path/filepath"
	"testing"

	"autotex/internal/config"
)

func TestBuildAnnotatorWithoutRules(t *testing.T) {
	cfg := config.Default()

	annotator, err := buildAnnotator(&cfg)
	if err != nil {
		t.Fatalf("buildAnnotator: %v", err)
	}
	if annotator == nil {
		t.Fatal("expected annotator")
	}
}

func TestBuildAnnotatorLoadsExtraRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	rules := "rules:\n  - severity: suggestion\n    pattern: 'Overfull .hbox'\n"
	if err := os.WriteFile(path, []byte(rules), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	cfg := config.Default()
	cfg.Annotator.RulesPath = path

	if _, err := buildAnnotator(&cfg); err != nil {
		t.Fatalf("buildAnnotator with rules: %v", err)
	}
}

func TestBuildAnnotatorRejectsBadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("rules:\n  - severity: bogus\n    pattern: x\n"), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	cfg := config.Default()
	cfg.Annotator.RulesPath = path

	if _, err := buildAnnotator(&cfg); err == nil {
		t.Fatal("expected error for invalid severity")
	}
}
