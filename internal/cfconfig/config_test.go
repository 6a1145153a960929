package cfconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TokenizerEncoding != "cl100k_base" {
		t.Errorf("expected default encoding cl100k_base, got %q", cfg.TokenizerEncoding)
	}
	if cfg.DefaultPreset != "academic" {
		t.Errorf("expected default preset academic, got %q", cfg.DefaultPreset)
	}
	if len(cfg.DocScorerKeywords) != 4 {
		t.Errorf("expected 4 default keywords, got %d", len(cfg.DocScorerKeywords))
	}
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TokenizerEncoding != "cl100k_base" {
		t.Errorf("expected default to be returned unchanged, got %q", cfg.TokenizerEncoding)
	}
}

func TestLoad_EmptyProjectRootReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultPreset != "academic" {
		t.Errorf("expected default preset, got %q", cfg.DefaultPreset)
	}
}

func TestLoad_OverridesMergeOverDefault(t *testing.T) {
	dir := t.TempDir()
	override := "tokenizer_encoding: o200k_base\n"
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(override), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TokenizerEncoding != "o200k_base" {
		t.Errorf("expected override to take effect, got %q", cfg.TokenizerEncoding)
	}
}

func TestLoad_MalformedYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("not: [valid"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
}

func TestConfig_Preset(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("named preset from config", func(t *testing.T) {
		p, err := cfg.Preset("academic")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.DocThreshold != 0.5 || !p.AcademicMode {
			t.Errorf("expected academic preset {0.5, true}, got %+v", p)
		}
	})

	t.Run("strict preset from config", func(t *testing.T) {
		p, err := cfg.Preset("strict")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.DocThreshold != 0.8 || p.AcademicMode {
			t.Errorf("expected strict preset {0.8, false}, got %+v", p)
		}
	})

	t.Run("unknown preset with no config entries falls back to canonical names", func(t *testing.T) {
		empty := Config{}
		p, err := empty.Preset("strict")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.DocThreshold != 0.8 {
			t.Errorf("expected fallback strict preset, got %+v", p)
		}
	})

	t.Run("truly unknown preset errors", func(t *testing.T) {
		if _, err := cfg.Preset("nonexistent"); err == nil {
			t.Error("expected an error for an unknown preset name")
		}
	})
}
