// Package cfconfig loads contextfootprint.yaml: the pruning presets,
// tokenizer encoding, and documentation-scorer keyword list, with an
// embedded default so zero-config operation works out of the box.
package cfconfig

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/contextfp/cf/internal/pruning"
)

//go:embed default.yaml
var defaultConfigYAML []byte

const configFileName = "contextfootprint.yaml"

// PruningPreset is one named (doc_threshold, academic_mode) pair.
type PruningPreset struct {
	DocThreshold float32 `yaml:"doc_threshold"`
	AcademicMode bool    `yaml:"academic_mode"`
}

// Config is the full set of overridable knobs. All fields are optional;
// a missing contextfootprint.yaml is not an error, matching
// TraceConfig/PreFilterConfig's zero-config-works pattern.
type Config struct {
	TokenizerEncoding string                   `yaml:"tokenizer_encoding"`
	DocScorerKeywords []string                 `yaml:"doc_scorer_keywords"`
	PruningPresets    map[string]PruningPreset  `yaml:"pruning_presets"`
	DefaultPreset     string                   `yaml:"default_preset"`
}

// Default returns the embedded baseline configuration.
func Default() (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("cfconfig: parse embedded default: %w", err)
	}
	return cfg, nil
}

// Load reads contextfootprint.yaml from projectRoot, merging it over the
// embedded default. A missing file is not an error — the embedded default
// is returned unchanged, per this project's "zero-config works, YAML
// overrides" convention.
func Load(projectRoot string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}
	if projectRoot == "" {
		return cfg, nil
	}

	path := filepath.Join(projectRoot, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("cfconfig: reading %s: %w", configFileName, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("cfconfig: parsing %s: %w", configFileName, err)
	}
	return cfg, nil
}

// Preset resolves a named preset (e.g. "academic", "strict", or a custom
// name added via an override file) to pruning.Params. Falls back to the
// two canonical spec presets when the name is one of those and not
// present in PruningPresets, so a config with no pruning_presets section
// at all still works.
func (c Config) Preset(name string) (pruning.Params, error) {
	if p, ok := c.PruningPresets[name]; ok {
		return pruning.Params{DocThreshold: p.DocThreshold, AcademicMode: p.AcademicMode}, nil
	}
	switch name {
	case "academic":
		return pruning.Academic(), nil
	case "strict":
		return pruning.Strict(), nil
	default:
		return pruning.Params{}, fmt.Errorf("cfconfig: unknown pruning preset %q", name)
	}
}
