package config

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed limits.yaml
var limitsFile []byte

// Limits holds the tuning knobs that are policy, not code: autosave timing
// and input size caps. They ship as an embedded YAML file so changing a cap
// is a config edit, not a code change.
type Limits struct {
	AutosaveDelayMS  int `yaml:"autosave_delay_ms"`
	MaxNameLength    int `yaml:"max_name_length"`
	MaxHistoryLength int `yaml:"max_history_length"`
	MaxCodeBytes     int `yaml:"max_code_bytes"`
	MaxPromptBytes   int `yaml:"max_prompt_bytes"`
	PublicPageSize   int `yaml:"public_page_size"`
}

// LoadLimits parses the embedded limits file.
func LoadLimits() (*Limits, error) {
	var l Limits
	if err := yaml.Unmarshal(limitsFile, &l); err != nil {
		return nil, fmt.Errorf("unmarshal limits.yaml: %w", err)
	}
	if l.AutosaveDelayMS <= 0 {
		return nil, fmt.Errorf("limits.yaml: autosave_delay_ms must be positive, got %d", l.AutosaveDelayMS)
	}
	return &l, nil
}

// AutosaveDelay returns the quiescence window as a duration.
func (l *Limits) AutosaveDelay() time.Duration {
	return time.Duration(l.AutosaveDelayMS) * time.Millisecond
}
