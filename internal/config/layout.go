package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"trade_pilot/internal/domain"
	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/value"
)

// LoadLayout reads the screen layout and checks it covers everything the mode
// touches.
func LoadLayout(path string, mode entity.Mode) (value.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Layout{}, domain.Reasonf(domain.ErrInvalidLayout, "read %s: %v", path, err)
	}

	return ParseLayout(data, mode)
}

func ParseLayout(data []byte, mode entity.Mode) (value.Layout, error) {
	var layout value.Layout

	if err := yaml.Unmarshal(data, &layout); err != nil {
		return value.Layout{}, domain.Reasonf(domain.ErrInvalidLayout, "parse: %v", err)
	}

	if err := layout.ValidateFor(mode.String()); err != nil {
		return value.Layout{}, domain.Reasonf(domain.ErrInvalidLayout, "incomplete for %s mode: %v", mode, err)
	}

	return layout, nil
}
