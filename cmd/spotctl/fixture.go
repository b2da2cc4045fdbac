package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spot-resolver/internal/domain"
)

// Fixture - датасет, сохранения и состояние карты для офлайн-команд.
// JSON - подмножество YAML, поэтому оба формата читаются одним декодером.
type Fixture struct {
	Dataset  domain.DatasetContext `yaml:"dataset"`
	Records  []domain.SpotRecord   `yaml:"records"`
	Saved    []domain.SavedEntry   `yaml:"saved"`
	Viewport *domain.Viewport      `yaml:"viewport"`
	Rendered []domain.MarkerKey    `yaml:"rendered"`
}

func loadFixture(path string) (*Fixture, error) {
	if path == "" {
		return nil, fmt.Errorf("--fixture is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}
