package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"taskTimeline/internal/timeline"

	"gopkg.in/yaml.v3"
)

type layoutsFile struct {
	Layouts []timeline.Layout `yaml:"layouts"`
}

// LoadLayouts читает раскладки доски из yaml и добавляет их к встроенным.
// Раскладка с тем же именем заменяет встроенную
func LoadLayouts(path string) (map[string]timeline.Layout, error) {
	layouts := timeline.DefaultLayouts()
	if path == "" {
		return layouts, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	var parsed layoutsFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	for _, l := range parsed.Layouts {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		layouts[l.Name] = l
	}
	return layouts, nil
}
