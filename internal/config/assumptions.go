package config

import (
	"fmt"

	"github.com/klokku/finplan/pkg/projection"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadAssumptions reads a plan from a YAML or JSON file. Keys follow the JSON
// names of the HTTP API.
func LoadAssumptions(path string) (projection.AssumptionsDTO, error) {
	var k = koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return projection.AssumptionsDTO{}, fmt.Errorf("failed to read assumptions from %s: %w", path, err)
	}

	var dto projection.AssumptionsDTO
	if err := k.UnmarshalWithConf("", &dto, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return projection.AssumptionsDTO{}, fmt.Errorf("failed to decode assumptions from %s: %w", path, err)
	}
	return dto, nil
}
