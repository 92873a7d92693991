package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	inkerrors "github.com/alexisbeaulieu97/inkwell/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Load resolves the configuration file and parses it, falling back to
// Default when no file is configured or present.
func Load(explicit string) (*Config, error) {
	path, ok := Resolve(explicit)
	if !ok {
		cfg := Default()
		return &cfg, nil
	}
	return ParseConfig(path)
}

// ParseConfig loads a configuration file from disk, validates it, and returns the resulting model.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, inkerrors.NewParseError(path, 0, err)
	}
	return Parse(path, data)
}

// Parse decodes data on top of Default and validates the result. Keys absent
// from data keep their default values.
func Parse(source string, data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, inkerrors.NewParseError(source, extractLine(err), err)
		}
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
