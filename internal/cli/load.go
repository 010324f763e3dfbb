package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/statetree/internal/value"
)

// loadDocument reads a JSON or YAML document into a value. The format is
// chosen by extension; anything other than .json is parsed as YAML.
func loadDocument(file string) (value.Value, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var v value.Value
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		v, err = value.ParseJSON(data)
	default:
		v, err = value.ParseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return v, nil
}
