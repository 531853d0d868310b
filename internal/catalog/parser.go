package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	nosleeperrors "github.com/alexisbeaulieu97/nosleep/pkg/errors"
)

// DefaultSource names the embedded catalog in error messages.
const DefaultSource = "<embedded default.yaml>"

//go:embed default.yaml
var defaultCatalog []byte

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, DefaultSource)
}

// Load reads a catalog file from disk, validates it, and returns the result.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nosleeperrors.NewParseError(path, 0, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a catalog document. source is used in errors.
func Parse(data []byte, source string) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, nosleeperrors.NewParseError(source, extractLine(err), err)
	}

	if err := Validate(&cat); err != nil {
		return nil, err
	}

	return &cat, nil
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

// Marshal renders the catalog as canonical YAML: field order follows the
// struct definition and comments are dropped, so two catalogs can be compared
// line by line.
func Marshal(cat *Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cat); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}
