package lens

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a lens data file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks a format from a file extension. Anything that isn't
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads raw lens data in the given format.
func Decode(r io.Reader, format Format) (*Raw, error) {
	var raw Raw
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "decoding yaml")
		}
	default:
		dec := json.NewDecoder(r)
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "decoding json")
		}
	}
	return &raw, nil
}

// ReadRaw reads a lens data file without normalizing it.
func ReadRaw(path string) (*Raw, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := Decode(bytes.NewReader(content), FormatFor(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return raw, nil
}

// Load reads and normalizes a lens data file.
func Load(path string) (*Data, error) {
	raw, err := ReadRaw(path)
	if err != nil {
		return nil, err
	}
	data, err := Normalize(raw)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return data, nil
}
