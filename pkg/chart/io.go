package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/isopleth"
	"github.com/matzehuels/tephi/pkg/projection"
)

// =============================================================================
// Chart Serialization API
// =============================================================================

// Marshal converts a chart to indented JSON bytes.
func Marshal(c *Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(c, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes and validates a chart from JSON bytes.
func Unmarshal(data []byte) (*Chart, error) {
	return Read(bytes.NewReader(data))
}

// Write writes a chart as JSON to an io.Writer.
func Write(c *Chart, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a chart to a JSON file.
func WriteFile(c *Chart, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(c, f)
}

// Read decodes a chart from an io.Reader and validates it.
func Read(r io.Reader) (*Chart, error) {
	var c Chart
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode chart")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadFile reads a chart from a JSON file.
func ReadFile(path string) (*Chart, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "chart file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Validate checks that the chart names a known projection and families and
// that its domain is well formed.
func (c *Chart) Validate() error {
	if _, err := projection.Canonical(c.Projection); err != nil {
		return err
	}
	if err := c.Domain.Validate(); err != nil {
		return err
	}
	for i, l := range c.Lines {
		if _, err := isopleth.ParseFamily(l.Family); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", i)
		}
	}
	return nil
}
