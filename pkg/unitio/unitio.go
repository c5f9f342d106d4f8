// Package unitio saves and loads segmented units as JSON for debugging.
// A path ending in ".xz" is compressed with xz.
package unitio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/gardar/ocrdiff/pkg/segment"
	"github.com/gardar/ocrdiff/pkg/textnorm"
)

func compressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xz")
}

// Save writes units to path as an indented JSON array
func Save(path string, units []segment.Unit) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	var w io.Writer = file
	if compressed(path) {
		xw, xerr := xz.NewWriter(file)
		if xerr != nil {
			return fmt.Errorf("failed to create xz writer: %w", xerr)
		}
		defer func() {
			if cerr := xw.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("failed to finish xz stream: %w", cerr)
			}
		}()
		w = xw
	}
	return Write(w, units)
}

// Write encodes units as an indented JSON array. A nil list is written as [].
func Write(w io.Writer, units []segment.Unit) error {
	if units == nil {
		units = []segment.Unit{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(units); err != nil {
		return fmt.Errorf("failed to encode units: %w", err)
	}
	return nil
}

// Load reads units saved by Save
func Load(path string) ([]segment.Unit, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var r io.Reader = file
	if compressed(path) {
		xr, err := xz.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xr
	}
	return Read(r)
}

// Read decodes a JSON array of units and recomputes their normalized text
func Read(r io.Reader) ([]segment.Unit, error) {
	var units []segment.Unit
	if err := json.NewDecoder(r).Decode(&units); err != nil {
		return nil, fmt.Errorf("failed to decode units: %w", err)
	}
	for i := range units {
		units[i].Normalized = textnorm.Normalize(units[i].Text)
	}
	return units, nil
}
