package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnrecognizedManifest is returned for JSON that is neither a list nor an object with "images"
var ErrUnrecognizedManifest = errors.New("unrecognized manifest shape")

// LegacyEntry is one image in the bare-list manifest written by the converter
type LegacyEntry struct {
	ID    int    `json:"id"`
	Full  string `json:"full"`
	Thumb string `json:"thumb"`
	Alt   string `json:"alt"`
}

// Image is one image in the canonical manifest
type Image struct {
	Thumb string `json:"thumb"`
	Full  string `json:"full"`
	Alt   string `json:"alt"`
}

// Canonical is the {"images": [...]} manifest shape
type Canonical struct {
	Images []Image `json:"images"`
}

// Shape tells which form a manifest file was in
type Shape int

const (
	ShapeLegacy Shape = iota + 1
	ShapeCanonical
)

func (s Shape) String() string {
	switch s {
	case ShapeLegacy:
		return "legacy"
	case ShapeCanonical:
		return "canonical"
	default:
		return "unknown"
	}
}

// Manifest is a decoded manifest file, resolved to exactly one shape
type Manifest struct {
	Shape Shape

	// Set for ShapeLegacy. Only the path fields are read back; id and alt are
	// regenerated by whoever rewrites the manifest.
	Legacy []LegacyEntry

	// Set for ShapeCanonical; entries are left undecoded
	Canonical []json.RawMessage
}

// legacyRecord is the decode-side view of a legacy entry
type legacyRecord struct {
	Full  string `json:"full"`
	Thumb string `json:"thumb"`
}

// ManifestPath returns the <section>.json path inside a section folder
func ManifestPath(sec Section) string {
	return filepath.Join(sec.Path, sec.Name+".json")
}

// DecodeManifest resolves raw JSON into a legacy or canonical manifest
func DecodeManifest(data []byte) (*Manifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty manifest: %w", ErrUnrecognizedManifest)
	}

	switch trimmed[0] {
	case '[':
		var records []legacyRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to parse legacy manifest: %w", err)
		}
		entries := make([]LegacyEntry, len(records))
		for i, r := range records {
			entries[i] = LegacyEntry{Full: r.Full, Thumb: r.Thumb}
		}
		return &Manifest{Shape: ShapeLegacy, Legacy: entries}, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
		raw, ok := obj["images"]
		if !ok {
			return nil, fmt.Errorf("object without \"images\" key: %w", ErrUnrecognizedManifest)
		}
		m := &Manifest{Shape: ShapeCanonical}
		// the key alone marks the file canonical; a malformed list is left as is
		_ = json.Unmarshal(raw, &m.Canonical)
		return m, nil

	default:
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("failed to parse manifest: invalid JSON")
		}
		return nil, fmt.Errorf("top-level JSON value: %w", ErrUnrecognizedManifest)
	}
}

// ReadManifest reads and decodes a manifest file
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return DecodeManifest(data)
}

// WriteJSON writes v to path as 2-space indented JSON. Non-ASCII and HTML
// characters are written verbatim.
func WriteJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
