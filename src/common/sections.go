package common

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Section is one catalog category folder directly under a base directory
type Section struct {
	Name string
	Path string
}

// ExtensionSet normalizes configured extensions to a lowercase ".ext" lookup set
func ExtensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// HasExtension reports whether name carries one of the extensions, ignoring case
func HasExtension(name string, exts map[string]bool) bool {
	return exts[strings.ToLower(filepath.Ext(name))]
}

// ListSections returns the section folders under base in name order.
// Entries that are not directories (after following symlinks) are skipped.
func ListSections(base string) ([]Section, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("failed to read base directory: %w", err)
	}

	sections := make([]Section, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(base, entry.Name())
		if !isDir(entry, path) {
			continue
		}
		sections = append(sections, Section{Name: entry.Name(), Path: path})
	}

	return sections, nil
}

// ListImages returns the names of the image files directly inside dir.
// os.ReadDir sorts by file name, which fixes the sequence numbering order.
func ListImages(dir string, exts map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read section directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if isDir(entry, filepath.Join(dir, entry.Name())) {
			continue
		}
		if HasExtension(entry.Name(), exts) {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

func isDir(entry fs.DirEntry, path string) bool {
	if entry.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.IsDir()
	}
	return entry.IsDir()
}
