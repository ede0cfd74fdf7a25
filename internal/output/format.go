package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format writes a Table to a file.
type Format interface {
	Name() string
	Extensions() []string
	WriteFile(path string, t Table) error
}

var (
	registry    = make(map[string]Format)
	extRegistry = make(map[string]Format)
)

// Register adds a format to the registry.
func Register(f Format) {
	registry[strings.ToLower(f.Name())] = f
	for _, ext := range f.Extensions() {
		extRegistry[strings.ToLower(ext)] = f
	}
}

// ForPath picks the format matching the file extension, falling back to CSV.
func ForPath(path string) Format {
	if f, ok := extRegistry[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return registry["csv"]
}

// WriteFile writes t to path in the format implied by its extension.
func WriteFile(path string, t Table) error {
	f := ForPath(path)
	if err := f.WriteFile(path, t); err != nil {
		return fmt.Errorf("failed to write %s output %s: %w", f.Name(), path, err)
	}
	return nil
}

// createFile opens path for writing, truncating any existing file.
func createFile(path string) (*os.File, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}
