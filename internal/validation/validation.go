// Package validation checks user-supplied paths and formats before a run starts.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsValidDirectory checks that path exists and is a directory.
func IsValidDirectory(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", path)
	}
	return nil
}

// IsValidOutputPath checks that path can be written as a file: it is not a
// directory and no existing parent is a regular file.
func IsValidOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path must not be empty")
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output path %s is a directory", path)
	}

	for dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("error checking path %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("parent %s of output path is not a directory", dir)
		}
		break
	}
	return nil
}

// IsValidOutputFormat checks if the given report format is supported.
func IsValidOutputFormat(format string) error {
	switch format {
	case "csv", "json":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'csv', 'json'", format)
	}
}
