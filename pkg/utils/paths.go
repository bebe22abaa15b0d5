package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DataDirName is the directory under the user's home holding the store and config.
	DataDirName = ".gochef"
	// StoreFileName is the SQLite file inside DataDirName.
	StoreFileName = "gochef.db"
)

// DefaultStorePath returns <home>/.gochef/gochef.db
func DefaultStorePath(home string) string {
	return filepath.Join(home, DataDirName, StoreFileName)
}

// EnsureParentDir creates the directory that will hold path, if needed
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
