package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkglisting/pkglisting/internal/perms"
)

// AppDirName returns the name of the application, used to prefix temporary files.
func AppDirName() string {
	return "pkglisting"
}

// EnsureParentDir creates the directory that will hold path, with regular permissions, if it doesn't exist.
// It rejects a parent that exists but is not a directory.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)

	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("path '%s' is not a directory", dir)
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return fmt.Errorf("could not stat directory '%s': %w", dir, err)
	}

	if err := os.MkdirAll(dir, perms.RegularDir); err != nil {
		return fmt.Errorf("could not ensure directory exists for '%s': %w", dir, err)
	}

	return nil
}

// WriteFileAtomic writes data to path by writing a temporary file in the same directory
// and renaming it into place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if err := EnsureParentDir(path); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+AppDirName()+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath) // Clean up on any error.
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions on '%s': %w", path, err)
	}

	// Atomically rename to final location.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file to '%s': %w", path, err)
	}

	return nil
}
