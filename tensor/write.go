// Package tensor persists token sequences as NumPy .npy files, the common
// ground between this converter and the Python training side (numpy and
// torch both load them directly).
package tensor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
)

// Write saves tokens as a 1-D int16 tensor at path, creating parent
// directories as needed. A failed write leaves no file behind.
func Write(path string, tokens []int16) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := npyio.Write(f, tokens); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// Read loads a token tensor written by Write. Used by tests and by anyone
// inspecting converter output from Go.
func Read(path string) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tokens []int16
	if err := npyio.Read(f, &tokens); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return tokens, nil
}
