// Package jsonfile reads and atomically replaces JSON documents on an afero
// filesystem.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// Read decodes the document at path into v. It reports false without error
// when the file does not exist.
func Read(fs afero.Fs, path string, v any) (bool, error) {
	file, err := fs.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// Write encodes v to a temp file next to path, syncs it and renames it over
// path.
func Write(fs afero.Fs, path string, v any) error {
	tmp := path + ".tmp"
	file, err := fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		file.Close()
		_ = fs.Remove(tmp)
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = fs.Remove(tmp)
		return fmt.Errorf("sync %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
