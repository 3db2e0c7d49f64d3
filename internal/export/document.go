package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Encode writes frames as a top-level JSON array with 2-space indentation.
func Encode(w io.Writer, frames []Frame) error {
	data, err := Marshal(frames)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Marshal returns the document bytes. A nil slice encodes as [].
func Marshal(frames []Frame) ([]byte, error) {
	if frames == nil {
		frames = []Frame{}
	}
	data, err := json.MarshalIndent(frames, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode frames: %w", err)
	}
	return data, nil
}

// WriteFile writes the document to path through a temporary file in the same
// directory, so path either holds the complete document or is left untouched.
// It returns the number of bytes written.
func WriteFile(path string, frames []Frame) (int, error) {
	data, err := Marshal(frames)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("failed to move output into place: %w", err)
	}
	return len(data), nil
}
