package source

import (
	"archive/zip"
	"fmt"
)

// OpenZip opens an .slx (zip) archive as a Source. Close releases it.
func OpenZip(path string) (*FS, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return &FS{fsys: rc, closer: rc, label: path}, nil
}
