// Package source provides the file collaborators the resolver reads model
// files through.
//
// Names are slash-separated paths relative to the source root, in the form
// produced by path.Clean. A missing name yields an error wrapping
// fs.ErrNotExist.
package source

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SlxRoot is the root system entry inside an .slx archive.
const SlxRoot = "simulink/systems/system_root.xml"

// Source reads named model files.
type Source interface {
	ReadFile(name string) ([]byte, error)
}

// FS is a Source backed by an fs.FS. It is safe for concurrent use.
type FS struct {
	fsys   fs.FS
	closer io.Closer
	mu     sync.Mutex
	label  string
}

// Dir returns a Source reading files below root on the local filesystem.
func Dir(root string) *FS {
	return &FS{fsys: os.DirFS(root), label: root}
}

// FromFS wraps an existing file system, e.g. fstest.MapFS in tests.
func FromFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys, label: "fs"}
}

// ReadFile reads name. A leading slash is ignored so absolute references
// address the source root.
func (s *FS) ReadFile(name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "/")
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	// zip.Reader file handles are not safe for concurrent opens.
	if s.closer != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fs.ReadFile(s.fsys, name)
}

// Close releases the underlying archive, if any.
func (s *FS) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// String returns the source's root label.
func (s *FS) String() string {
	return s.label
}

// Input is a model entry point: a source and the name of its root system.
type Input struct {
	Source *FS
	Root   string
	// Archive is true for .slx input.
	Archive bool
}

// Close releases the input's source.
func (in *Input) Close() error {
	return in.Source.Close()
}

// Open prepares an XML file or .slx archive for resolution. Binary
// containers are not handled here.
func Open(path string) (*Input, error) {
	if strings.EqualFold(filepath.Ext(path), ".slx") {
		src, err := OpenZip(path)
		if err != nil {
			return nil, err
		}
		return &Input{Source: src, Root: SlxRoot, Archive: true}, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, err
	}
	return &Input{Source: Dir(filepath.Dir(abs)), Root: filepath.Base(abs)}, nil
}
