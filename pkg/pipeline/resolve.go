package pipeline

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"time"

	"github.com/ulikoehler/slinktree/pkg/builder"
	"github.com/ulikoehler/slinktree/pkg/codec"
	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
	"github.com/ulikoehler/slinktree/pkg/observability"
	"github.com/ulikoehler/slinktree/pkg/resolver"
	"github.com/ulikoehler/slinktree/pkg/source"
)

// Resolve resolves in without consulting any cache. opts must already
// carry defaults.
func Resolve(ctx context.Context, in *source.Input, opts Options) (*model.SystemDoc, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	r := resolver.New(in.Source, resolver.Options{
		Builder: builder.Options{InferPorts: opts.InferPorts},
		Workers: opts.Workers,
		Logger:  opts.Logger,
	})
	return r.Resolve(ctx, in.Root)
}

// LoadBinary reads a container file written by SaveBinary.
func LoadBinary(ctx context.Context, path string) (*model.SystemDoc, error) {
	start := time.Now()
	doc, err := codec.LoadFile(path)
	size := 0
	if fi, statErr := os.Stat(path); statErr == nil {
		size = int(fi.Size())
	}
	observability.Codec().OnDecode(ctx, size, time.Since(start), err)
	if err != nil {
		return nil, openError(path, err)
	}
	return doc, nil
}

// SaveBinary writes doc as a container file, xz-compressed when path ends
// in ".xz". It returns the size written.
func SaveBinary(ctx context.Context, path string, doc *model.SystemDoc) (int64, error) {
	start := time.Now()
	if err := codec.SaveFile(path, doc); err != nil {
		return 0, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	observability.Codec().OnEncode(ctx, int(fi.Size()), time.Since(start))
	return fi.Size(), nil
}

// verify reports whether every source file recorded in doc still has the
// recorded digest.
func verify(src source.Source, doc *model.SystemDoc) bool {
	if doc == nil || doc.Root == nil || len(doc.Sources) == 0 {
		return false
	}
	for _, sf := range doc.Sources {
		data, err := src.ReadFile(sf.Path)
		if err != nil || resolver.Digest(data) != sf.Digest {
			return false
		}
	}
	return true
}

// openError maps input access failures to structured errors. Errors that
// already carry a code pass through.
func openError(path string, err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "input not found: %s", path)
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot read %s", path)
}
