package resolver

import (
	"context"
	"encoding/hex"
	stderrors "errors"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zeebo/blake3"

	"github.com/ulikoehler/slinktree/pkg/builder"
	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
	"github.com/ulikoehler/slinktree/pkg/observability"
	"github.com/ulikoehler/slinktree/pkg/source"
)

// DefaultExt is the extension every canonical path carries. A reference
// with no extension, or with another one, gets it in place of its own.
const DefaultExt = ".xml"

// Options configures resolution.
type Options struct {
	Builder builder.Options
	// Workers bounds concurrent file parsing. Values <= 1 resolve
	// sequentially.
	Workers int
	// Logger receives per-file debug records. Nil discards them.
	Logger *log.Logger
}

// WithDefaults returns a copy with zero fields filled in.
func (o Options) WithDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Resolver resolves model files read from a Source.
// A Resolver holds no state between calls and may be reused.
type Resolver struct {
	src  source.Source
	opts Options
}

// New creates a Resolver reading from src.
func New(src source.Source, opts Options) *Resolver {
	return &Resolver{src: src, opts: opts.WithDefaults()}
}

// Resolve loads rootPath and every file it transitively references.
func (r *Resolver) Resolve(ctx context.Context, rootPath string) (*model.SystemDoc, error) {
	root := Canonical("", rootPath)
	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, root)
	start := time.Now()

	var (
		sys     *model.System
		sources []model.SourceFile
		err     error
	)
	if r.opts.Workers > 1 {
		sys, sources, err = r.resolveConcurrent(ctx, root)
	} else {
		sys, sources, err = r.resolveSequential(ctx, root)
	}
	err = contextError(ctx, err)
	hooks.OnResolveComplete(ctx, root, len(sources), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(sources, func(a, b model.SourceFile) int { return strings.Compare(a.Path, b.Path) })
	r.opts.Logger.Debug("resolved", "root", root, "files", len(sources), "duration", time.Since(start))
	return &model.SystemDoc{
		FormatVersion: model.CurrentFormatVersion,
		Source:        root,
		Sources:       sources,
		Root:          sys,
	}, nil
}

// Canonical returns the canonical path of ref as seen from the file at
// from. An empty from resolves against the source root.
func Canonical(from, ref string) string {
	p := ref
	if ext := path.Ext(p); ext != DefaultExt {
		p = strings.TrimSuffix(p, ext) + DefaultExt
	}
	if strings.HasPrefix(p, "/") || from == "" {
		return strings.TrimPrefix(path.Clean("/"+p), "/")
	}
	return path.Clean(path.Join(path.Dir(from), p))
}

// Digest returns the hex BLAKE3 digest recorded for a source file.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// load reads and builds one file. from and blockID identify the reference
// being followed and are empty for the root.
func (r *Resolver) load(ctx context.Context, p, from, blockID string) (*builder.Result, model.SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.SourceFile{}, err
	}
	start := time.Now()
	data, err := r.src.ReadFile(p)
	if err != nil {
		ref := &errors.ReferenceError{Path: p, BlockID: blockID, From: from, Err: err}
		if !stderrors.Is(err, fs.ErrNotExist) {
			return nil, model.SourceFile{}, errors.Wrap(errors.ErrCodeInternal, ref, "cannot read %s: %v", p, err)
		}
		return nil, model.SourceFile{}, errors.Unresolved(ref)
	}
	res, err := builder.BuildDocument(data, r.opts.Builder)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		return nil, model.SourceFile{}, errors.Wrap(code, err, "%s: %s", p, errors.UserMessage(err))
	}
	res.System.Path = p

	observability.Resolve().OnFileParsed(ctx, p, len(res.System.Blocks), time.Since(start))
	r.opts.Logger.Debug("parsed", "path", p, "blocks", len(res.System.Blocks),
		"lines", len(res.System.Lines), "refs", len(res.Pending))
	return res, model.SourceFile{Path: p, Digest: Digest(data)}, nil
}

// contextError reports an expired deadline as RESOLUTION_TIMEOUT.
// Cancellation is passed through unchanged.
func contextError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) && stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeResolutionTimeout, err, "resolution did not finish before the deadline")
	}
	return err
}
