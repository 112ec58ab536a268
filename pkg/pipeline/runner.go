package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ulikoehler/slinktree/pkg/cache"
	"github.com/ulikoehler/slinktree/pkg/codec"
	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
	"github.com/ulikoehler/slinktree/pkg/observability"
	"github.com/ulikoehler/slinktree/pkg/source"
)

// Runner loads models with two cache tiers: an in-process LRU memo of
// decoded documents and a persistent Cache of encoded containers.
//
// Documents handed out by a Runner are always private copies, so callers
// may modify them. Multiple goroutines can safely share a Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is the lifetime of stored documents. Defaults to cache.TTLDoc.
	TTL time.Duration

	memo *lru.Cache[string, *model.SystemDoc]
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (persistent caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	memo, _ := lru.New[string, *model.SystemDoc](DefaultMemoSize)
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLDoc,
		memo:   memo,
	}
}

// Load resolves opts.Input, serving it from cache when the recorded
// sources are unchanged.
func (r *Runner) Load(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	start := time.Now()

	binary, err := codec.Sniff(opts.Input)
	if err != nil {
		return nil, openError(opts.Input, err)
	}
	if binary {
		doc, err := LoadBinary(ctx, opts.Input)
		if err != nil {
			return nil, err
		}
		result := &Result{Doc: doc, Kind: KindBinary, Stats: newStats(doc, time.Since(start))}
		r.Logger.Info("loaded container", "path", opts.Input, "blocks", result.Stats.Blocks,
			"duration", result.Stats.ResolveTime)
		return result, nil
	}

	in, err := source.Open(opts.Input)
	if err != nil {
		return nil, openError(opts.Input, err)
	}
	defer in.Close()

	kind := KindXML
	if in.Archive {
		kind = KindArchive
	}
	key := r.docKey(opts.Input, in.Root, opts)

	if !opts.Refresh {
		if doc, ok := r.lookup(ctx, key, in.Source); ok {
			result := &Result{Doc: doc, Kind: kind, CacheHit: true, Stats: newStats(doc, time.Since(start))}
			r.Logger.Debug("cache hit", "input", opts.Input, "files", result.Stats.Files)
			return result, nil
		}
	}

	doc, err := Resolve(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{Doc: doc, Kind: kind, Stats: newStats(doc, time.Since(start))}
	r.store(ctx, key, doc)

	r.Logger.Info("resolved model",
		"root", doc.Source,
		"files", result.Stats.Files,
		"blocks", result.Stats.Blocks,
		"duration", result.Stats.ResolveTime)
	return result, nil
}

// lookup returns a verified copy of the cached document for key.
func (r *Runner) lookup(ctx context.Context, key string, src source.Source) (*model.SystemDoc, bool) {
	hooks := observability.Cache()

	if doc, ok := r.memo.Get(key); ok {
		if verify(src, doc) {
			hooks.OnCacheHit(ctx, "memo")
			return doc.Clone(), true
		}
		r.memo.Remove(key)
	}

	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, "doc")
		return nil, false
	}

	start := time.Now()
	doc, err := codec.Decode(data)
	observability.Codec().OnDecode(ctx, len(data), time.Since(start), err)
	if err != nil || !verify(src, doc) {
		r.Logger.Debug("discarding stale cache entry", "key", key)
		_ = r.Cache.Delete(ctx, key)
		hooks.OnCacheMiss(ctx, "doc")
		return nil, false
	}

	hooks.OnCacheHit(ctx, "doc")
	r.memo.Add(key, doc)
	return doc.Clone(), true
}

// store records doc in both tiers. Cache write failures are logged, not
// returned: the document is already resolved.
func (r *Runner) store(ctx context.Context, key string, doc *model.SystemDoc) {
	r.memo.Add(key, doc.Clone())

	start := time.Now()
	data, err := codec.Encode(doc)
	if err != nil {
		r.Logger.Warn("encode for cache failed", "error", err)
		return
	}
	observability.Codec().OnEncode(ctx, len(data), time.Since(start))

	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "doc", len(data))
}

func (r *Runner) docKey(input, root string, opts Options) string {
	if abs, err := filepath.Abs(input); err == nil {
		input = abs
	}
	return r.Keyer.DocKey(input, root, cache.DocKeyOpts{
		InferPorts: opts.InferPorts,
		Version:    model.CurrentFormatVersion,
	})
}

// Purge drops every memoized document. The persistent cache is untouched.
func (r *Runner) Purge() {
	r.memo.Purge()
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
