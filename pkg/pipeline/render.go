package pipeline

import (
	"context"
	"fmt"

	"github.com/ulikoehler/slinktree/pkg/cache"
	"github.com/ulikoehler/slinktree/pkg/codec"
	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
	"github.com/ulikoehler/slinktree/pkg/observability"
	"github.com/ulikoehler/slinktree/pkg/render"
)

// RenderOptions selects what to draw.
type RenderOptions struct {
	// System is a slash-separated block path below the root, e.g.
	// "Controller/Inner". Empty draws the root system.
	System   string
	Format   string
	Detailed bool
}

// Render draws one system of doc. Diagrams are cached under the hash of
// the encoded document, so a changed model never returns an old diagram.
func (r *Runner) Render(ctx context.Context, doc *model.SystemDoc, opts RenderOptions) ([]byte, bool, error) {
	if opts.Format == "" {
		opts.Format = render.FormatSVG
	}
	if err := render.ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}
	if err := errors.ValidateBlockPath(opts.System); err != nil {
		return nil, false, err
	}
	sys := doc.Root.Lookup(opts.System)
	if sys == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidPath, "no subsystem at %q", opts.System)
	}

	encoded, err := codec.Encode(doc)
	if err != nil {
		return nil, false, fmt.Errorf("hash document: %w", err)
	}
	key := r.Keyer.ArtifactKey(cache.Hash(encoded), cache.ArtifactKeyOpts{
		System:   opts.System,
		Format:   opts.Format,
		Detailed: opts.Detailed,
	})

	hooks := observability.Cache()
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, "artifact")

	out, err := render.Render(ctx, sys, opts.Format, render.Options{Detailed: opts.Detailed})
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", opts.Format, err)
	}
	if err := r.Cache.Set(ctx, key, out, cache.TTLArtifact); err == nil {
		hooks.OnCacheSet(ctx, "artifact", len(out))
	}
	return out, false, nil
}
