package resolver

import (
	"context"
	stderrors "errors"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
)

// flight is one file's resolution, shared by every goroutine needing it.
type flight struct {
	done chan struct{}
	sys  *model.System
	err  error
}

type concurrent struct {
	r   *Resolver
	sem *semaphore.Weighted

	mu      sync.Mutex
	flights map[string]*flight
	// waits[a][b] counts goroutines resolving a that wait for b.
	waits   map[string]map[string]int
	sources []model.SourceFile
}

func (r *Resolver) resolveConcurrent(ctx context.Context, root string) (*model.System, []model.SourceFile, error) {
	c := &concurrent{
		r:       r,
		sem:     semaphore.NewWeighted(int64(r.opts.Workers)),
		flights: make(map[string]*flight),
		waits:   make(map[string]map[string]int),
	}
	sys, err := c.need(ctx, "", "", root)
	if err != nil {
		return nil, nil, err
	}
	return sys, c.sources, nil
}

// need returns the resolved system for p, resolving it on the calling
// goroutine unless another goroutine already started. The cycle check, the
// wait edge and the decision to start are made under one lock.
//
// A flight that ended because its owner's context was cancelled is dropped,
// and a waiter whose own context is still live takes the path over.
func (c *concurrent) need(ctx context.Context, from, blockID, p string) (*model.System, error) {
	c.mu.Lock()
	if from != "" {
		if chain := c.pathLocked(p, from); chain != nil {
			c.mu.Unlock()
			return nil, errors.Cycle(append(chain, p))
		}
		c.addWaitLocked(from, p)
		defer c.removeWait(from, p)
	}
	for {
		f, running := c.flights[p]
		if !running {
			f = &flight{done: make(chan struct{})}
			c.flights[p] = f
		}
		c.mu.Unlock()

		if !running {
			f.sys, f.err = c.resolve(ctx, p, from, blockID)
			if isContextErr(f.err) {
				c.mu.Lock()
				delete(c.flights, p)
				c.mu.Unlock()
			}
			close(f.done)
			return f.sys, f.err
		}

		select {
		case <-f.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if !isContextErr(f.err) || ctx.Err() != nil {
			return f.sys, f.err
		}
		c.mu.Lock()
	}
}

func (c *concurrent) resolve(ctx context.Context, p, from, blockID string) (*model.System, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	res, src, err := c.r.load(ctx, p, from, blockID)
	c.sem.Release(1)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.sources = append(c.sources, src)
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, pr := range res.Pending {
		g.Go(func() error {
			child, err := c.need(gctx, p, pr.BlockID, Canonical(p, pr.Ref))
			if err != nil {
				return err
			}
			pr.Block.System = child.Clone()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res.System, nil
}

func (c *concurrent) addWaitLocked(from, to string) {
	m := c.waits[from]
	if m == nil {
		m = make(map[string]int)
		c.waits[from] = m
	}
	m[to]++
}

func (c *concurrent) removeWait(from, to string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.waits[from]
	if m[to]--; m[to] <= 0 {
		delete(m, to)
	}
	if len(m) == 0 {
		delete(c.waits, from)
	}
}

// pathLocked returns a wait chain from start to target, inclusive, or nil.
// start == target yields a one-element chain.
func (c *concurrent) pathLocked(start, target string) []string {
	if start == target {
		return []string{start}
	}
	prev := map[string]string{start: ""}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range c.waits[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == target {
				var chain []string
				for n := target; n != ""; n = prev[n] {
					chain = append([]string{n}, chain...)
				}
				return chain
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func isContextErr(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
