package resolver

import (
	"context"
	"slices"

	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
)

type sequential struct {
	r       *Resolver
	done    map[string]*model.System
	stack   []string
	sources []model.SourceFile
}

func (r *Resolver) resolveSequential(ctx context.Context, root string) (*model.System, []model.SourceFile, error) {
	s := &sequential{r: r, done: make(map[string]*model.System)}
	sys, err := s.resolve(ctx, root, "", "")
	if err != nil {
		return nil, nil, err
	}
	return sys, s.sources, nil
}

func (s *sequential) resolve(ctx context.Context, p, from, blockID string) (*model.System, error) {
	if i := slices.Index(s.stack, p); i >= 0 {
		return nil, errors.Cycle(append(slices.Clone(s.stack[i:]), p))
	}
	if sys, ok := s.done[p]; ok {
		return sys, nil
	}

	res, src, err := s.r.load(ctx, p, from, blockID)
	if err != nil {
		return nil, err
	}
	s.sources = append(s.sources, src)

	s.stack = append(s.stack, p)
	for _, pr := range res.Pending {
		child, err := s.resolve(ctx, Canonical(p, pr.Ref), p, pr.BlockID)
		if err != nil {
			return nil, err
		}
		pr.Block.System = child.Clone()
	}
	s.stack = s.stack[:len(s.stack)-1]

	s.done[p] = res.System
	return res.System, nil
}
