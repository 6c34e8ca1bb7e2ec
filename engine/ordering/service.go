package ordering

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"

	"github.com/compozy/normorder/engine/operator"
	"github.com/compozy/normorder/engine/rewrite"
	"github.com/compozy/normorder/pkg/config"
	"github.com/compozy/normorder/pkg/logger"
	"github.com/compozy/normorder/pkg/notation"
)

// Stats counts the work done by one normalization.
type Stats struct {
	Terms        int `json:"terms"        yaml:"terms"`
	Steps        int `json:"steps"        yaml:"steps"`
	Swaps        int `json:"swaps"        yaml:"swaps"`
	Contractions int `json:"contractions" yaml:"contractions"`
}

func (s *Stats) add(o Stats) {
	s.Steps += o.Steps
	s.Swaps += o.Swaps
	s.Contractions += o.Contractions
}

func (s *Stats) record(kind rewrite.Kind) {
	s.Steps++
	switch kind {
	case rewrite.Swap:
		s.Swaps++
	case rewrite.Contract:
		s.Contractions++
	}
}

// Result is the outcome of normal ordering one expression.
type Result struct {
	RunID    string
	Input    operator.Expression
	Output   operator.Expression
	Stats    Stats
	Cached   bool
	Duration time.Duration
}

type cachedRun struct {
	output operator.Expression
	stats  Stats
}

// Service normal-orders expressions under the engine configuration: step
// limit, worker count and result cache. It is safe for concurrent use.
type Service struct {
	cfg   config.EngineConfig
	cache *lru.Cache[string, cachedRun]
}

// NewService builds a service. A zero CacheSize disables caching; zero or
// negative Workers means one worker.
func NewService(cfg config.EngineConfig) (*Service, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSteps < 0 {
		return nil, fmt.Errorf("max steps must not be negative, got %d", cfg.MaxSteps)
	}
	s := &Service{cfg: cfg}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, cachedRun](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("init result cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Config returns the engine configuration in use.
func (s *Service) Config() config.EngineConfig {
	return s.cfg
}

// PurgeCache drops every cached result.
func (s *Service) PurgeCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Normalize returns the normal-ordered form of expr. Terms are rewritten
// concurrently and reassembled in input order, which yields the same
// expression as rewrite.NormalOrder.
func (s *Service) Normalize(ctx context.Context, expr operator.Expression) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID: ksuid.New().String(),
		Input: expr,
		Stats: Stats{Terms: expr.Len()},
	}
	log := logger.FromContext(ctx).With("run_id", res.RunID)

	key := notation.Format(expr, notation.SingleLine)
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			res.Output, res.Cached = hit.output, true
			res.Stats.add(hit.stats)
			res.Duration = time.Since(start)
			log.Debug("normal ordering served from cache", "terms", res.Stats.Terms)
			return res, nil
		}
	}

	output, stats, err := s.normalizeTerms(ctx, expr)
	if err != nil {
		return nil, err
	}
	res.Output = output
	res.Stats.add(stats)
	res.Duration = time.Since(start)
	if s.cache != nil {
		s.cache.Add(key, cachedRun{output: output, stats: stats})
	}
	log.Debug("normal ordering finished",
		"terms", res.Stats.Terms,
		"output_terms", output.Len(),
		"steps", stats.Steps,
		"swaps", stats.Swaps,
		"contractions", stats.Contractions,
		"duration", res.Duration,
	)
	return res, nil
}

// NormalizeString parses input and normal-orders it.
func (s *Service) NormalizeString(ctx context.Context, input string) (*Result, error) {
	expr, err := notation.Parse(input)
	if err != nil {
		return nil, err
	}
	return s.Normalize(ctx, expr)
}

// NormalizeAll normal-orders every expression. Results keep the input order;
// the first failure cancels the remaining work and is returned.
func (s *Service) NormalizeAll(ctx context.Context, exprs []operator.Expression) ([]*Result, error) {
	results := make([]*Result, len(exprs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, expr := range exprs {
		g.Go(func() error {
			res, err := s.Normalize(gctx, expr)
			if err != nil {
				return fmt.Errorf("expression %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Trace rewrites expr one leftmost step at a time, calling visit after each
// step, and honours the step limit and ctx across the whole expression.
func (s *Service) Trace(ctx context.Context, expr operator.Expression, visit rewrite.Visitor) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID: ksuid.New().String(),
		Input: expr,
		Stats: Stats{Terms: expr.Len()},
	}
	out, err := rewrite.Trace(expr, func(e rewrite.Event) error {
		if err := s.admit(ctx, e.Index, e.Site.Term); err != nil {
			return err
		}
		res.Stats.record(e.Site.Kind)
		if visit != nil {
			return visit(e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Output = out
	res.Duration = time.Since(start)
	return res, nil
}

func (s *Service) normalizeTerms(ctx context.Context, expr operator.Expression) (operator.Expression, Stats, error) {
	if expr.Len() <= 1 || s.cfg.Workers == 1 {
		return s.sequential(ctx, expr)
	}
	outputs := make([]operator.Expression, expr.Len())
	stats := make([]Stats, expr.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := 0; i < expr.Len(); i++ {
		g.Go(func() error {
			out, st, err := s.normalizeTerm(gctx, i, expr.At(i))
			if err != nil {
				return err
			}
			outputs[i], stats[i] = out, st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return operator.Expression{}, Stats{}, err
	}
	var total Stats
	output := operator.NewExpression()
	for i := range outputs {
		output = output.Concat(outputs[i])
		total.add(stats[i])
	}
	return output, total, nil
}

func (s *Service) sequential(ctx context.Context, expr operator.Expression) (operator.Expression, Stats, error) {
	var total Stats
	output := operator.NewExpression()
	for i := 0; i < expr.Len(); i++ {
		out, st, err := s.normalizeTerm(ctx, i, expr.At(i))
		if err != nil {
			return operator.Expression{}, Stats{}, err
		}
		output = output.Concat(out)
		total.add(st)
	}
	return output, total, nil
}

func (s *Service) normalizeTerm(ctx context.Context, index int, term operator.Term) (operator.Expression, Stats, error) {
	var stats Stats
	out, err := rewrite.Trace(operator.NewExpression(term), func(e rewrite.Event) error {
		if err := s.admit(ctx, e.Index, index); err != nil {
			return err
		}
		stats.record(e.Site.Kind)
		return nil
	})
	if err != nil {
		return operator.Expression{}, Stats{}, err
	}
	return out, stats, nil
}

// admit decides whether step number index may be kept.
func (s *Service) admit(ctx context.Context, index, term int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("normal ordering interrupted: %w", err)
	}
	if s.cfg.MaxSteps > 0 && index > s.cfg.MaxSteps {
		return &StepLimitError{Limit: s.cfg.MaxSteps, Term: term}
	}
	return nil
}
