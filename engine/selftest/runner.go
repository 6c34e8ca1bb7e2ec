package selftest

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/normorder/engine/ordering"
	"github.com/compozy/normorder/pkg/logger"
)

// CaseResult is the outcome of one Case.
type CaseResult struct {
	Name     string        `json:"name"            yaml:"name"`
	Passed   bool          `json:"passed"          yaml:"passed"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration"        yaml:"duration"`
}

// Report summarises a self-test run.
type Report struct {
	Passed  int          `json:"passed"  yaml:"passed"`
	Failed  int          `json:"failed"  yaml:"failed"`
	Results []CaseResult `json:"results" yaml:"results"`
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Run evaluates every built-in case against svc. It stops early only when
// ctx is canceled, in which case the error is returned with the partial report.
func Run(ctx context.Context, svc *ordering.Service) (*Report, error) {
	return RunCases(ctx, svc, Cases())
}

// RunCases evaluates the given cases in order.
func RunCases(ctx context.Context, svc *ordering.Service, cases []Case) (*Report, error) {
	log := logger.FromContext(ctx)
	report := &Report{Results: make([]CaseResult, 0, len(cases))}
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("self-test interrupted: %w", err)
		}
		start := time.Now()
		err := runCase(ctx, svc, c)
		result := CaseResult{Name: c.Name, Passed: err == nil, Duration: time.Since(start)}
		if err != nil {
			result.Error = err.Error()
			report.Failed++
			log.Debug("self-test case failed", "case", c.Name, "error", err)
		} else {
			report.Passed++
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func runCase(ctx context.Context, svc *ordering.Service, c Case) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Check(ctx, svc)
}
