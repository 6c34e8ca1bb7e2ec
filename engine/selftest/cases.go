package selftest

import (
	"context"
	"fmt"

	"github.com/compozy/normorder/engine/operator"
	"github.com/compozy/normorder/engine/ordering"
	"github.com/compozy/normorder/engine/rewrite"
	"github.com/compozy/normorder/pkg/notation"
)

// UsageExample is the expression shown by the command line usage text.
const UsageExample = "ad1s[k1].ad1s[k2].ah1s[p1mu].cd1s[p1m].ad1s[p2m].cd1s[q1].cd1s[q2].ch1s[q3]"

// Case is one built-in check.
type Case struct {
	Name  string
	Check func(ctx context.Context, svc *ordering.Service) error
}

// Cases returns the built-in scenario table.
func Cases() []Case {
	return []Case{
		parseCase("c[k1].h[p1mu] + a[k1].ad2f[p2]", "c[k1].h[p1mu] + a[k1].ad2f[p2]"),
		parseCase("-c[k1]", "-c[k1]"),
		parseCase("c1ds[p1m].a1ds[k1]+cds[p1m].ads[k2]", "c1ds[p1m].a1ds[k1] + cds[p1m].ads[k2]"),
		parseCase("", ""),
		classifyCase("c", operator.Constructor),
		classifyCase("c2df", operator.Constructor),
		classifyCase("a", operator.Annihilator),
		classifyCase("h", operator.Annihilator),
		relatedCase("cd2f[p2]", "ad2f[p1]", true),
		relatedCase("ad2f[p1]", "cd2f[p1]", true),
		relatedCase("ad2f[p1]", "ad2f[p1]", false),
		relatedCase("h[p1]", "a[p1]", false),
		spinorCase("cd2f", true),
		spinorCase("ad1s", false),
		commutesCase("a1ds[p1m]", "c1ds[k]", false),
		commutesCase("a2ds[p1m]", "c1ds[k]", true),
		findCase("h[a].h[b] + a1ds[k1].c2ds[p1m]", rewrite.Site{Term: 1, Factor: 0, Kind: rewrite.Swap}, true),
		findCase("a1ds[k1].c1ds[p1m] + h[a].h[b]", rewrite.Site{Term: 0, Factor: 0, Kind: rewrite.Contract}, true),
		findCase("h[a].h[b]", rewrite.Site{}, false),
		applyCase("h[p].a[q].c[r].h[s]", 1, rewrite.Swap, "h[p].c[r].a[q].h[s]"),
		applyCase("a[k].c[m]", 0, rewrite.Contract, "DiracDelta[-k+m] + c[m].a[k]"),
		applyCase("h[a].h[b].h[c].h[d]", 1, rewrite.Contract, "DiracDelta[-b+c].h[a].h[d] + h[a].h[c].h[b].h[d]"),
		stepCase("a1ds[k1].c2ds[p1m]", "c2ds[p1m].a1ds[k1]"),
		stepCase("a1ds[k1].c1ds[p1m]", "DiracDelta[-k1+p1m] + c1ds[p1m].a1ds[k1]"),
		stepCase("a[k2].a[k1].c[p1].c[p2]", "DiracDelta[-k1+p1].a[k2].c[p2] + a[k2].c[p1].a[k1].c[p2]"),
		stepCase("h[a].h[b]", ""),
		normalizeCase("ads[k2].cds[p1m]", "DiracDelta[-k2+p1m] +\ncds[p1m].ads[k2]"),
		normalizeCase("a1ds[k1].c2ds[p1m]", "c2ds[p1m].a1ds[k1]"),
		normalizeCase("h[a].h[b]", "h[a].h[b]"),
		normalizeCase("-adf[k].cdf[m]", "DiracDelta[-k+m] +\ncdf[m].adf[k]"),
		statsCase(UsageExample, ordering.Stats{Terms: 1, Steps: 100, Swaps: 47, Contractions: 53}, 54),
	}
}

func parseCase(input, want string) Case {
	return Case{
		Name: fmt.Sprintf("parse %q", input),
		Check: func(context.Context, *ordering.Service) error {
			expr, err := notation.Parse(input)
			if err != nil {
				return err
			}
			return expect(notation.Format(expr, notation.SingleLine), want)
		},
	}
}

func classifyCase(name string, want operator.Kind) Case {
	return Case{
		Name: fmt.Sprintf("classify %s", name),
		Check: func(context.Context, *ordering.Service) error {
			kind, err := operator.Classify(name)
			if err != nil {
				return err
			}
			return expect(kind.String(), want.String())
		},
	}
}

func relatedCase(left, right string, want bool) Case {
	return Case{
		Name: fmt.Sprintf("related %s %s", left, right),
		Check: func(context.Context, *ordering.Service) error {
			a, b, err := operatorPair(left, right)
			if err != nil {
				return err
			}
			return expect(operator.Related(a, b), want)
		},
	}
}

func spinorCase(name string, want bool) Case {
	return Case{
		Name: fmt.Sprintf("spinor %s", name),
		Check: func(context.Context, *ordering.Service) error {
			got, err := operator.IsSpinor(name)
			if err != nil {
				return err
			}
			return expect(got, want)
		},
	}
}

func commutesCase(left, right string, want bool) Case {
	return Case{
		Name: fmt.Sprintf("commutes %s %s", left, right),
		Check: func(context.Context, *ordering.Service) error {
			a, b, err := operatorPair(left, right)
			if err != nil {
				return err
			}
			return expect(rewrite.Commutes(a, b), want)
		},
	}
}

func findCase(input string, want rewrite.Site, found bool) Case {
	return Case{
		Name: fmt.Sprintf("find %q", input),
		Check: func(context.Context, *ordering.Service) error {
			expr, err := notation.Parse(input)
			if err != nil {
				return err
			}
			site, ok := rewrite.Find(expr)
			if err := expect(ok, found); err != nil || !ok {
				return err
			}
			return expect(site, want)
		},
	}
}

func applyCase(input string, index int, kind rewrite.Kind, want string) Case {
	return Case{
		Name: fmt.Sprintf("%s %q at %d", kind, input, index),
		Check: func(context.Context, *ordering.Service) error {
			term, err := notation.ParseTerm(input)
			if err != nil {
				return err
			}
			out := operator.NewExpression(rewrite.Apply(term, index, kind)...)
			return expect(notation.Format(out, notation.SingleLine), want)
		},
	}
}

// stepCase expects want after one step; an empty want means no step exists.
func stepCase(input, want string) Case {
	return Case{
		Name: fmt.Sprintf("step %q", input),
		Check: func(context.Context, *ordering.Service) error {
			expr, err := notation.Parse(input)
			if err != nil {
				return err
			}
			next, _, ok := rewrite.Step(expr)
			if want == "" {
				return expect(ok, false)
			}
			if err := expect(ok, true); err != nil {
				return err
			}
			return expect(notation.Format(next, notation.SingleLine), want)
		},
	}
}

func normalizeCase(input, want string) Case {
	return Case{
		Name: fmt.Sprintf("normal order %q", input),
		Check: func(ctx context.Context, svc *ordering.Service) error {
			res, err := svc.NormalizeString(ctx, input)
			if err != nil {
				return err
			}
			return expect(notation.Format(res.Output, notation.MultiLine), want)
		},
	}
}

func statsCase(input string, want ordering.Stats, terms int) Case {
	return Case{
		Name: fmt.Sprintf("normal order statistics %q", input),
		Check: func(ctx context.Context, svc *ordering.Service) error {
			res, err := svc.NormalizeString(ctx, input)
			if err != nil {
				return err
			}
			if n := rewrite.AdjacentInversions(res.Output); n != 0 {
				return fmt.Errorf("%d inversions left", n)
			}
			if err := expect(res.Output.Len(), terms); err != nil {
				return err
			}
			return expect(res.Stats, want)
		},
	}
}

func operatorPair(left, right string) (operator.Operator, operator.Operator, error) {
	var ops [2]operator.Operator
	for i, s := range []string{left, right} {
		f, err := notation.ParseFactor(s)
		if err != nil {
			return operator.Operator{}, operator.Operator{}, err
		}
		op, ok := f.(operator.Operator)
		if !ok {
			return operator.Operator{}, operator.Operator{}, fmt.Errorf("%s is not an operator", s)
		}
		ops[i] = op
	}
	return ops[0], ops[1], nil
}

func expect[T comparable](got, want T) error {
	if got != want {
		return fmt.Errorf("got %v, want %v", got, want)
	}
	return nil
}
