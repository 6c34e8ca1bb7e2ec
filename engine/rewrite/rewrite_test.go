package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/normorder/engine/operator"
	"github.com/compozy/normorder/engine/rewrite"
	"github.com/compozy/normorder/pkg/notation"
)

func mustParse(t *testing.T, s string) operator.Expression {
	t.Helper()
	expr, err := notation.Parse(s)
	require.NoError(t, err)
	return expr
}

func mustTerm(t *testing.T, s string) operator.Term {
	t.Helper()
	term, err := notation.ParseTerm(s)
	require.NoError(t, err)
	return term
}

func line(expr operator.Expression) string {
	return notation.Format(expr, notation.SingleLine)
}

func TestFindInTerm(t *testing.T) {
	cases := []struct {
		input string
		index int
		found bool
	}{
		{"a1ds[k1].c2ds[p1m]", 0, true},
		{"a1ds[k1].c2ds[p1m].a1ds[k1].c2ds[p1m]", 0, true},
		{"a1df[k2].a1ds[k1].c2ds[p1m]", 1, true},
		{"c1ds[k1].a2ds[p1m]", 0, false},
		{"h[a].h[b]", 0, false},
	}
	for _, tc := range cases {
		t.Run("Should locate the leftmost inversion in "+tc.input, func(t *testing.T) {
			index, found := rewrite.FindInTerm(mustTerm(t, tc.input))
			assert.Equal(t, tc.found, found)
			if tc.found {
				assert.Equal(t, tc.index, index)
			}
		})
	}

	t.Run("Should skip delta factors", func(t *testing.T) {
		a := operator.MustOperator("a", "k")
		c := operator.MustOperator("c", "m")
		term := operator.NewTerm(operator.Plus, a, operator.Contract(a, c), c)
		_, found := rewrite.FindInTerm(term)
		assert.False(t, found)
	})
}

func TestFind(t *testing.T) {
	t.Run("Should classify unrelated fields as swap", func(t *testing.T) {
		site, ok := rewrite.Find(mustParse(t, "h[a].h[b] + a1ds[k1].c2ds[p1m]"))
		require.True(t, ok)
		assert.Equal(t, rewrite.Site{Term: 1, Factor: 0, Kind: rewrite.Swap}, site)
	})

	t.Run("Should classify the same field as contract", func(t *testing.T) {
		site, ok := rewrite.Find(mustParse(t, "a1ds[k1].c1ds[p1m] + h[a].h[b]"))
		require.True(t, ok)
		assert.Equal(t, rewrite.Site{Term: 0, Factor: 0, Kind: rewrite.Contract}, site)
	})

	t.Run("Should report none on ordered input", func(t *testing.T) {
		_, ok := rewrite.Find(mustParse(t, "h[a].h[b]"))
		assert.False(t, ok)
		_, ok = rewrite.Find(operator.NewExpression())
		assert.False(t, ok)
	})
}

func TestCommutes(t *testing.T) {
	t.Run("Should commute only across different fields", func(t *testing.T) {
		assert.False(t, rewrite.Commutes(operator.MustOperator("a1ds", "p1m"), operator.MustOperator("c1ds", "k")))
		assert.True(t, rewrite.Commutes(operator.MustOperator("a2ds", "p1m"), operator.MustOperator("c1ds", "k")))
	})
}

func TestApply(t *testing.T) {
	t.Run("Should swap commuting factors in place", func(t *testing.T) {
		out := rewrite.Apply(mustTerm(t, "h[p].a[q].c[r].h[s]"), 1, rewrite.Swap)
		assert.Equal(t, "h[p].c[r].a[q].h[s]", line(operator.NewExpression(out...)))
	})

	t.Run("Should keep the sign on swap", func(t *testing.T) {
		out := rewrite.Apply(mustTerm(t, "-a1f[q].c2f[r]"), 0, rewrite.Swap)
		require.Len(t, out, 1)
		assert.Equal(t, "-c2f[r].a1f[q]", out[0].String())
	})

	t.Run("Should contract related factors", func(t *testing.T) {
		out := rewrite.Apply(mustTerm(t, "a[k].c[m]"), 0, rewrite.Contract)
		assert.Equal(t, "DiracDelta[-k+m] + c[m].a[k]", line(operator.NewExpression(out...)))
	})

	t.Run("Should move the delta to the front of the term", func(t *testing.T) {
		out := rewrite.Apply(mustTerm(t, "a[k2].a[k1].c[p1].c[p2]"), 1, rewrite.Contract)
		assert.Equal(t,
			"DiracDelta[-k1+p1].a[k2].c[p2] + a[k2].c[p1].a[k1].c[p2]",
			line(operator.NewExpression(out...)))
	})

	t.Run("Should contract regardless of kind letters", func(t *testing.T) {
		out := rewrite.Apply(mustTerm(t, "h[a].h[b].h[c].h[d]"), 1, rewrite.Contract)
		assert.Equal(t,
			"DiracDelta[-b+c].h[a].h[d] + h[a].h[c].h[b].h[d]",
			line(operator.NewExpression(out...)))
	})

	t.Run("Should flip the swapped branch for spinor constructors", func(t *testing.T) {
		out := rewrite.Apply(mustTerm(t, "adf[k].cdf[m]"), 0, rewrite.Contract)
		require.Len(t, out, 2)
		assert.Equal(t, operator.Plus, out[0].Sign())
		assert.Equal(t, operator.Minus, out[1].Sign())

		out = rewrite.Apply(mustTerm(t, "-adf[k].cdf[m]"), 0, rewrite.Contract)
		assert.Equal(t, operator.Plus, out[0].Sign())
		assert.Equal(t, operator.Plus, out[1].Sign())
	})

	t.Run("Should keep the sign for non-spinor constructors", func(t *testing.T) {
		out := rewrite.Apply(mustTerm(t, "-ads[k].cds[m]"), 0, rewrite.Contract)
		assert.Equal(t, operator.Plus, out[0].Sign())
		assert.Equal(t, operator.Minus, out[1].Sign())
	})

	t.Run("Should not modify the input term", func(t *testing.T) {
		term := mustTerm(t, "a[k].c[m]")
		rewrite.Apply(term, 0, rewrite.Contract)
		assert.Equal(t, "a[k].c[m]", term.String())
	})

	t.Run("Should panic on unknown kinds", func(t *testing.T) {
		assert.Panics(t, func() { rewrite.Apply(mustTerm(t, "a[k].c[m]"), 0, rewrite.Kind(9)) })
	})
}

func TestStep(t *testing.T) {
	t.Run("Should swap unrelated fields", func(t *testing.T) {
		next, site, ok := rewrite.Step(mustParse(t, "a1ds[k1].c2ds[p1m]"))
		require.True(t, ok)
		assert.Equal(t, rewrite.Swap, site.Kind)
		assert.Equal(t, "c2ds[p1m].a1ds[k1]", line(next))
	})

	t.Run("Should contract the same field", func(t *testing.T) {
		next, _, ok := rewrite.Step(mustParse(t, "a1ds[k1].c1ds[p1m]"))
		require.True(t, ok)
		assert.Equal(t, "DiracDelta[-k1+p1m] + c1ds[p1m].a1ds[k1]", line(next))
	})

	t.Run("Should report no step on ordered input", func(t *testing.T) {
		expr := mustParse(t, "h[a].h[b]")
		next, _, ok := rewrite.Step(expr)
		assert.False(t, ok)
		assert.True(t, expr.Equal(next))
	})

	t.Run("Should splice replacement terms in place", func(t *testing.T) {
		next, _, ok := rewrite.Step(mustParse(t, "h[x] + a[k].c[m] + c[p]"))
		require.True(t, ok)
		assert.Equal(t, "h[x] + DiracDelta[-k+m] + c[m].a[k] + c[p]", line(next))
	})
}

func TestNormalOrder(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"Should contract the same field", "ads[k2].cds[p1m]", "DiracDelta[-k2+p1m] +\ncds[p1m].ads[k2]"},
		{"Should only swap different fields", "a1ds[k1].c2ds[p1m]", "c2ds[p1m].a1ds[k1]"},
		{"Should leave annihilator-only input unchanged", "h[a].h[b]", "h[a].h[b]"},
		{
			"Should order a four-factor product",
			"a[k2].a[k1].c[p1].c[p2]",
			"DiracDelta[-k2+p2].DiracDelta[-k1+p1] +\n" +
				"DiracDelta[-k1+p1].c[p2].a[k2] +\n" +
				"DiracDelta[-k1+p2].DiracDelta[-k2+p1] +\n" +
				"DiracDelta[-k2+p1].c[p2].a[k1] +\n" +
				"DiracDelta[-k1+p2].c[p1].a[k2] +\n" +
				"DiracDelta[-k2+p2].c[p1].a[k1] +\n" +
				"c[p1].c[p2].a[k2].a[k1]",
		},
		{"Should return the empty expression unchanged", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := rewrite.NormalOrder(mustParse(t, tc.input))
			assert.Equal(t, tc.want, notation.Format(got, notation.MultiLine))
		})
	}
}

func TestTrace(t *testing.T) {
	t.Run("Should visit every step in order", func(t *testing.T) {
		var events []rewrite.Event
		out, err := rewrite.Trace(mustParse(t, "ads[k2].cds[p1m]"), func(e rewrite.Event) error {
			events = append(events, e)
			return nil
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, 1, events[0].Index)
		assert.Equal(t, "ads[k2].cds[p1m]", line(events[0].Before))
		assert.True(t, out.Equal(events[0].After))
	})

	t.Run("Should stop cleanly on ErrStop", func(t *testing.T) {
		steps := 0
		out, err := rewrite.Trace(mustParse(t, "a[k2].a[k1].c[p1].c[p2]"), func(rewrite.Event) error {
			steps++
			return rewrite.ErrStop
		})
		require.NoError(t, err)
		assert.Equal(t, 1, steps)
		assert.Equal(t, "DiracDelta[-k1+p1].a[k2].c[p2] + a[k2].c[p1].a[k1].c[p2]", line(out))
	})
}
