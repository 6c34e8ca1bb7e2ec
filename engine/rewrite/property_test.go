package rewrite_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/normorder/engine/operator"
	"github.com/compozy/normorder/engine/rewrite"
	"github.com/compozy/normorder/pkg/notation"
)

var propertyNames = []string{"a", "c", "ads", "cds", "a1f", "c1f", "a2s", "c2s", "h"}

func randomExpression(r *rand.Rand) operator.Expression {
	terms := make([]operator.Term, 1+r.Intn(3))
	for i := range terms {
		factors := make([]operator.Factor, 1+r.Intn(5))
		for j := range factors {
			name := propertyNames[r.Intn(len(propertyNames))]
			operand := string(rune('k'+r.Intn(4))) + string(rune('0'+r.Intn(3)))
			factors[j] = operator.MustOperator(name, operand)
		}
		sign := operator.Plus
		if r.Intn(2) == 0 {
			sign = operator.Minus
		}
		terms[i] = operator.NewTerm(sign, factors...)
	}
	return operator.NewExpression(terms...)
}

func TestNormalOrderProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	samples := make([]operator.Expression, 200)
	for i := range samples {
		samples[i] = randomExpression(r)
	}

	t.Run("Should lower the disorder of every rewritten term", func(t *testing.T) {
		for _, expr := range samples {
			_, err := rewrite.Trace(expr, func(e rewrite.Event) error {
				before := rewrite.Disorder(e.Before.At(e.Site.Term))
				added := e.After.Len() - e.Before.Len() + 1
				for k := 0; k < added; k++ {
					after := rewrite.Disorder(e.After.At(e.Site.Term + k))
					assert.Less(t, after, before, "step %d of %s", e.Index, e.Before)
				}
				return nil
			})
			require.NoError(t, err)
		}
	})

	t.Run("Should leave no adjacent inversion", func(t *testing.T) {
		for _, expr := range samples {
			out := rewrite.NormalOrder(expr)
			assert.Zero(t, rewrite.AdjacentInversions(out), expr.String())
			_, ok := rewrite.Find(out)
			assert.False(t, ok)
		}
	})

	t.Run("Should be idempotent", func(t *testing.T) {
		for _, expr := range samples {
			once := rewrite.NormalOrder(expr)
			twice := rewrite.NormalOrder(once)
			assert.True(t, once.Equal(twice), expr.String())
		}
	})

	t.Run("Should round-trip through the printer", func(t *testing.T) {
		for _, expr := range samples {
			out := rewrite.NormalOrder(expr)
			for _, layout := range []notation.Layout{notation.SingleLine, notation.MultiLine} {
				printed := notation.Format(out, layout)
				parsed, err := notation.Parse(printed)
				require.NoError(t, err, printed)
				assert.Equal(t, printed, notation.Format(parsed, layout))
			}
		}
	})

	t.Run("Should not mutate the input", func(t *testing.T) {
		for _, expr := range samples {
			before := expr.String()
			rewrite.NormalOrder(expr)
			assert.Equal(t, before, expr.String())
		}
	})

	t.Run("Should add exactly one term per contraction", func(t *testing.T) {
		for _, expr := range samples {
			_, err := rewrite.Trace(expr, func(e rewrite.Event) error {
				grown := e.After.Len() - e.Before.Len()
				switch e.Site.Kind {
				case rewrite.Swap:
					assert.Equal(t, 0, grown)
				case rewrite.Contract:
					assert.Equal(t, 1, grown)
				}
				return nil
			})
			require.NoError(t, err)
		}
	})
}

func TestAdjacentInversions(t *testing.T) {
	t.Run("Should count adjacent annihilator-constructor pairs across terms", func(t *testing.T) {
		expr := mustParse(t, "a[k].c[m].a[j].c[n] + h[x].cds[y]")
		assert.Equal(t, 3, rewrite.AdjacentInversions(expr))
	})

	t.Run("Should count disordered pairs within a term", func(t *testing.T) {
		assert.Equal(t, 4, rewrite.Disorder(mustTerm(t, "a[k2].a[k1].c[p1].c[p2]")))
		assert.Equal(t, 0, rewrite.Disorder(mustTerm(t, "c[p1].a[k1]")))
	})
}
