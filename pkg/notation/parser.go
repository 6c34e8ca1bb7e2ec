package notation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/compozy/normorder/engine/operator"
)

var (
	// identifiers are letters, digits and '_' in any script
	factorPattern = regexp.MustCompile(`^([\p{L}\p{N}_]+)\[([\p{L}\p{N}_]+)\]$`)
	deltaPattern  = regexp.MustCompile(`^` + operator.DeltaName + `\[([+-]?[\p{L}\p{N}_]+(?:[+-][\p{L}\p{N}_]+)*)\]$`)
)

// segment is a slice of the input together with its byte offset.
type segment struct {
	text   string
	offset int
}

// Parse reads an expression of the form
//
//	Term ( '+' Term )*
//
// Terms are split on '+' outside brackets, so printed delta factors parse
// back. Blank input is the empty expression.
func Parse(input string) (operator.Expression, error) {
	if strings.TrimSpace(input) == "" {
		return operator.NewExpression(), nil
	}
	parts := split(segment{text: input}, '+')
	terms := make([]operator.Term, 0, len(parts))
	for _, part := range parts {
		term, err := parseTerm(input, trim(part))
		if err != nil {
			return operator.Expression{}, err
		}
		terms = append(terms, term)
	}
	return operator.NewExpression(terms...), nil
}

// ParseTerm reads a single, optionally negated, dot-separated product.
func ParseTerm(input string) (operator.Term, error) {
	return parseTerm(input, segment{text: input})
}

// ParseFactor reads "name[operand]". The reserved name DiracDelta yields a
// delta factor whose operand may be a signed sum of identifiers.
func ParseFactor(input string) (operator.Factor, error) {
	return parseFactor(input, segment{text: input})
}

func parseTerm(input string, seg segment) (operator.Term, error) {
	if seg.text == "" {
		return operator.Term{}, &ParseError{Input: input, Fragment: seg.text, Offset: seg.offset, Reason: "empty term"}
	}
	sign := operator.Plus
	body := seg
	if strings.HasPrefix(body.text, "-") {
		sign = operator.Minus
		body = segment{text: body.text[1:], offset: body.offset + 1}
	}
	if body.text == "" {
		return operator.Term{}, &ParseError{Input: input, Fragment: seg.text, Offset: seg.offset, Reason: "term has no factors"}
	}
	if i := strings.IndexFunc(body.text, unicode.IsSpace); i >= 0 {
		return operator.Term{}, &ParseError{
			Input:    input,
			Fragment: seg.text,
			Offset:   body.offset + i,
			Reason:   "whitespace inside term",
		}
	}
	parts := split(body, '.')
	factors := make([]operator.Factor, 0, len(parts))
	for _, part := range parts {
		f, err := parseFactor(input, part)
		if err != nil {
			return operator.Term{}, err
		}
		factors = append(factors, f)
	}
	return operator.NewTerm(sign, factors...), nil
}

func parseFactor(input string, seg segment) (operator.Factor, error) {
	if m := deltaPattern.FindStringSubmatch(seg.text); m != nil {
		d, err := operator.NewDelta(m[1])
		if err != nil {
			return nil, &ParseError{Input: input, Fragment: seg.text, Offset: seg.offset, Reason: "invalid delta", Cause: err}
		}
		return d, nil
	}
	m := factorPattern.FindStringSubmatch(seg.text)
	if m == nil {
		return nil, &ParseError{
			Input:    input,
			Fragment: seg.text,
			Offset:   seg.offset,
			Reason:   "factor must look like name[operand]",
		}
	}
	op, err := operator.NewOperator(m[1], m[2])
	if err != nil {
		return nil, &ParseError{Input: input, Fragment: seg.text, Offset: seg.offset, Reason: "invalid operator", Cause: err}
	}
	return op, nil
}

// split cuts seg on sep at bracket depth zero.
func split(seg segment, sep byte) []segment {
	var out []segment
	depth, start := 0, 0
	for i := 0; i < len(seg.text); i++ {
		switch seg.text[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				out = append(out, segment{text: seg.text[start:i], offset: seg.offset + start})
				start = i + 1
			}
		}
	}
	return append(out, segment{text: seg.text[start:], offset: seg.offset + start})
}

func trim(seg segment) segment {
	left := strings.TrimLeftFunc(seg.text, unicode.IsSpace)
	return segment{
		text:   strings.TrimRightFunc(left, unicode.IsSpace),
		offset: seg.offset + len(seg.text) - len(left),
	}
}
