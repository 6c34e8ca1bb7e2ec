package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/compozy/normorder/engine/operator"
	"github.com/compozy/normorder/engine/ordering"
	"github.com/compozy/normorder/engine/rewrite"
	"github.com/compozy/normorder/engine/selftest"
	"github.com/compozy/normorder/pkg/config"
	"github.com/compozy/normorder/pkg/notation"
)

// isRunningInCI checks if the command is running in a CI environment
func isRunningInCI() bool {
	for _, name := range []string{"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// ShouldUseColor determines if colored output should be written to out.
func ShouldUseColor(out io.Writer, cfg *config.Config) bool {
	if cfg != nil && cfg.CLI.NoColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	if isRunningInCI() {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

type styles struct {
	delta    lipgloss.Style
	negative lipgloss.Style
	pass     lipgloss.Style
	fail     lipgloss.Style
	dim      lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		delta:    r.NewStyle().Foreground(lipgloss.Color("39")),
		negative: r.NewStyle().Foreground(lipgloss.Color("204")),
		pass:     r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		fail:     r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		dim:      r.NewStyle().Faint(true),
	}
}

// renderer writes command results in the configured cli.format.
type renderer struct {
	out    io.Writer
	format string
	color  bool
	styles styles
}

func newRenderer(cmd *cobra.Command, cfg *config.Config) *renderer {
	out := cmd.OutOrStdout()
	format := config.FormatText
	if cfg != nil && cfg.CLI.Format != "" {
		format = cfg.CLI.Format
	}
	return &renderer{
		out:    out,
		format: format,
		color:  ShouldUseColor(out, cfg),
		styles: newStyles(out),
	}
}

func (r *renderer) structured() bool {
	return r.format == config.FormatJSON || r.format == config.FormatYAML
}

func (r *renderer) layout() notation.Layout {
	if r.format == config.FormatLine {
		return notation.SingleLine
	}
	return notation.MultiLine
}

func (r *renderer) encode(v any) error {
	switch r.format {
	case config.FormatJSON:
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case config.FormatYAML:
		encoder := yaml.NewEncoder(r.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("format %q is not structured", r.format)
	}
}

func (r *renderer) paint(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

// expression prints expr in the renderer layout, highlighting delta and
// negative terms when color is enabled.
func (r *renderer) expression(expr operator.Expression, layout notation.Layout) string {
	parts := make([]string, expr.Len())
	for i, term := range expr.Terms() {
		s := term.String()
		switch {
		case term.Len() > 0 && isDelta(term.At(0)):
			s = r.paint(r.styles.delta, s)
		case term.Sign() == operator.Minus:
			s = r.paint(r.styles.negative, s)
		}
		parts[i] = s
	}
	return strings.Join(parts, layout.Separator())
}

func isDelta(f operator.Factor) bool {
	_, ok := f.(operator.Delta)
	return ok
}

type resultView struct {
	RunID    string         `json:"run_id"   yaml:"run_id"`
	Input    string         `json:"input"    yaml:"input"`
	Output   string         `json:"output"   yaml:"output"`
	Terms    []string       `json:"terms"    yaml:"terms"`
	Stats    ordering.Stats `json:"stats"    yaml:"stats"`
	Cached   bool           `json:"cached"   yaml:"cached"`
	Duration string         `json:"duration" yaml:"duration"`
}

func newResultView(res *ordering.Result) resultView {
	return resultView{
		RunID:    res.RunID,
		Input:    notation.Format(res.Input, notation.SingleLine),
		Output:   notation.Format(res.Output, notation.SingleLine),
		Terms:    notation.TermStrings(res.Output),
		Stats:    res.Stats,
		Cached:   res.Cached,
		Duration: res.Duration.Round(time.Microsecond).String(),
	}
}

func (r *renderer) result(res *ordering.Result) error {
	if r.structured() {
		return r.encode(newResultView(res))
	}
	_, err := fmt.Fprintln(r.out, r.expression(res.Output, r.layout()))
	return err
}

type stepView struct {
	Index      int    `json:"index"      yaml:"index"`
	Kind       string `json:"kind"       yaml:"kind"`
	Term       int    `json:"term"       yaml:"term"`
	Factor     int    `json:"factor"     yaml:"factor"`
	Expression string `json:"expression" yaml:"expression"`
}

func newStepView(e rewrite.Event) stepView {
	return stepView{
		Index:      e.Index,
		Kind:       e.Site.Kind.String(),
		Term:       e.Site.Term,
		Factor:     e.Site.Factor,
		Expression: notation.Format(e.After, notation.SingleLine),
	}
}

type traceView struct {
	resultView `yaml:",inline"`
	Steps      []stepView `json:"steps" yaml:"steps"`
}

func (r *renderer) trace(res *ordering.Result, events []rewrite.Event) error {
	if r.structured() {
		view := traceView{resultView: newResultView(res), Steps: make([]stepView, len(events))}
		for i, e := range events {
			view.Steps[i] = newStepView(e)
		}
		return r.encode(view)
	}
	for _, e := range events {
		label := fmt.Sprintf("%d %s t%d:f%d", e.Index, e.Site.Kind, e.Site.Term, e.Site.Factor)
		if _, err := fmt.Fprintf(r.out, "%s  %s\n", r.paint(r.styles.dim, label), r.expression(e.After, notation.SingleLine)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.out, "= %s\n", r.expression(res.Output, notation.SingleLine))
	return err
}

type batchView struct {
	resultView `yaml:",inline"`
	Line       int `json:"line" yaml:"line"`
}

func (r *renderer) batch(results []*ordering.Result, lines []int) error {
	if r.structured() {
		views := make([]batchView, len(results))
		for i, res := range results {
			views[i] = batchView{resultView: newResultView(res), Line: lines[i]}
		}
		return r.encode(views)
	}
	for i, res := range results {
		if r.format == config.FormatLine {
			if _, err := fmt.Fprintln(r.out, r.expression(res.Output, notation.SingleLine)); err != nil {
				return err
			}
			continue
		}
		header := fmt.Sprintf("# %d: %s", lines[i], notation.Format(res.Input, notation.SingleLine))
		if _, err := fmt.Fprintf(r.out, "%s\n%s\n", r.paint(r.styles.dim, header), r.expression(res.Output, notation.MultiLine)); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) report(report *selftest.Report) error {
	if r.structured() {
		return r.encode(report)
	}
	for _, res := range report.Results {
		var err error
		if res.Passed {
			_, err = fmt.Fprintf(r.out, "%s %s\n", r.paint(r.styles.pass, "PASS"), res.Name)
		} else {
			_, err = fmt.Fprintf(r.out, "%s %s: %s\n", r.paint(r.styles.fail, "FAIL"), res.Name, res.Error)
		}
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.out, "%d passed, %d failed\n", report.Passed, report.Failed)
	return err
}
