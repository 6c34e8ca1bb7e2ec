package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/normorder/pkg/notation"
)

const batchFile = `# scattering terms
a1ds[k1].c2ds[p1m]

h[a].h[b]
`

func TestBatchCmd(t *testing.T) {
	t.Run("Should normal-order every expression line", func(t *testing.T) {
		fs := useMemFS(t)
		require.NoError(t, afero.WriteFile(fs, "input.txt", []byte(batchFile), 0o600))
		out, err := execute(t, nil, "--format", "line", "batch", "--input", "input.txt")
		require.NoError(t, err)
		assert.Equal(t, "c2ds[p1m].a1ds[k1]\nh[a].h[b]\n", out)
	})

	t.Run("Should label text output with line numbers", func(t *testing.T) {
		fs := useMemFS(t)
		require.NoError(t, afero.WriteFile(fs, "input.txt", []byte(batchFile), 0o600))
		out, err := execute(t, nil, "batch", "-i", "input.txt")
		require.NoError(t, err)
		assert.Equal(t, "# 2: a1ds[k1].c2ds[p1m]\nc2ds[p1m].a1ds[k1]\n# 4: h[a].h[b]\nh[a].h[b]\n", out)
	})

	t.Run("Should read standard input", func(t *testing.T) {
		out, err := execute(t, strings.NewReader("a[k].c[m]\n"), "--format", "line", "batch", "--input", "-")
		require.NoError(t, err)
		assert.Equal(t, "DiracDelta[-k+m] + c[m].a[k]\n", out)
	})

	t.Run("Should encode results with their lines as JSON", func(t *testing.T) {
		fs := useMemFS(t)
		require.NoError(t, afero.WriteFile(fs, "input.txt", []byte(batchFile), 0o600))
		out, err := execute(t, nil, "--format", "json", "batch", "--input", "input.txt")
		require.NoError(t, err)
		var views []struct {
			Line   int    `json:"line"`
			Output string `json:"output"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &views))
		require.Len(t, views, 2)
		assert.Equal(t, 2, views[0].Line)
		assert.Equal(t, "c2ds[p1m].a1ds[k1]", views[0].Output)
		assert.Equal(t, 4, views[1].Line)
	})

	t.Run("Should report the malformed line", func(t *testing.T) {
		fs := useMemFS(t)
		require.NoError(t, afero.WriteFile(fs, "input.txt", []byte("a[k]\n\na[k] + \n"), 0o600))
		_, err := execute(t, nil, "batch", "--input", "input.txt")
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.ErrorIs(t, err, notation.ErrParse)
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr)
		assert.Equal(t, 3, inputErr.Line)
		assert.True(t, strings.HasPrefix(err.Error(), "input.txt:3: "))
	})

	t.Run("Should fail on a missing file", func(t *testing.T) {
		useMemFS(t)
		_, err := execute(t, nil, "batch", "--input", "missing.txt")
		assert.ErrorContains(t, err, "failed to read batch input")
	})

	t.Run("Should require an input", func(t *testing.T) {
		_, err := execute(t, nil, "batch")
		assert.Error(t, err)
	})

	t.Run("Should refuse to watch standard input", func(t *testing.T) {
		_, err := execute(t, nil, "batch", "--input", "-", "--watch")
		assert.ErrorContains(t, err, "--watch requires a file input")
	})
}

func TestBatchCmd_Watch(t *testing.T) {
	t.Run("Should process the file again after it changes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "input.txt")
		require.NoError(t, os.WriteFile(path, []byte("a1ds[k1].c2ds[p1m]\n"), 0o600))

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		cmd := RootCmd()
		out := &syncBuffer{}
		cmd.SetOut(out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(append(globalArgs(t, ""), "--format", "line", "batch", "--input", path, "--watch"))
		done := make(chan error, 1)
		go func() { done <- cmd.ExecuteContext(ctx) }()

		require.Eventually(t, func() bool {
			return strings.Contains(out.String(), "c2ds[p1m].a1ds[k1]\n")
		}, 5*time.Second, 20*time.Millisecond)

		// the watcher may not be registered yet; keep rewriting until the change is seen
		require.Eventually(t, func() bool {
			_ = os.WriteFile(path, []byte("a[k].c[m]\n"), 0o600)
			return strings.Contains(out.String(), "DiracDelta[-k+m] + c[m].a[k]\n")
		}, 5*time.Second, 200*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not stop after cancellation")
		}
	})
}

func TestParseBatch(t *testing.T) {
	t.Run("Should skip comments and blank lines", func(t *testing.T) {
		in, err := parseBatch("input", []byte("  # note\n\n  h[a]  \r\nc[k]\n"))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 4}, in.lines)
		require.Len(t, in.exprs, 2)
		assert.Equal(t, "h[a]", notation.Format(in.exprs[0], notation.SingleLine))
	})

	t.Run("Should accept an empty input", func(t *testing.T) {
		in, err := parseBatch("input", nil)
		require.NoError(t, err)
		assert.Empty(t, in.exprs)
	})
}

func TestInputError(t *testing.T) {
	t.Run("Should match the sentinel and unwrap the cause", func(t *testing.T) {
		cause := errors.New("bad")
		err := &InputError{Source: "f", Line: 2, Cause: cause}
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "f:2: bad", err.Error())
	})
}
