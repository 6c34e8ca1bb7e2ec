package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/romdo/go-debounce"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/compozy/normorder/engine/operator"
	"github.com/compozy/normorder/engine/ordering"
	"github.com/compozy/normorder/pkg/config"
	"github.com/compozy/normorder/pkg/logger"
	"github.com/compozy/normorder/pkg/notation"
)

const (
	stdinInput = "-"

	batchDebounce = 100 * time.Millisecond
	batchMaxWait  = time.Second
)

// appFS is the file system batch input is read from.
var appFS afero.Fs = afero.NewOsFs()

// BatchCmd normal-orders one expression per line of an input file.
func BatchCmd() *cobra.Command {
	var (
		input string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "batch --input FILE",
		Short: "Normal-order every expression of a file, one per line",
		Long: `Reads one expression per line. Blank lines and lines starting with '#' are
skipped. Use "-" to read from standard input. With --watch the file is
processed again whenever it changes, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch {
				return runBatchWatch(cmd, input)
			}
			svc, cfg, err := newService(cmd.Context())
			if err != nil {
				return err
			}
			return runBatch(cmd.Context(), newRenderer(cmd, cfg), svc, cmd.InOrStdin(), input)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "File with one expression per line (- for stdin)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Process the file again whenever it changes")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

type batchInput struct {
	exprs []operator.Expression
	lines []int
}

// parseBatch parses data line by line. The whole input is rejected when any
// line fails to parse.
func parseBatch(source string, data []byte) (*batchInput, error) {
	in := &batchInput{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		expr, err := notation.Parse(text)
		if err != nil {
			return nil, &InputError{Source: source, Line: line, Cause: err}
		}
		in.exprs = append(in.exprs, expr)
		in.lines = append(in.lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return in, nil
}

func readBatch(stdin io.Reader, path string) ([]byte, error) {
	if path == stdinInput {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return data, nil
	}
	data, err := afero.ReadFile(appFS, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch input: %w", err)
	}
	return data, nil
}

func runBatch(ctx context.Context, r *renderer, svc *ordering.Service, stdin io.Reader, path string) error {
	data, err := readBatch(stdin, path)
	if err != nil {
		return err
	}
	in, err := parseBatch(path, data)
	if err != nil {
		return err
	}
	results, err := svc.NormalizeAll(ctx, in.exprs)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("batch processed", "input", path, "expressions", len(results))
	return r.batch(results, in.lines)
}

func runBatchWatch(cmd *cobra.Command, path string) error {
	if path == stdinInput {
		return errors.New("--watch requires a file input")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.FromContext(ctx)

	svc, cfg, err := newService(ctx)
	if err != nil {
		return err
	}
	var current atomic.Pointer[ordering.Service]
	current.Store(svc)
	config.ManagerFromContext(ctx).OnChange(func(next *config.Config) {
		svc, err := ordering.NewService(next.Engine)
		if err != nil {
			log.Warn("keeping previous engine settings", "error", err)
			return
		}
		current.Store(svc)
		log.Info("engine settings reloaded", "workers", next.Engine.Workers, "max_steps", next.Engine.MaxSteps)
	})

	r := newRenderer(cmd, cfg)
	var mu sync.Mutex
	process := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := runBatch(ctx, r, current.Load(), cmd.InOrStdin(), path); err != nil {
			log.Error("batch failed", "input", path, "error", err)
		}
	}
	process()

	watcher, err := config.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	debounced, cancel := debounce.NewWithMaxWait(batchDebounce, batchMaxWait, process)
	defer cancel()
	watcher.OnChange(debounced)
	if err := watcher.Watch(ctx, path); err != nil {
		return err
	}
	log.Info("watching batch input", "input", path)
	<-ctx.Done()
	cancel()
	// wait for a run already in flight
	mu.Lock()
	defer mu.Unlock()
	return nil
}
