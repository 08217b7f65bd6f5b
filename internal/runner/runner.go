package runner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/celldown/celldown/pkg/document"
)

// Fetcher is the network capability handed to running scripts via the
// fetch builtin. Swappable so hosts and tests can stub the network.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

// Events are the engine's outward notifications for the view layer.
type Events struct {
	OutputAppended        func(cell *document.Cell, out document.Output)
	ExecutionStateChanged func(cell *document.Cell)
}

type Options struct {
	Fetcher Fetcher
	Events  Events
	Logger  *zap.Logger
	// Dir is the working directory scripts run in. Defaults to the
	// process working directory.
	Dir string
}

// Engine executes code cells as shell scripts against the persistent
// scope. Exactly one run is in flight at a time; the engine enforces this
// itself instead of trusting the host.
type Engine struct {
	mu    sync.Mutex
	scope *Scope

	fetch  Fetcher
	events Events
	logger *zap.Logger
	dir    string
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		scope:  NewScope(),
		fetch:  opts.Fetcher,
		events: opts.Events,
		logger: opts.Logger,
		dir:    opts.Dir,
	}
	if e.fetch == nil {
		e.fetch = HTTPFetcher(nil)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Scope returns the engine-owned persistent scope.
func (e *Engine) Scope() *Scope { return e.scope }

// RunCode executes a single code cell's text. Failures never propagate;
// they are converted into an Error output on the cell. On completion the
// cell is marked executed with the text that just ran.
func (e *Engine) RunCode(ctx context.Context, cell *document.Cell, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runLocked(ctx, cell, text)
}

// RunAll executes every code cell in document order, one after another.
// Text cells are skipped. Cell N completes fully before cell N+1 starts,
// so scope mutations are sequentially consistent across cells.
func (e *Engine) RunAll(ctx context.Context, cells []document.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, snap := range cells {
		if snap.Cell.Kind() != document.CodeKind {
			continue
		}
		e.runLocked(ctx, snap.Cell, snap.Text)
	}
}

// Restart clears the persistent scope and every code cell's outputs and
// execution state. Text-cell rendering modes are untouched.
func (e *Engine) Restart(cells []*document.Cell) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restartLocked(cells)
}

// RestartAndRunAll composes Restart with RunAll under a single run slot.
func (e *Engine) RestartAndRunAll(ctx context.Context, cells []document.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := make([]*document.Cell, len(cells))
	for i, snap := range cells {
		records[i] = snap.Cell
	}
	e.restartLocked(records)

	for _, snap := range cells {
		if snap.Cell.Kind() != document.CodeKind {
			continue
		}
		e.runLocked(ctx, snap.Cell, snap.Text)
	}
}

func (e *Engine) restartLocked(cells []*document.Cell) {
	e.scope.Clear()
	for _, cell := range cells {
		if cell.Kind() != document.CodeKind {
			continue
		}
		cell.ClearOutputs()
		cell.SetOutputVisible(false)
		cell.ResetExecution()
		if e.events.ExecutionStateChanged != nil {
			e.events.ExecutionStateChanged(cell)
		}
	}
	e.logger.Debug("engine restarted")
}

func (e *Engine) runLocked(ctx context.Context, cell *document.Cell, text string) {
	if cell.Kind() != document.CodeKind {
		return
	}

	logger := e.logger.With(zap.String("cell", cell.ID()))
	logger.Debug("running code cell")

	cell.ClearOutputs()
	capt := newCapture(cell, e.events.OutputAppended)

	defer func() {
		if p := recover(); p != nil {
			capt.Flush()
			capt.Error(fmt.Sprintf("panic: %v", p))
			logger.Error("run panicked", zap.Any("panic", p))
		}
		cell.MarkExecuted(text)
		if e.events.ExecutionStateChanged != nil {
			e.events.ExecutionStateChanged(cell)
		}
	}()

	file, err := syntax.NewParser().Parse(strings.NewReader(text), cell.ID())
	if err != nil {
		capt.Error(err.Error())
		return
	}

	env := append(os.Environ(), e.scope.Values()...)
	run, err := interp.New(
		interp.StdIO(strings.NewReader(""), capt.stdout, capt.stderr),
		interp.Env(expand.ListEnviron(env...)),
		interp.Dir(e.dir),
		interp.ExecHandlers(e.capabilities(capt)),
	)
	if err != nil {
		capt.Error(err.Error())
		return
	}

	runErr := run.Run(ctx, file)
	capt.Flush()
	if runErr != nil {
		capt.Error(runErr.Error())
		logger.Debug("run failed", zap.Error(runErr))
	}

	e.harvest(run)
}

// Interpreter bookkeeping that must not leak into the persistent scope.
var scopeExcluded = map[string]bool{
	"IFS":    true,
	"OPTIND": true,
	"PWD":    true,
	"OLDPWD": true,
	"UID":    true,
	"EUID":   true,
	"GID":    true,
}

// harvest copies variables the script set back into the persistent scope.
// The interpreter does not record assignment order, so a run's new names
// enter the scope in name order; names already present keep their slot.
func (e *Engine) harvest(run *interp.Runner) {
	names := make([]string, 0, len(run.Vars))
	for name, v := range run.Vars {
		if scopeExcluded[name] || !v.IsSet() {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e.scope.Set(name, run.Vars[name].String())
	}
}

// capabilities intercepts the builtin capability commands before regular
// command execution: image appends an Image output, fetch invokes the
// network capability and pipes the body to stdout.
func (e *Engine) capabilities(capt *capture) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return next(ctx, args)
			}
			switch args[0] {
			case "image":
				return e.execImage(ctx, capt, args[1:])
			case "fetch":
				return e.execFetch(ctx, args[1:])
			}
			return next(ctx, args)
		}
	}
}

func (e *Engine) execImage(ctx context.Context, capt *capture, args []string) error {
	hc := interp.HandlerCtx(ctx)
	if len(args) < 1 {
		fmt.Fprintln(hc.Stderr, "image: usage: image FILE [MIME]")
		return interp.NewExitStatus(2)
	}

	path := args[0]
	if !filepath.IsAbs(path) {
		path = filepath.Join(hc.Dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(hc.Stderr, "image: "+err.Error())
		return interp.NewExitStatus(1)
	}

	var mime string
	if len(args) > 1 {
		mime = args[1]
	}
	capt.Image(data, mime)
	return nil
}

func (e *Engine) execFetch(ctx context.Context, args []string) error {
	hc := interp.HandlerCtx(ctx)
	if len(args) < 1 {
		fmt.Fprintln(hc.Stderr, "fetch: usage: fetch URL")
		return interp.NewExitStatus(2)
	}

	body, err := e.fetch(ctx, args[0])
	if err != nil {
		fmt.Fprintln(hc.Stderr, "fetch: "+err.Error())
		return interp.NewExitStatus(1)
	}

	_, _ = hc.Stdout.Write(body)
	if len(body) > 0 && body[len(body)-1] != '\n' {
		_, _ = io.WriteString(hc.Stdout, "\n")
	}
	return nil
}

// HTTPFetcher is the default network capability. A nil client gets a
// timeout-bounded default.
func HTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return func(ctx context.Context, url string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, errors.Errorf("unexpected status %s", resp.Status)
		}
		body, err := io.ReadAll(resp.Body)
		return body, errors.WithStack(err)
	}
}
