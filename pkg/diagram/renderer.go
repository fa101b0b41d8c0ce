package diagram

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/hivedoc/pkg/errors"
)

// DefaultScript is the graph generator's path relative to EHIVE_ROOT_DIR.
var DefaultScript = filepath.Join("scripts", "generate_graph.pl")

// Request describes one graph generation run.
type Request struct {
	Root        string   // eHive installation root
	PipeConfig  string   // path of the wrapped .pm module
	Format      string   // output format token, e.g. "dot"
	ConfigFiles []string // JSON config files, later files take precedence
}

// Renderer produces a graph description for a PipeConfig module.
type Renderer interface {
	Render(ctx context.Context, req Request) ([]byte, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, req Request) ([]byte, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

// ScriptRenderer runs eHive's generate_graph.pl and returns its stdout.
// Stderr is copied to Stderr as it arrives and kept for the error report.
type ScriptRenderer struct {
	// Script overrides DefaultScript. Relative paths resolve against Request.Root.
	Script string

	// Stderr receives the script's standard error. Defaults to os.Stderr.
	Stderr io.Writer

	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration

	// WaitDelay bounds how long Render waits for the script's output pipes
	// to close after the script is killed. Children the script started may
	// still hold them. Defaults to DefaultWaitDelay.
	WaitDelay time.Duration
}

// DefaultWaitDelay is used when ScriptRenderer.WaitDelay is zero.
const DefaultWaitDelay = 2 * time.Second

// Path returns the executable used for req.
func (r *ScriptRenderer) Path(req Request) string {
	script := r.Script
	if script == "" {
		script = DefaultScript
	}
	if filepath.IsAbs(script) {
		return script
	}
	return filepath.Join(req.Root, script)
}

// Args returns the command-line arguments for req, in the order the script
// expects them.
func Args(req Request) []string {
	args := []string{"-pipeconfig", req.PipeConfig, "--format", req.Format}
	for _, cf := range req.ConfigFiles {
		args = append(args, "-config_file", cf)
	}
	return args
}

// Render runs the script and returns its standard output.
func (r *ScriptRenderer) Render(ctx context.Context, req Request) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	path := r.Path(req)
	cmd := exec.CommandContext(ctx, path, Args(req)...)
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = io.MultiWriter(stderr, &errBuf)

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(errors.ErrCodeExternalProcess, ctxErr, "%s interrupted", path)
		}
		perr := &errors.ProcessError{
			Program:  path,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(errBuf.String()),
		}
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
			return nil, errors.Wrap(errors.ErrCodeExternalProcess, perr, "generate graph")
		}
		return nil, errors.Wrap(errors.ErrCodeExternalProcess, stderrors.Join(perr, err), "run %s", path)
	}
	return out.Bytes(), nil
}

var _ Renderer = (*ScriptRenderer)(nil)
