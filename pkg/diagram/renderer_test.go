package diagram

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/matzehuels/hivedoc/pkg/errors"
)

// slowRoot returns an eHive root whose script leaves a child holding stdout.
func slowRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeScript(t, root, "sleep 5; echo done")
	return root
}

func TestScriptRendererTimeout(t *testing.T) {
	root := slowRoot(t)
	r := &ScriptRenderer{
		Stderr:    &bytes.Buffer{},
		Timeout:   200 * time.Millisecond,
		WaitDelay: 100 * time.Millisecond,
	}

	start := time.Now()
	out, err := r.Render(context.Background(), Request{Root: root, PipeConfig: "p.pm", Format: "dot"})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatalf("Render() = %q, want timeout error", out)
	}
	if elapsed > 3*time.Second {
		t.Errorf("Render() returned after %s, should stop soon after the timeout", elapsed)
	}
	if !errors.Is(err, errors.ErrCodeExternalProcess) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeExternalProcess)
	}
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error %v should wrap context.DeadlineExceeded", err)
	}
}

func TestScriptRendererCancel(t *testing.T) {
	root := slowRoot(t)
	r := &ScriptRenderer{Stderr: &bytes.Buffer{}, WaitDelay: 100 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(200*time.Millisecond, cancel)

	start := time.Now()
	_, err := r.Render(ctx, Request{Root: root, PipeConfig: "p.pm", Format: "dot"})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Render() should fail once the context is cancelled")
	}
	if elapsed > 3*time.Second {
		t.Errorf("Render() returned after %s, should stop soon after cancel", elapsed)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("error %v should wrap context.Canceled", err)
	}
}

func TestScriptRendererDefaultWaitDelay(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "echo 'digraph {}'")
	r := &ScriptRenderer{Stderr: &bytes.Buffer{}}

	out, err := r.Render(context.Background(), Request{Root: root, PipeConfig: "p.pm", Format: "dot"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got := string(bytes.TrimSpace(out)); got != "digraph {}" {
		t.Errorf("Render() = %q, want %q", got, "digraph {}")
	}
}
