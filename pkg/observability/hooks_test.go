package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Build hooks
	b := NoopBuildHooks{}
	b.OnDocumentStart(ctx, "guide/intro.md")
	b.OnDocumentComplete(ctx, "guide/intro.md", 2, time.Second, nil)
	b.OnDiagramStart(ctx, "session")
	b.OnDiagramComplete(ctx, "session", 512, time.Second, nil)
	b.OnImageRender(ctx, "svg", 2048, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "image")
	c.OnCacheMiss(ctx, "image")
	c.OnCacheSet(ctx, "image", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Build() should return NoopBuildHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	// Set custom hooks
	customBuild := &testBuildHooks{}
	SetBuildHooks(customBuild)
	if Build() != customBuild {
		t.Error("SetBuildHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Reset() should restore NoopBuildHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testBuildHooks{}
	SetBuildHooks(custom)

	// Setting nil should be ignored
	SetBuildHooks(nil)

	if Build() != custom {
		t.Error("SetBuildHooks(nil) should be ignored")
	}

	Reset()
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(l)
	ctx := context.Background()

	h.OnDiagramComplete(ctx, "abc", 42, time.Millisecond, nil)
	h.OnDiagramComplete(ctx, "abc", 0, 0, errors.New("exit status 2"))
	h.OnCacheHit(ctx, "image")

	out := buf.String()
	for _, want := range []string{"diagram generated", "diagram generation failed", "exit status 2", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestNewLogHooksNilLogger(t *testing.T) {
	if h := NewLogHooks(nil); h.Logger == nil {
		t.Error("NewLogHooks(nil) should fall back to the default logger")
	}
}

// Test implementations
type testBuildHooks struct{ NoopBuildHooks }
type testCacheHooks struct{ NoopCacheHooks }
