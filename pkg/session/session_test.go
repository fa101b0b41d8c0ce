package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "_build"), log.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestNewCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "_build")
	s, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Finish(nil)

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("build dir %s was not created", dir)
	}
	if s.ID == "" {
		t.Error("session ID should not be empty")
	}
}

func TestNewEmptyDir(t *testing.T) {
	if _, err := New("", nil); err == nil {
		t.Error("New(\"\") should fail")
	}
}

func TestTempFileReusesPath(t *testing.T) {
	s := newTestSession(t)
	defer s.Finish(nil)

	first, created, err := s.TempFile("pipeconfig", "tmp*.pm")
	if err != nil {
		t.Fatalf("TempFile() error: %v", err)
	}
	if !created {
		t.Error("first TempFile() call should create the file")
	}
	if !strings.HasSuffix(first, ".pm") {
		t.Errorf("path %q should end with .pm", first)
	}
	if filepath.Dir(first) != s.Dir {
		t.Errorf("path %q should live in %q", first, s.Dir)
	}

	second, created, err := s.TempFile("pipeconfig", "tmp*.pm")
	if err != nil {
		t.Fatalf("TempFile() error: %v", err)
	}
	if created {
		t.Error("second TempFile() call should not create a new file")
	}
	if first != second {
		t.Errorf("TempFile() path changed: %q then %q", first, second)
	}

	entries, _ := os.ReadDir(s.Dir)
	if len(entries) != 1 {
		t.Errorf("build dir has %d files, want 1", len(entries))
	}
}

func TestTempFileSlotsAreIndependent(t *testing.T) {
	s := newTestSession(t)
	defer s.Finish(nil)

	a, _, _ := s.TempFile("options", "tmp*")
	b, _, _ := s.TempFile("pipeconfig", "tmp*.pm")
	if a == b {
		t.Error("different slots should get different files")
	}
	if p, ok := s.TempPath("options"); !ok || p != a {
		t.Errorf("TempPath(options) = %q, %v", p, ok)
	}
	if _, ok := s.TempPath("missing"); ok {
		t.Error("TempPath should report unknown slots as missing")
	}
}

func TestFinishRemovesFiles(t *testing.T) {
	s := newTestSession(t)

	a, _, _ := s.TempFile("options", "tmp*")
	b, _, _ := s.TempFile("pipeconfig", "tmp*.pm")

	s.Finish(nil)

	for _, p := range []string{a, b} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should be removed after Finish", p)
		}
	}
	if !s.Finished() {
		t.Error("Finished() should be true")
	}

	// Second call must be harmless.
	s.Finish(errors.New("late"))
}

func TestFinishSkipsAlreadyRemovedFiles(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(filepath.Join(t.TempDir(), "_build"), log.New(&buf))
	if err != nil {
		t.Fatal(err)
	}
	p, _, _ := s.TempFile("options", "tmp*")
	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}

	s.Finish(nil)

	if strings.Contains(buf.String(), "could not remove") {
		t.Errorf("missing file should be skipped silently, got log %q", buf.String())
	}
}

func TestFinishWithoutTempFiles(t *testing.T) {
	s := newTestSession(t)
	s.Finish(nil)
	s.Finish(nil)
}

func TestTempFileAfterFinish(t *testing.T) {
	s := newTestSession(t)
	s.Finish(nil)
	if _, _, err := s.TempFile("options", "tmp*"); err == nil {
		t.Error("TempFile() after Finish should fail")
	}
}

func TestOnFinishOrderAndError(t *testing.T) {
	s := newTestSession(t)
	buildErr := errors.New("build failed")

	var calls []string
	var got error
	s.OnFinish(func(err error) { calls = append(calls, "first"); got = err })
	s.OnFinish(func(error) { calls = append(calls, "second") })

	s.Finish(buildErr)
	s.Finish(nil)

	if len(calls) != 2 || calls[0] != "second" || calls[1] != "first" {
		t.Errorf("teardown calls = %v, want [second first]", calls)
	}
	if got != buildErr {
		t.Errorf("teardown received %v, want %v", got, buildErr)
	}
}

func TestRunReturnsFnError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_build")
	want := errors.New("boom")
	var path string

	err := Run(context.Background(), dir, nil, func(ctx context.Context, s *Session) error {
		path, _, _ = s.TempFile("pipeconfig", "tmp*.pm")
		return want
	})

	if err != want {
		t.Errorf("Run() error = %v, want %v", err, want)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("temp file %s should be removed after Run", path)
	}
}

func TestRunFinishesOnPanic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_build")
	var path string

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic should propagate out of Run")
			}
		}()
		_ = Run(context.Background(), dir, nil, func(ctx context.Context, s *Session) error {
			path, _, _ = s.TempFile("options", "tmp*")
			panic("exploded")
		})
	}()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file %s should be removed after panic", path)
	}
}
