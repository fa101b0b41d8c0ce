// Package session models one documentation build run.
//
// A [Session] owns everything that must live exactly as long as a build:
// the build directory, the temp files shared by every diagram rendered in
// the build, and the teardown callbacks that run when the build ends.
//
// # Lifecycle
//
// Each temp-file slot moves through three states at most once:
//
//	empty -> created (path remembered) -> removed
//
// [Session.TempFile] creates a slot on first use and returns the same path
// on every later call. [Session.Finish] runs the teardown callbacks and then
// removes every created file. It is safe to call Finish more than once; only
// the first call has any effect.
//
// # Usage
//
// Prefer [Run], which guarantees Finish on every exit path:
//
//	err := session.Run(ctx, "_build", logger, func(ctx context.Context, s *session.Session) error {
//	    gen := diagram.NewGenerator(s, nil, logger)
//	    dot, err := gen.Generate(ctx, snippet)
//	    ...
//	})
//
// Separate builds use separate sessions, so concurrent builds never share
// temp files.
package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/hivedoc/pkg/errors"
)

// Session holds the state of one build run.
type Session struct {
	ID        string
	Dir       string
	StartedAt time.Time

	logger *log.Logger

	mu       sync.Mutex
	slots    map[string]string
	order    []string
	teardown []func(buildErr error)
	finished bool
}

// New starts a session rooted at dir, creating the directory if needed.
// A nil logger falls back to log.Default().
func New(dir string, logger *log.Logger) (*Session, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "build directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "create build dir %s", dir)
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Session{
		ID:        uuid.NewString(),
		Dir:       dir,
		StartedAt: time.Now(),
		logger:    logger,
		slots:     make(map[string]string),
	}
	logger.Debug("build session started", "id", s.ID, "dir", dir)
	return s, nil
}

// Run starts a session, calls fn, and finishes the session whatever fn
// returns. The error of fn is returned unchanged; cleanup problems are only
// logged.
func Run(ctx context.Context, dir string, logger *log.Logger, fn func(context.Context, *Session) error) (err error) {
	s, err := New(dir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			s.Finish(fmt.Errorf("panic: %v", r))
			panic(r)
		}
		s.Finish(err)
	}()
	return fn(ctx, s)
}

// Logger returns the session's logger.
func (s *Session) Logger() *log.Logger {
	return s.logger
}

// OnFinish registers a callback that runs when the session finishes.
// Callbacks run in reverse registration order and receive the build error,
// which may be nil. Callbacks registered after Finish are never called.
func (s *Session) OnFinish(fn func(buildErr error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.teardown = append(s.teardown, fn)
}

// Finish ends the session: it runs the teardown callbacks and removes every
// temp file the session created. Only the first call has an effect.
// Nothing is returned so cleanup can never replace the build outcome.
func (s *Session) Finish(buildErr error) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	teardown := s.teardown
	s.teardown = nil
	s.mu.Unlock()

	for i := len(teardown) - 1; i >= 0; i-- {
		teardown[i](buildErr)
	}
	s.removeTempFiles()

	if buildErr != nil {
		s.logger.Debug("build session finished with error", "id", s.ID, "err", buildErr)
		return
	}
	s.logger.Debug("build session finished", "id", s.ID, "duration", time.Since(s.StartedAt).Round(time.Millisecond))
}

// Finished reports whether Finish has been called.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}
