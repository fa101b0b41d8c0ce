package session

import (
	"os"

	"github.com/matzehuels/hivedoc/pkg/errors"
)

// TempFile returns the path of the named temp-file slot. The first call for
// a slot creates an empty file under the session directory whose name
// follows pattern (see os.CreateTemp) and remembers it; later calls return
// the remembered path. created reports whether this call made the file.
func (s *Session) TempFile(slot, pattern string) (path string, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return "", false, errors.New(errors.ErrCodeInternal, "session %s already finished", s.ID)
	}
	if p, ok := s.slots[slot]; ok {
		return p, false, nil
	}

	f, err := os.CreateTemp(s.Dir, pattern)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeFilesystem, err, "create temp file in %s", s.Dir)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", false, errors.Wrap(errors.ErrCodeFilesystem, err, "close %s", f.Name())
	}

	s.slots[slot] = f.Name()
	s.order = append(s.order, slot)
	s.logger.Debug("created temp file", "slot", slot, "path", f.Name())
	return f.Name(), true, nil
}

// TempPath returns the path of a slot without creating it.
func (s *Session) TempPath(slot string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.slots[slot]
	return p, ok
}

// removeTempFiles deletes every created slot file. Files that are already
// gone are skipped; other failures are logged.
func (s *Session) removeTempFiles() {
	s.mu.Lock()
	order := s.order
	slots := s.slots
	s.mu.Unlock()

	for _, slot := range order {
		path := slots[slot]
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("could not remove temp file", "slot", slot, "path", path, "err", err)
			continue
		}
		s.logger.Debug("removed temp file", "slot", slot, "path", path)
	}
}
