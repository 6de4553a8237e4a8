package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"rpscreen/internal/platform/lock"
)

// SequencesFile is the file holding the last issued id per collection.
const SequencesFile = "sequences.json"

// Sequences issues strictly increasing ids per collection and persists the
// high-water marks so deleted ids are never handed out again.
type Sequences struct {
	path   string
	locker lock.Locker
	logger *slog.Logger

	mu   sync.Mutex
	last map[string]int
}

// OpenSequences loads dir/sequences.json, starting from zero when it is
// missing or unreadable.
func OpenSequences(dir string, opts ...Option) *Sequences {
	o := buildOptions(opts)
	s := &Sequences{
		path:   filepath.Join(dir, SequencesFile),
		locker: o.locker,
		logger: o.logger,
	}
	s.last = s.load()
	return s
}

// Path is the sequences file path.
func (s *Sequences) Path() string {
	return s.path
}

// Next returns the next id for name. floor is the largest id the caller
// already holds; it seeds the sequence for collections written before ids
// were tracked.
func (s *Sequences) Next(ctx context.Context, name string, floor int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.locker.Obtain(ctx, "sequences")
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to release sequence lock", "error", err)
		}
	}()

	if s.locker.Shared() {
		s.last = s.load()
	}

	next := max(s.last[name], floor) + 1
	updated := make(map[string]int, len(s.last)+1)
	for k, v := range s.last {
		updated[k] = v
	}
	updated[name] = next
	if err := writeJSON(s.path, updated); err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", name, err)
	}
	s.last = updated
	return next, nil
}

func (s *Sequences) load() map[string]int {
	last := map[string]int{}
	if err := readJSON(s.path, &last); err != nil {
		if !isNotExist(err) {
			s.logger.Warn("sequence file unreadable, restarting from collection contents",
				"path", s.path,
				"error", err,
			)
		}
		return map[string]int{}
	}
	return last
}
