// Package api exposes completed backtest runs over HTTP. The engine itself is
// single-threaded; the registry is the boundary where results become shared,
// so it is the only place that needs a lock.
package api

import (
	"sort"
	"sync"

	"github.com/backlab/quantsim/internal/backtest"
)

// Service is an in-memory registry of completed runs keyed by run id.
type Service struct {
	mu   sync.RWMutex
	runs map[string]*backtest.Result
}

// NewService creates an empty run registry.
func NewService() *Service {
	return &Service{
		runs: make(map[string]*backtest.Result),
	}
}

// Register stores a completed run, making it visible to the HTTP handlers.
func (s *Service) Register(result *backtest.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[result.RunID] = result
}

// Run looks up a run by id.
func (s *Service) Run(runID string) (*backtest.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runID]
	return r, ok
}

// RunIDs returns the ids of all registered runs, sorted.
func (s *Service) RunIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
