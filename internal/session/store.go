// Package session keeps per-visitor search state in memory.
package session

import (
	"sync"

	"github.com/paperrank/app/internal/domain"
)

// Store holds one session's latest successful ResultSet. It is replaced
// wholesale by Set and never expires on its own.
type Store struct {
	mu      sync.RWMutex
	results domain.ResultSet
	notice  *domain.Notice
	busy    bool

	lastTopic string
	lastMode  domain.RankingMode
}

func NewStore() *Store {
	return &Store{results: domain.ResultSet{}}
}

// Get returns a copy of the current ResultSet; empty when no search has
// succeeded yet.
func (s *Store) Get() domain.ResultSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results.Clone()
}

// Set replaces the ResultSet.
func (s *Store) Set(rs domain.ResultSet) {
	cp := rs.Clone()
	s.mu.Lock()
	s.results = cp
	s.mu.Unlock()
}

// Begin marks a search as running. ok is false when one already is; otherwise
// the caller must call done exactly once.
func (s *Store) Begin() (done func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, false
	}
	s.busy = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.busy = false
			s.mu.Unlock()
		})
	}, true
}

// Busy reports whether a search is running for this session.
func (s *Store) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// SetNotice records the message to show on the next render.
func (s *Store) SetNotice(n domain.Notice) {
	s.mu.Lock()
	s.notice = &n
	s.mu.Unlock()
}

// TakeNotice returns and clears the pending notice.
func (s *Store) TakeNotice() (domain.Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil {
		return domain.Notice{}, false
	}
	n := *s.notice
	s.notice = nil
	return n, true
}

// SetLastQuery remembers the form values of the latest submission so the form
// can be redisplayed with them.
func (s *Store) SetLastQuery(topic string, mode domain.RankingMode) {
	s.mu.Lock()
	s.lastTopic, s.lastMode = topic, mode
	s.mu.Unlock()
}

// LastQuery returns the remembered form values; mode falls back to the default.
func (s *Store) LastQuery() (string, domain.RankingMode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastMode == "" {
		return s.lastTopic, domain.DefaultRankingMode
	}
	return s.lastTopic, s.lastMode
}
