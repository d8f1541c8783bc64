package state

import (
	"sync"

	"github.com/MarwanIssa100/SparkUp/internal/logger"
	"github.com/MarwanIssa100/SparkUp/internal/model"
)

// Store holds the local snapshot of campaign records plus the loading and
// error flags the view renders. It is the single writer target for both
// the ledger reader and the optimistic commander; conflicts resolve
// last-writer-wins keyed on id, with authoritative values winning ties.
type Store struct {
	mu      sync.RWMutex
	ideas   []model.Idea
	loading bool
	lastErr error
	gen     uint64 // latest issued fetch generation
}

func NewStore() *Store {
	return &Store{ideas: []model.Idea{}}
}

// BeginFetch marks the snapshot as loading and hands out the generation
// token the eventual commit must present.
func (s *Store) BeginFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.loading = true
	return s.gen
}

// CommitSnapshot installs a fetched snapshot. A commit whose generation is
// no longer the latest is discarded; it belongs to a superseded batch. On
// error the previous records stay rendered and only the banner changes.
// Synthetic records past the authoritative tail survive the replacement,
// since their confirmation is still in flight.
func (s *Store) CommitSnapshot(gen uint64, ideas []model.Idea, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		logger.Debug("Dropping stale snapshot commit (gen %d, latest %d)", gen, s.gen)
		return
	}
	s.loading = false

	if err != nil {
		s.lastErr = err
		return
	}
	s.lastErr = nil

	next := make([]model.Idea, 0, len(ideas)+1)
	for _, idea := range ideas {
		next = append(next, idea.Clone())
	}
	maxId := uint64(0)
	if n := len(ideas); n > 0 {
		maxId = ideas[n-1].Id
	}
	for _, idea := range s.ideas {
		if idea.Synthetic && idea.Id > maxId {
			next = append(next, idea)
		}
	}
	s.ideas = next
}

// Ideas returns a deep copy of the snapshot.
func (s *Store) Ideas() []model.Idea {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Idea, 0, len(s.ideas))
	for _, idea := range s.ideas {
		out = append(out, idea.Clone())
	}
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(id uint64) (model.Idea, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, idea := range s.ideas {
		if idea.Id == id {
			return idea.Clone(), true
		}
	}
	return model.Idea{}, false
}

// Len reports the number of records currently displayed.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ideas)
}

// NextId is the id a newly created campaign will take.
func (s *Store) NextId() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := len(s.ideas); n > 0 {
		return s.ideas[n-1].Id + 1
	}
	return 1
}

// Loading reports whether a snapshot fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastErr is the current list-level error banner, nil when healthy.
func (s *Store) LastErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Append adds an optimistic record to the tail.
func (s *Store) Append(idea model.Idea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ideas = append(s.ideas, idea.Clone())
}

// Remove drops the record with the given id, used to roll back an
// optimistic creation.
func (s *Store) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, idea := range s.ideas {
		if idea.Id == id {
			s.ideas = append(s.ideas[:i], s.ideas[i+1:]...)
			return
		}
	}
}

// Mutate applies fn to the record with the given id under the lock.
func (s *Store) Mutate(id uint64, fn func(*model.Idea)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ideas {
		if s.ideas[i].Id == id {
			fn(&s.ideas[i])
			return true
		}
	}
	return false
}

// ReplaceAuthoritative supersedes the record at the matching id with the
// fetched value, clearing any synthetic or stale marks. A record not in
// the snapshot yet is inserted at the tail.
func (s *Store) ReplaceAuthoritative(idea model.Idea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clean := idea.Clone()
	clean.Synthetic = false
	clean.Stale = false
	for i := range s.ideas {
		if s.ideas[i].Id == idea.Id {
			s.ideas[i] = clean
			return
		}
	}
	s.ideas = append(s.ideas, clean)
}

// MarkStale flags a record whose confirmation never arrived.
func (s *Store) MarkStale(id uint64) {
	s.Mutate(id, func(idea *model.Idea) {
		idea.Stale = true
	})
}
