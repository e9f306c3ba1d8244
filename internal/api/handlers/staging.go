package handlers

import (
	"sync"
	"time"

	"github.com/caixinha/caixinha-server/internal/statement"
)

// batchTTL is how long an unconfirmed draft batch survives. Preview is an
// interactive step; stale batches are garbage.
const batchTTL = 30 * time.Minute

type stagedBatch struct {
	batch     *statement.DraftBatch
	userID    string
	createdAt time.Time
}

// Staging holds parsed draft batches between preview and confirm. Nothing
// here reaches the database until the user confirms.
type Staging struct {
	mu      sync.Mutex
	batches map[string]stagedBatch
	now     func() time.Time
}

func NewStaging() *Staging {
	return &Staging{
		batches: make(map[string]stagedBatch),
		now:     time.Now,
	}
}

// Put stages a batch for the given owner.
func (s *Staging) Put(userID string, batch *statement.DraftBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	s.batches[batch.ID] = stagedBatch{batch: batch, userID: userID, createdAt: s.now()}
}

// Get returns a staged batch if it exists, belongs to the user, and has not
// expired.
func (s *Staging) Get(userID, batchID string) (*statement.DraftBatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()

	staged, ok := s.batches[batchID]
	if !ok || staged.userID != userID {
		return nil, false
	}
	return staged.batch, true
}

// Remove drops a batch after confirm or discard.
func (s *Staging) Remove(userID, batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if staged, ok := s.batches[batchID]; ok && staged.userID == userID {
		delete(s.batches, batchID)
	}
}

func (s *Staging) evictLocked() {
	cutoff := s.now().Add(-batchTTL)
	for id, staged := range s.batches {
		if staged.createdAt.Before(cutoff) {
			delete(s.batches, id)
		}
	}
}
