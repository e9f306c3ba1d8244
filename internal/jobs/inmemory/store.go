package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/caixinha/caixinha-server/internal/jobs"
)

// Store keeps job records in a map. History is lost on restart, which is
// acceptable: the imported transactions themselves live in Postgres and
// the archived statement URI lets an import be re-run.
type Store struct {
	mu      sync.RWMutex
	records map[string]*jobs.ImportStatementJob
}

func NewStore() *Store {
	return &Store{records: make(map[string]*jobs.ImportStatementJob)}
}

// SaveJob upserts by JobID. The record is copied both ways so caller
// mutations never leak into the store.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ImportStatementJob) error {
	if job.JobID == "" {
		return errors.New("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *job
	s.records[job.JobID] = &stored
	return nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ImportStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	out := *rec
	return &out, nil
}

// ListJobs returns matching jobs newest first, then applies offset/limit.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ImportStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*jobs.ImportStatementJob, 0, len(s.records))
	for _, rec := range s.records {
		if filter.UserID != "" && rec.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out := *rec
		matched = append(matched, &out)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*jobs.ImportStatementJob{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, nil
}

var _ jobs.JobStore = (*Store)(nil)
