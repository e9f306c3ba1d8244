// Package opssync keeps the local set of active operation codes (cost
// centers) in step with the shared planning spreadsheet. The synced set is
// cached to a JSON file so classification keeps working offline.
package opssync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNoOperations means the month tab had nothing usable in its operations
// column.
var ErrNoOperations = errors.New("opssync: no operations found")

// SheetReader reads the operations column of one month tab.
type SheetReader interface {
	ReadOperationsColumn(ctx context.Context, tab string) ([]string, error)
}

// Service owns the cached operation set.
type Service struct {
	reader    SheetReader
	cachePath string

	mu sync.Mutex
}

func New(reader SheetReader, cachePath string) *Service {
	return &Service{reader: reader, cachePath: cachePath}
}

// Sync fetches the named month tab and replaces the cached set with the
// normalized result.
func (s *Service) Sync(ctx context.Context, tab string) ([]string, error) {
	raw, err := s.reader.ReadOperationsColumn(ctx, tab)
	if err != nil {
		return nil, fmt.Errorf("opssync: read tab %q: %w", tab, err)
	}

	ops := Normalize(raw)
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w in tab %q", ErrNoOperations, tab)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ops); err != nil {
		return nil, err
	}
	return ops, nil
}

// Operations returns the cached set. A missing cache file is an empty set,
// not an error.
func (s *Service) Operations() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add union-merges manually entered operations into the cache and returns
// the resulting set.
func (s *Service) Add(ops ...string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return nil, err
	}
	merged := Normalize(append(current, ops...))
	if err := s.save(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *Service) load() ([]string, error) {
	data, err := os.ReadFile(s.cachePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opssync: read cache: %w", err)
	}

	var ops []string
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("opssync: decode cache: %w", err)
	}
	return ops, nil
}

func (s *Service) save(ops []string) error {
	data, err := json.MarshalIndent(ops, "", "  ")
	if err != nil {
		return fmt.Errorf("opssync: encode cache: %w", err)
	}
	if dir := filepath.Dir(s.cachePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("opssync: create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(s.cachePath, data, 0o644); err != nil {
		return fmt.Errorf("opssync: write cache: %w", err)
	}
	return nil
}

// Normalize trims stray quoting from spreadsheet exports, drops blanks and
// the literal "undefined" that empty formula cells produce, dedupes, and
// sorts.
func Normalize(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	ops := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(strings.Trim(strings.TrimSpace(v), `"`))
		if v == "" || v == "undefined" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		ops = append(ops, v)
	}
	sort.Strings(ops)
	return ops
}
