package store

import (
	"context"
	"fmt"

	"rpscreen/internal/screening/models"
	"rpscreen/internal/storage"
	"rpscreen/pkg/platform/sentinel"
)

// MatchesCollection is the file stem of the match list.
const MatchesCollection = "matches"

// Error Contract:
// - ErrNotFound (wrapped) when an index is outside the match list
// - storage and lock errors are returned wrapped, with the list unchanged
var ErrNotFound = sentinel.ErrNotFound

// Store holds the result of the latest screening run.
type Store struct {
	col *storage.Collection[models.Match]
}

// New opens the match collection in dir.
func New(dir string, opts ...storage.Option) *Store {
	return &Store{col: storage.OpenCollection[models.Match](dir, MatchesCollection, opts...)}
}

// Path is the backing file of the match list.
func (s *Store) Path() string {
	return s.col.Path()
}

// List returns the matches in stored order.
func (s *Store) List(_ context.Context) []models.Match {
	return s.col.All()
}

// Replace swaps the whole list for build(prev) in one write.
func (s *Store) Replace(ctx context.Context, build func(prev []models.Match) []models.Match) ([]models.Match, error) {
	var next []models.Match
	err := s.col.Mutate(ctx, func(prev []models.Match) ([]models.Match, error) {
		next = build(prev)
		if next == nil {
			next = []models.Match{}
		}
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("replace matches: %w", err)
	}
	return next, nil
}

// Update applies fn to the match at index.
func (s *Store) Update(ctx context.Context, index int, fn func(*models.Match)) (models.Match, error) {
	var updated models.Match
	err := s.col.Mutate(ctx, func(items []models.Match) ([]models.Match, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("match %d of %d: %w", index, len(items), ErrNotFound)
		}
		fn(&items[index])
		updated = items[index]
		return items, nil
	})
	if err != nil {
		return models.Match{}, err
	}
	return updated, nil
}
