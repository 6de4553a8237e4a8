package store

import (
	"context"
	"fmt"

	"rpscreen/internal/records/models"
	"rpscreen/internal/storage"
	"rpscreen/pkg/platform/sentinel"
)

// Collection file stems.
const (
	CustomersCollection         = "customers"
	RestrictedPartiesCollection = "restricted_parties"
)

// Error Contract:
// - ErrNotFound (wrapped) when the requested id is not in the collection
// - storage and lock errors are returned wrapped, with the collection unchanged
var ErrNotFound = sentinel.ErrNotFound

// Table is an id-addressed collection of records.
type Table[T any] struct {
	kind string
	col  *storage.Collection[T]
	seq  *storage.Sequences
	id   func(*T) *int
}

// NewCustomerStore opens the customer collection in dir.
func NewCustomerStore(dir string, seq *storage.Sequences, opts ...storage.Option) *Table[models.Customer] {
	return &Table[models.Customer]{
		kind: "customer",
		col:  storage.OpenCollection[models.Customer](dir, CustomersCollection, opts...),
		seq:  seq,
		id:   func(c *models.Customer) *int { return &c.ID },
	}
}

// NewRestrictedPartyStore opens the restricted party collection in dir.
func NewRestrictedPartyStore(dir string, seq *storage.Sequences, opts ...storage.Option) *Table[models.RestrictedParty] {
	return &Table[models.RestrictedParty]{
		kind: "restricted party",
		col:  storage.OpenCollection[models.RestrictedParty](dir, RestrictedPartiesCollection, opts...),
		seq:  seq,
		id:   func(p *models.RestrictedParty) *int { return &p.ID },
	}
}

// Path is the backing file of the table.
func (t *Table[T]) Path() string {
	return t.col.Path()
}

// Create appends the record built by build, which receives the new id.
// Ids come from the persisted sequence and are never reused.
func (t *Table[T]) Create(ctx context.Context, build func(id int) T) (T, error) {
	var created T
	err := t.col.Mutate(ctx, func(items []T) ([]T, error) {
		floor := 0
		for i := range items {
			floor = max(floor, *t.id(&items[i]))
		}
		id, err := t.seq.Next(ctx, t.col.Name(), floor)
		if err != nil {
			return nil, err
		}
		created = build(id)
		*t.id(&created) = id
		return append(items, created), nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", t.kind, err)
	}
	return created, nil
}

// List returns every record in insertion order.
func (t *Table[T]) List(_ context.Context) []T {
	return t.col.All()
}

// FindByID returns the record with id.
func (t *Table[T]) FindByID(_ context.Context, id int) (T, error) {
	for _, item := range t.col.All() {
		if *t.id(&item) == id {
			return item, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %d: %w", t.kind, id, ErrNotFound)
}

// Update applies fn to the record with id and persists the collection.
func (t *Table[T]) Update(ctx context.Context, id int, fn func(*T)) (T, error) {
	var updated T
	err := t.col.Mutate(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if *t.id(&items[i]) == id {
				fn(&items[i])
				updated = items[i]
				return items, nil
			}
		}
		return nil, fmt.Errorf("%s %d: %w", t.kind, id, ErrNotFound)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

// Delete removes the record with id and returns it.
func (t *Table[T]) Delete(ctx context.Context, id int) (T, error) {
	var deleted T
	err := t.col.Mutate(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if *t.id(&items[i]) == id {
				deleted = items[i]
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%s %d: %w", t.kind, id, ErrNotFound)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return deleted, nil
}
