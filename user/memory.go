package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository. Check and insert happen
// under one lock, which gives the same guarantee as a unique index.
type MemoryRepository struct {
	mu     sync.RWMutex
	byName map[string]Record
	nextID int64
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byName: make(map[string]Record)}
}

// FindByUsername returns a copy of the stored record.
func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Insert stores a copy of rec and assigns the next ID.
func (r *MemoryRepository) Insert(ctx context.Context, rec *Record) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[rec.Username]; exists {
		return 0, ErrDuplicate
	}
	r.nextID++
	rec.ID = r.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.byName[rec.Username] = *rec
	return rec.ID, nil
}

// Len returns the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
