package user

import (
	"context"
	"fmt"

	"github.com/kbukum/userservice/database"
)

// GormRepository is a Repository backed by the service database.
type GormRepository struct {
	db *database.DB
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository returns a repository using db. The users table must
// exist (see Migrations).
func NewGormRepository(db *database.DB) *GormRepository {
	return &GormRepository{db: db}
}

// FindByUsername looks up a user by exact, case-sensitive username.
func (r *GormRepository) FindByUsername(ctx context.Context, username string) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&rec).Error
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user: find by username: %w", err)
	}
	return &rec, nil
}

// Insert creates the record. The unique index on username turns a lost
// registration race into ErrDuplicate.
func (r *GormRepository) Insert(ctx context.Context, rec *Record) (int64, error) {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if database.IsDuplicateError(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("user: insert: %w", err)
	}
	return rec.ID, nil
}
