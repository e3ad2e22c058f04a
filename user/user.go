// Package user stores user records for the credential service.
//
// The Repository contract is deliberately small: a lookup by exact
// username and an insert that reports ErrDuplicate when the storage-level
// unique constraint on username rejects the row. Uniqueness under
// concurrent registration is enforced by that constraint, not by the
// preceding lookup.
package user

import (
	"context"
	"embed"
	"errors"
	"time"
)

// Sentinel errors returned by every Repository implementation.
var (
	ErrNotFound  = errors.New("user: not found")
	ErrDuplicate = errors.New("user: username already exists")
)

// Record is a persisted user. PasswordHash is stored in the "password"
// column and never leaves the service.
type Record struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username;not null;uniqueIndex:idx_users_username"`
	PasswordHash string    `gorm:"column:password;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName implements gorm's tabler.
func (Record) TableName() string { return "users" }

// Repository is the storage contract used by the credential service.
type Repository interface {
	// FindByUsername returns the record with exactly this username, or
	// ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*Record, error)

	// Insert persists rec, sets rec.ID and returns it. It returns
	// ErrDuplicate if the username is taken.
	Insert(ctx context.Context, rec *Record) (int64, error)
}

// Migrations holds the versioned schema for each supported driver.
//
//go:embed migrations
var Migrations embed.FS

// MigrationsDir returns the directory inside Migrations for a database
// driver name ("sqlite" or "postgres").
func MigrationsDir(driver string) string {
	return "migrations/" + driver
}
