package repositories

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when the requested row does not
// exist. ErrDuplicate is returned when an insert hits a uniqueness
// constraint. Anything else coming out of a repository is a store failure.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Transactor runs fn inside a single store transaction. Repository calls made
// with the ctx passed to fn join that transaction; fn returning an error
// rolls everything back. Used for every check-then-act sequence so that
// permission checks and the writes they guard see the same snapshot.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
