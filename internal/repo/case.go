package repo

import (
	"CaseKeeper/internal/model"
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound - записи с таким id нет.
	ErrNotFound = errors.New("case not found")
	// ErrStorage wraps every backend failure (I/O, driver, encoding).
	ErrStorage = errors.New("storage failure")
)

// MutateFunc changes a case in place. Returning an error aborts the write.
type MutateFunc func(c *model.Case) error

// CaseRepository is a durable collection of case records keyed by id.
// Every write is atomic: a reader sees either the old or the new record.
type CaseRepository interface {
	// Create persists c, assigning a fresh id when c.ID is empty.
	Create(ctx context.Context, c *model.Case) (string, error)
	GetByID(ctx context.Context, id string) (*model.Case, error)
	ListAll(ctx context.Context) ([]model.Case, error)
	// FindByLocation returns the earliest case stored in the given slot,
	// or ErrNotFound when the slot is free.
	FindByLocation(ctx context.Context, cabinet, shelf, sequence int) (*model.Case, error)
	// UpdateFields merges the present fields and stamps the last-update
	// actor and time in the same write.
	UpdateFields(ctx context.Context, id string, fields model.CaseFields, actor string, at time.Time) (*model.Case, error)
	// Update is a read-modify-write under the store's write lock. If mutate
	// fails nothing is written and its error is returned as is.
	Update(ctx context.Context, id string, mutate MutateFunc) (*model.Case, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
	Close() error
}

func atLocation(c model.Case, cabinet, shelf, sequence int) bool {
	return c.CabinetNo == cabinet && c.ShelfNo == shelf && c.SequenceNo == sequence
}

func storageErr(op, id string, err error) error {
	if id == "" {
		return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}
	return fmt.Errorf("%s %s: %w: %w", op, id, ErrStorage, err)
}
