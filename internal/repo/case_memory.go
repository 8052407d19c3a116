package repo

import (
	"CaseKeeper/internal/model"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryCaseRepo struct {
	mu    sync.RWMutex
	order []string
	cases map[string]model.Case
}

// NewMemoryCaseRepository - хранилище в памяти процесса, без долговременного сохранения.
func NewMemoryCaseRepository() CaseRepository {
	return &memoryCaseRepo{cases: map[string]model.Case{}}
}

func (r *memoryCaseRepo) Create(ctx context.Context, c *model.Case) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := r.cases[c.ID]; exists {
		return "", storageErr("create", c.ID, errors.New("duplicate id"))
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.cases[c.ID] = c.Clone()
	r.order = append(r.order, c.ID)
	return c.ID, nil
}

func (r *memoryCaseRepo) GetByID(ctx context.Context, id string) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := c.Clone()
	return &out, nil
}

func (r *memoryCaseRepo) ListAll(ctx context.Context) ([]model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Case, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.cases[id].Clone())
	}
	return out, nil
}

func (r *memoryCaseRepo) FindByLocation(ctx context.Context, cabinet, shelf, sequence int) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if c := r.cases[id]; atLocation(c, cabinet, shelf, sequence) {
			out := c.Clone()
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryCaseRepo) UpdateFields(ctx context.Context, id string, fields model.CaseFields, actor string, at time.Time) (*model.Case, error) {
	return r.Update(ctx, id, func(c *model.Case) error {
		fields.Apply(c)
		c.LastUpdatedByUserName = actor
		c.LastUpdatedTimestamp = at
		return nil
	})
}

func (r *memoryCaseRepo) Update(ctx context.Context, id string, mutate MutateFunc) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := cur.Clone()
	if err := mutate(&next); err != nil {
		return nil, err
	}
	next.ID = id
	r.cases[id] = next
	out := next.Clone()
	return &out, nil
}

func (r *memoryCaseRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cases[id]; !ok {
		return false, nil
	}
	delete(r.cases, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *memoryCaseRepo) Close() error { return nil }
