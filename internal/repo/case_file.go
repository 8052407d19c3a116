package repo

import (
	"CaseKeeper/internal/model"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Layouts accepted for timestamps in data files. Zone-less values were
// written by older versions and are read in the configured location.
var legacyTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

type fileCaseRepo struct {
	mu     sync.RWMutex
	path   string
	loc    *time.Location
	cases  []model.Case
	logger *zap.SugaredLogger
}

// NewFileCaseRepository открывает JSON-файл с массивом записей.
// Отсутствующий или пустой файл даёт пустое хранилище. Повреждённый файл
// переносится в <path>.corrupt-<unix> и хранилище стартует пустым.
func NewFileCaseRepository(path string, loc *time.Location, logger *zap.SugaredLogger) (CaseRepository, error) {
	if loc == nil {
		loc = time.Local
	}
	r := &fileCaseRepo{path: path, loc: loc, logger: logger}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *fileCaseRepo) load() error {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.cases = []model.Case{}
		return nil
	}
	if err != nil {
		return storageErr("load", "", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		r.cases = []model.Case{}
		return nil
	}

	cases, decErr := decodeCaseFile(data, r.loc)
	if decErr == nil {
		r.cases = cases
		r.logger.Infow("Case data loaded", "path", r.path, "count", len(cases))
		return nil
	}

	aside := fmt.Sprintf("%s.corrupt-%d", r.path, time.Now().Unix())
	if err := os.Rename(r.path, aside); err != nil {
		r.logger.Errorw("CORRUPT case data file could not be moved aside, it will be overwritten on next write",
			"path", r.path, "decode_error", decErr, "error", err)
	} else {
		r.logger.Errorw("CORRUPT case data file moved aside, starting with an empty store",
			"path", r.path, "moved_to", aside, "decode_error", decErr)
	}
	r.cases = []model.Case{}
	return nil
}

// fileCase overrides the timestamp fields so legacy zone-less values load.
type fileCase struct {
	model.Case
	BorrowedDate         *string `json:"borrowed_date"`
	ReturnedDate         *string `json:"returned_date"`
	LastUpdatedTimestamp string  `json:"last_updated_timestamp"`
}

func decodeCaseFile(data []byte, loc *time.Location) ([]model.Case, error) {
	var raw []fileCase
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]model.Case, 0, len(raw))
	for i, fc := range raw {
		c := fc.Case
		if c.ID == "" {
			return nil, fmt.Errorf("record %d: missing id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %s", i, c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Status == "" {
			return nil, fmt.Errorf("record %d: missing status", i)
		}

		ts, err := parseFileTime(fc.LastUpdatedTimestamp, loc)
		if err != nil {
			return nil, fmt.Errorf("record %d: last_updated_timestamp: %w", i, err)
		}
		c.LastUpdatedTimestamp = ts
		if c.BorrowedDate, err = parseOptionalFileTime(fc.BorrowedDate, loc); err != nil {
			return nil, fmt.Errorf("record %d: borrowed_date: %w", i, err)
		}
		if c.ReturnedDate, err = parseOptionalFileTime(fc.ReturnedDate, loc); err != nil {
			return nil, fmt.Errorf("record %d: returned_date: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseFileTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseOptionalFileTime(s *string, loc *time.Location) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseFileTime(*s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// persist writes the whole collection to a temp file in the same directory
// and renames it over the target.
func (r *fileCaseRepo) persist(cases []model.Case) error {
	data, err := json.MarshalIndent(cases, "", "    ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		cleanup()
		return err
	}
	return nil
}

func (r *fileCaseRepo) indexOf(id string) int {
	for i := range r.cases {
		if r.cases[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *fileCaseRepo) Create(ctx context.Context, c *model.Case) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if r.indexOf(c.ID) >= 0 {
		return "", storageErr("create", c.ID, errors.New("duplicate id"))
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	next := make([]model.Case, len(r.cases), len(r.cases)+1)
	copy(next, r.cases)
	next = append(next, c.Clone())
	if err := r.persist(next); err != nil {
		return "", storageErr("create", c.ID, err)
	}
	r.cases = next
	return c.ID, nil
}

func (r *fileCaseRepo) GetByID(ctx context.Context, id string) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	out := r.cases[i].Clone()
	return &out, nil
}

func (r *fileCaseRepo) ListAll(ctx context.Context) ([]model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Case, 0, len(r.cases))
	for _, c := range r.cases {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (r *fileCaseRepo) FindByLocation(ctx context.Context, cabinet, shelf, sequence int) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cases {
		if atLocation(c, cabinet, shelf, sequence) {
			out := c.Clone()
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fileCaseRepo) UpdateFields(ctx context.Context, id string, fields model.CaseFields, actor string, at time.Time) (*model.Case, error) {
	return r.Update(ctx, id, func(c *model.Case) error {
		fields.Apply(c)
		c.LastUpdatedByUserName = actor
		c.LastUpdatedTimestamp = at
		return nil
	})
}

func (r *fileCaseRepo) Update(ctx context.Context, id string, mutate MutateFunc) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	updated := r.cases[i].Clone()
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	updated.ID = id

	next := make([]model.Case, len(r.cases))
	copy(next, r.cases)
	next[i] = updated
	if err := r.persist(next); err != nil {
		return nil, storageErr("update", id, err)
	}
	r.cases = next
	out := updated.Clone()
	return &out, nil
}

func (r *fileCaseRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}
	next := make([]model.Case, 0, len(r.cases)-1)
	next = append(next, r.cases[:i]...)
	next = append(next, r.cases[i+1:]...)
	if err := r.persist(next); err != nil {
		return false, storageErr("delete", id, err)
	}
	r.cases = next
	return true, nil
}

func (r *fileCaseRepo) Close() error { return nil }
