package repo

import (
	"CaseKeeper/internal/model"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormCaseRepo struct {
	// mu serializes writers. On PostgreSQL rows are also locked FOR UPDATE
	// so several server processes can share one database.
	mu sync.Mutex
	db *gorm.DB
}

// NewGormCaseRepository создаёт SQL-реализацию хранилища (SQLite или PostgreSQL).
func NewGormCaseRepository(db *gorm.DB) CaseRepository {
	return &gormCaseRepo{db: db}
}

func (r *gormCaseRepo) forUpdate(tx *gorm.DB) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (r *gormCaseRepo) Create(ctx context.Context, c *model.Case) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return "", storageErr("create", c.ID, err)
	}
	return c.ID, nil
}

func (r *gormCaseRepo) GetByID(ctx context.Context, id string) (*model.Case, error) {
	var c model.Case
	err := r.db.WithContext(ctx).Take(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get", id, err)
	}
	return &c, nil
}

func (r *gormCaseRepo) ListAll(ctx context.Context) ([]model.Case, error) {
	var cases []model.Case
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&cases).Error; err != nil {
		return nil, storageErr("list", "", err)
	}
	return cases, nil
}

// FindByLocation идёт по индексу idx_case_location.
func (r *gormCaseRepo) FindByLocation(ctx context.Context, cabinet, shelf, sequence int) (*model.Case, error) {
	var c model.Case
	err := r.db.WithContext(ctx).
		Where("cabinet_no = ? AND shelf_no = ? AND sequence_no = ?", cabinet, shelf, sequence).
		Order("created_at ASC, id ASC").
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("find location", "", err)
	}
	return &c, nil
}

func (r *gormCaseRepo) UpdateFields(ctx context.Context, id string, fields model.CaseFields, actor string, at time.Time) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cols := fields.Columns()
	cols["last_updated_by_user_name"] = actor
	cols["last_updated_timestamp"] = at

	var c model.Case
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.forUpdate(tx).Take(&c, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Case{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}
		return tx.Take(&c, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("update fields", id, err)
	}
	return &c, nil
}

func (r *gormCaseRepo) Update(ctx context.Context, id string, mutate MutateFunc) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		c         model.Case
		mutateErr error
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.forUpdate(tx).Take(&c, "id = ?", id).Error; err != nil {
			return err
		}
		if mutateErr = mutate(&c); mutateErr != nil {
			return mutateErr
		}
		c.ID = id
		return tx.Save(&c).Error
	})
	if mutateErr != nil {
		return nil, mutateErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("update", id, err)
	}
	return &c, nil
}

func (r *gormCaseRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := r.db.WithContext(ctx).Delete(&model.Case{}, "id = ?", id)
	if tx.Error != nil {
		return false, storageErr("delete", id, tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormCaseRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
