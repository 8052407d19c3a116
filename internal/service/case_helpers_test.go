package service

import (
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/repo"
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// мок для repo.CaseRepository
type mockCaseRepo struct{ mock.Mock }

func (m *mockCaseRepo) Create(ctx context.Context, c *model.Case) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id string) (*model.Case, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*model.Case); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseRepo) ListAll(ctx context.Context) ([]model.Case, error) {
	args := m.Called(ctx)
	if v, ok := args.Get(0).([]model.Case); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseRepo) FindByLocation(ctx context.Context, cabinet, shelf, sequence int) (*model.Case, error) {
	args := m.Called(ctx, cabinet, shelf, sequence)
	if c, ok := args.Get(0).(*model.Case); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseRepo) UpdateFields(ctx context.Context, id string, fields model.CaseFields, actor string, at time.Time) (*model.Case, error) {
	args := m.Called(ctx, id, fields, actor, at)
	if c, ok := args.Get(0).(*model.Case); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseRepo) Update(ctx context.Context, id string, mutate repo.MutateFunc) (*model.Case, error) {
	args := m.Called(ctx, id, mutate)
	if c, ok := args.Get(0).(*model.Case); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseRepo) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCaseRepo) Close() error { return m.Called().Error(0) }

var _ repo.CaseRepository = (*mockCaseRepo)(nil)

var bangkok = time.FixedZone("ICT", 7*3600)

// newMemoryService собирает сервис поверх хранилища в памяти с управляемыми часами.
func newMemoryService(now *time.Time) *CaseService {
	svc := NewCaseService(repo.NewMemoryCaseRepository(), zap.NewNop().Sugar(), bangkok)
	svc.now = func() time.Time { return *now }
	return svc
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func fullFields(name string) model.CaseFields {
	return model.CaseFields{
		FarmerName:      strPtr(name),
		FarmerAccountNo: strPtr("AC-1"),
		CabinetNo:       intPtr(3),
		ShelfNo:         intPtr(2),
		SequenceNo:      intPtr(1),
	}
}
