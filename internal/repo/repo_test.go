package repo

import (
	"CaseKeeper/internal/model"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// newTestDB инициализирует in-memory SQLite (modernc.org/sqlite) для тестов репозитория.
// Каждый тест получает свою именованную базу.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type repoFactory func(t *testing.T) CaseRepository

// backends returns every backend runnable in the current environment.
func backends(t *testing.T) map[string]repoFactory {
	t.Helper()
	b := map[string]repoFactory{
		"memory": func(t *testing.T) CaseRepository {
			return NewMemoryCaseRepository()
		},
		"file": func(t *testing.T) CaseRepository {
			r, err := NewFileCaseRepository(filepath.Join(t.TempDir(), "cases_data.json"), time.UTC, zap.NewNop().Sugar())
			if err != nil {
				t.Fatalf("open file repo: %v", err)
			}
			return r
		},
		"sqlite": func(t *testing.T) CaseRepository {
			return NewGormCaseRepository(newTestDB(t))
		},
	}
	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		b["mongo"] = func(t *testing.T) CaseRepository {
			ctx := context.Background()
			dbName := "casekeeper_test_" + uuid.NewString()[:8]
			r, err := NewMongoCaseRepository(ctx, uri, dbName)
			if err != nil {
				t.Fatalf("open mongo repo: %v", err)
			}
			t.Cleanup(func() {
				_ = r.(*mongoCaseRepo).client.Database(dbName).Drop(context.Background())
				_ = r.Close()
			})
			return r
		}
	}
	return b
}

// хелпер для создания базовой записи
func mkCase(name string, cab, shelf, seq int, at time.Time) model.Case {
	return model.Case{
		FarmerName:            name,
		FarmerAccountNo:       "AC-" + name,
		CabinetNo:             cab,
		ShelfNo:               shelf,
		SequenceNo:            seq,
		Status:                model.StatusInRoom,
		LastUpdatedByUserName: "System",
		LastUpdatedTimestamp:  at,
	}
}
