package repo

import (
	"CaseKeeper/internal/model"
	"context"
	"fmt"
	"time"
)

var (
	seedFarmerNames = []string{
		"Somchai Jaidee", "Somying Suksan", "Thanakarn Ruamruay", "Wilailak Ngamta",
		"Prayut Mankong", "Sudarat Charoensuk", "Atchariya Noi", "Kulthida Suphap",
	}
	seedAccountPrefixes = []string{"AC", "BC", "CR", "PL"}
	seedStaffNames      = []string{"Jennifer", "Robert", "Suchada", "Wichai", "Mesayon", "Thanakorn"}
)

const (
	seedCabinets = 50
	seedShelves  = 10
	seedSlots    = 5
)

// DemoCases builds n sample records: statuses alternate, and three in ten
// of the InRoom ones carry a finished borrow.
func DemoCases(n int, now time.Time) []model.Case {
	out := make([]model.Case, 0, n)
	for i := 0; i < n; i++ {
		c := model.Case{
			FarmerName:            fmt.Sprintf("%s (case %d)", seedFarmerNames[i%len(seedFarmerNames)], i+1),
			FarmerAccountNo:       fmt.Sprintf("%s-%05d", seedAccountPrefixes[i%len(seedAccountPrefixes)], 10000+i),
			CabinetNo:             i%seedCabinets + 1,
			ShelfNo:               i%seedShelves + 1,
			SequenceNo:            i%seedSlots + 1,
			Status:                model.StatusInRoom,
			LastUpdatedByUserName: seedStaffNames[i%len(seedStaffNames)],
			LastUpdatedTimestamp:  now,
			// strictly increasing so SQL and Mongo keep the generated order
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		borrowedAt := now.Add(-time.Duration(i%14+1) * 24 * time.Hour)

		switch {
		case i%2 == 1:
			who := seedStaffNames[i%len(seedStaffNames)]
			c.Status = model.StatusBorrowed
			c.BorrowedByUserName = &who
			c.BorrowedDate = &borrowedAt
			c.LastUpdatedTimestamp = borrowedAt
		case i%10 < 3:
			who := seedStaffNames[(i+1)%len(seedStaffNames)]
			returnedAt := borrowedAt.Add(time.Duration(i%5+1) * time.Hour)
			c.BorrowedByUserName = &who
			c.BorrowedDate = &borrowedAt
			c.ReturnedDate = &returnedAt
			c.LastUpdatedTimestamp = returnedAt
		}
		out = append(out, c)
	}
	return out
}

// SeedDemo fills an empty store with DemoCases. A store that already holds
// records is left untouched and 0 is returned.
func SeedDemo(ctx context.Context, r CaseRepository, n int, now time.Time) (int, error) {
	existing, err := r.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 || n <= 0 {
		return 0, nil
	}
	for i, c := range DemoCases(n, now) {
		if _, err := r.Create(ctx, &c); err != nil {
			return i, err
		}
	}
	return n, nil
}
