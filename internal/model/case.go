package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CaseStatus is the physical whereabouts of a case folder.
type CaseStatus string

const (
	StatusInRoom   CaseStatus = "InRoom"
	StatusBorrowed CaseStatus = "Borrowed"

	// legacyStatusInRoom is how older data files spell InRoom.
	legacyStatusInRoom = "In Room"
)

// ParseCaseStatus normalizes a stored or submitted status value.
func ParseCaseStatus(s string) (CaseStatus, error) {
	switch strings.TrimSpace(s) {
	case string(StatusInRoom), legacyStatusInRoom:
		return StatusInRoom, nil
	case string(StatusBorrowed):
		return StatusBorrowed, nil
	}
	return "", fmt.Errorf("unknown case status %q", s)
}

func (s *CaseStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseCaseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Case is a physical case folder kept in the archive room.
type Case struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id" bson:"id"`
	FarmerName      string     `gorm:"not null" json:"farmer_name" bson:"farmer_name"`
	FarmerAccountNo string     `gorm:"not null;index" json:"farmer_account_no" bson:"farmer_account_no"`
	CabinetNo       int        `gorm:"not null;index:idx_case_location" json:"cabinet_no" bson:"cabinet_no"`
	ShelfNo         int        `gorm:"not null;index:idx_case_location" json:"shelf_no" bson:"shelf_no"`
	SequenceNo      int        `gorm:"not null;index:idx_case_location" json:"sequence_no" bson:"sequence_no"`
	Status          CaseStatus `gorm:"not null;size:16" json:"status" bson:"status"`

	// Borrow history. Return keeps the borrower and borrow date.
	BorrowedByUserName *string    `json:"borrowed_by_user_name" bson:"borrowed_by_user_name"`
	BorrowedDate       *time.Time `json:"borrowed_date" bson:"borrowed_date"`
	ReturnedDate       *time.Time `json:"returned_date" bson:"returned_date"`

	LastUpdatedByUserName string    `gorm:"not null" json:"last_updated_by_user_name" bson:"last_updated_by_user_name"`
	LastUpdatedTimestamp  time.Time `gorm:"not null" json:"last_updated_timestamp" bson:"last_updated_timestamp"`

	// CreatedAt keeps insertion order for backends without a natural one.
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"-" bson:"created_at"`
}

// Clone returns a deep copy that shares no pointers with c.
func (c Case) Clone() Case {
	out := c
	if c.BorrowedByUserName != nil {
		v := *c.BorrowedByUserName
		out.BorrowedByUserName = &v
	}
	if c.BorrowedDate != nil {
		v := *c.BorrowedDate
		out.BorrowedDate = &v
	}
	if c.ReturnedDate != nil {
		v := *c.ReturnedDate
		out.ReturnedDate = &v
	}
	return out
}

// In returns a copy with every timestamp expressed in loc.
func (c Case) In(loc *time.Location) Case {
	out := c.Clone()
	if loc == nil {
		return out
	}
	if out.BorrowedDate != nil {
		v := out.BorrowedDate.In(loc)
		out.BorrowedDate = &v
	}
	if out.ReturnedDate != nil {
		v := out.ReturnedDate.In(loc)
		out.ReturnedDate = &v
	}
	out.LastUpdatedTimestamp = out.LastUpdatedTimestamp.In(loc)
	if !out.CreatedAt.IsZero() {
		out.CreatedAt = out.CreatedAt.In(loc)
	}
	return out
}

// CaseFields is a partial update of the editable descriptive fields.
// A nil pointer means "leave unchanged".
type CaseFields struct {
	FarmerName      *string
	FarmerAccountNo *string
	CabinetNo       *int
	ShelfNo         *int
	SequenceNo      *int
}

// Apply merges the present fields into c.
func (f CaseFields) Apply(c *Case) {
	if f.FarmerName != nil {
		c.FarmerName = *f.FarmerName
	}
	if f.FarmerAccountNo != nil {
		c.FarmerAccountNo = *f.FarmerAccountNo
	}
	if f.CabinetNo != nil {
		c.CabinetNo = *f.CabinetNo
	}
	if f.ShelfNo != nil {
		c.ShelfNo = *f.ShelfNo
	}
	if f.SequenceNo != nil {
		c.SequenceNo = *f.SequenceNo
	}
}

// Columns maps the present fields to storage column names.
func (f CaseFields) Columns() map[string]any {
	m := map[string]any{}
	if f.FarmerName != nil {
		m["farmer_name"] = *f.FarmerName
	}
	if f.FarmerAccountNo != nil {
		m["farmer_account_no"] = *f.FarmerAccountNo
	}
	if f.CabinetNo != nil {
		m["cabinet_no"] = *f.CabinetNo
	}
	if f.ShelfNo != nil {
		m["shelf_no"] = *f.ShelfNo
	}
	if f.SequenceNo != nil {
		m["sequence_no"] = *f.SequenceNo
	}
	return m
}
