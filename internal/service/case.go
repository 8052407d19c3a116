package service

import (
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/repo"
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SystemActor is recorded as the editor when nobody is named.
const SystemActor = "System"

// Status change actions.
const (
	ActionBorrow = "borrow"
	ActionReturn = "return"
)

// CaseService - бизнес-логика учёта дел: создание, правка, выдача и возврат.
type CaseService struct {
	repo   repo.CaseRepository
	logger *zap.SugaredLogger
	loc    *time.Location
	now    func() time.Time
}

// NewCaseService создаёт сервис. Все отметки времени выдаются в loc.
func NewCaseService(r repo.CaseRepository, logger *zap.SugaredLogger, loc *time.Location) *CaseService {
	if loc == nil {
		loc = time.Local
	}
	return &CaseService{repo: r, logger: logger, loc: loc, now: time.Now}
}

// Now returns the service clock in the configured location, cut to
// milliseconds: the coarsest precision any backend keeps (MongoDB).
func (s *CaseService) Now() time.Time {
	return s.now().Truncate(time.Millisecond).In(s.loc)
}

// Location is the zone every returned timestamp is expressed in.
func (s *CaseService) Location() *time.Location {
	return s.loc
}

func (s *CaseService) List(ctx context.Context) ([]model.Case, error) {
	cases, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, s.fromRepo("list", "", err)
	}
	out := make([]model.Case, 0, len(cases))
	for _, c := range cases {
		out = append(out, c.In(s.loc))
	}
	return out, nil
}

func (s *CaseService) Get(ctx context.Context, id string) (*model.Case, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fromRepo("get", id, err)
	}
	return s.localize(c), nil
}

// Create stores a new case in the room. All five descriptive fields are required.
func (s *CaseService) Create(ctx context.Context, f model.CaseFields) (*model.Case, error) {
	if f.FarmerName == nil || f.FarmerAccountNo == nil || f.CabinetNo == nil || f.ShelfNo == nil || f.SequenceNo == nil {
		return nil, validationf("Missing required fields")
	}
	if err := checkNames(f); err != nil {
		return nil, err
	}

	c := &model.Case{
		Status:                model.StatusInRoom,
		LastUpdatedByUserName: SystemActor,
		LastUpdatedTimestamp:  s.Now(),
	}
	f.Apply(c)

	s.warnIfLocationTaken(ctx, c)

	if _, err := s.repo.Create(ctx, c); err != nil {
		return nil, s.fromRepo("create", c.ID, err)
	}
	s.logger.Infow("Case created", "id", c.ID, "cabinet_no", c.CabinetNo, "shelf_no", c.ShelfNo, "sequence_no", c.SequenceNo)
	return s.localize(c), nil
}

// Update changes descriptive fields only. Status and borrow history are
// out of reach here. An empty actor is recorded as SystemActor.
func (s *CaseService) Update(ctx context.Context, id string, f model.CaseFields, actor string) (*model.Case, error) {
	if err := checkNames(f); err != nil {
		return nil, err
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = SystemActor
	}

	c, err := s.repo.UpdateFields(ctx, id, f, actor, s.Now())
	if err != nil {
		return nil, s.fromRepo("update", id, err)
	}
	s.logger.Infow("Case updated", "id", id, "actor", actor)
	return s.localize(c), nil
}

// Borrow checks a case out to borrower. Only a case in the room can be borrowed.
func (s *CaseService) Borrow(ctx context.Context, id, borrower string) (*model.Case, error) {
	borrower = strings.TrimSpace(borrower)
	if borrower == "" {
		return nil, validationf("borrower_name is required")
	}
	now := s.Now()

	c, err := s.repo.Update(ctx, id, func(c *model.Case) error {
		if c.Status != model.StatusInRoom {
			return errAlreadyBorrowed
		}
		c.Status = model.StatusBorrowed
		c.BorrowedByUserName = &borrower
		c.BorrowedDate = &now
		c.ReturnedDate = nil
		c.LastUpdatedByUserName = borrower
		c.LastUpdatedTimestamp = now
		return nil
	})
	if err != nil {
		return nil, s.fromRepo("borrow", id, err)
	}
	s.logger.Infow("Case borrowed", "id", id, "borrower", borrower)
	return s.localize(c), nil
}

// Return checks a borrowed case back in. The borrower and borrow date stay
// on the record as history.
func (s *CaseService) Return(ctx context.Context, id, actor string) (*model.Case, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, validationf("borrower_name is required")
	}
	now := s.Now()

	c, err := s.repo.Update(ctx, id, func(c *model.Case) error {
		if c.Status != model.StatusBorrowed {
			return errAlreadyInRoom
		}
		c.Status = model.StatusInRoom
		c.ReturnedDate = &now
		c.LastUpdatedByUserName = actor
		c.LastUpdatedTimestamp = now
		return nil
	})
	if err != nil {
		return nil, s.fromRepo("return", id, err)
	}
	s.logger.Infow("Case returned", "id", id, "actor", actor)
	return s.localize(c), nil
}

// ChangeStatus dispatches a borrow or return request. Actions are matched
// exactly. An unknown id is reported before a malformed request.
func (s *CaseService) ChangeStatus(ctx context.Context, id, action, name string) (*model.Case, error) {
	switch {
	case action == "" || strings.TrimSpace(name) == "":
		return nil, s.requireCase(ctx, id, validationf("Missing action or borrower_name"))
	case action == ActionBorrow:
		return s.Borrow(ctx, id, name)
	case action == ActionReturn:
		return s.Return(ctx, id, name)
	}
	return nil, s.requireCase(ctx, id, validationf("Invalid action"))
}

// requireCase returns NotFound for a missing id, otherwise reqErr.
func (s *CaseService) requireCase(ctx context.Context, id string, reqErr error) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return s.fromRepo("get", id, err)
	}
	return reqErr
}

func (s *CaseService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.fromRepo("delete", id, err)
	}
	if !removed {
		return errCaseNotFound
	}
	s.logger.Infow("Case deleted", "id", id)
	return nil
}

func checkNames(f model.CaseFields) error {
	if f.FarmerName != nil && strings.TrimSpace(*f.FarmerName) == "" {
		return validationf("farmer_name must not be empty")
	}
	if f.FarmerAccountNo != nil && strings.TrimSpace(*f.FarmerAccountNo) == "" {
		return validationf("farmer_account_no must not be empty")
	}
	return nil
}

// warnIfLocationTaken logs when another case already sits in the same slot.
// Duplicate slots are allowed.
func (s *CaseService) warnIfLocationTaken(ctx context.Context, c *model.Case) {
	other, err := s.repo.FindByLocation(ctx, c.CabinetNo, c.ShelfNo, c.SequenceNo)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.logger.Debugw("Location check skipped", "error", err)
		}
		return
	}
	s.logger.Warnw("Case location already occupied",
		"cabinet_no", c.CabinetNo, "shelf_no", c.ShelfNo, "sequence_no", c.SequenceNo, "existing_id", other.ID)
}

func (s *CaseService) localize(c *model.Case) *model.Case {
	out := c.In(s.loc)
	return &out
}

// fromRepo maps repository errors onto service errors. Errors produced by
// the service itself inside a mutation pass through unchanged.
func (s *CaseService) fromRepo(op, id string, err error) error {
	var svcErr *Error
	switch {
	case errors.As(err, &svcErr):
		return svcErr
	case errors.Is(err, repo.ErrNotFound):
		return errCaseNotFound
	}
	s.logger.Errorw("Storage failure", "op", op, "id", id, "error", err)
	return errStorage
}
