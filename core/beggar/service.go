package beggar

import (
	"context"
	"errors"
	"time"

	"github.com/almajirisurvey/backend/core"
)

var (
	// errors
	ErrNotFound       = errors.New("beggar not found")
	ErrBeggarIDExists = errors.New("Beggar ID already exists")
)

type (
	Repository interface {
		GetBeggarByBeggarID(ctx context.Context, beggarID string) (Beggar, error)
		CreateBeggar(ctx context.Context, bg Beggar) (Beggar, error)
		GetBeggar(ctx context.Context, id string) (Beggar, error)
		// FilterBeggars applies AND on available QueryFilter fields, sorted
		// newest-created-first, and returns the page plus the total match count.
		FilterBeggars(ctx context.Context, filter QueryFilter, page core.Page) ([]Beggar, int64, error)
		UpdateBeggar(ctx context.Context, bg Beggar) (Beggar, error)
		DeleteBeggar(ctx context.Context, id string) error
		CountBeggars(ctx context.Context, filter QueryFilter) (int64, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkBeggarIDUniqueness(ctx context.Context, beggarID string) error {
	if _, err := svc.repo.GetBeggarByBeggarID(ctx, beggarID); err == nil {
		return core.NewValidationError(ErrBeggarIDExists,
			core.FieldError{Field: "beggarId", Error: ErrBeggarIDExists.Error()})
	} else if err != ErrNotFound {
		return err
	}
	return nil
}

// Create records a new beggar, stamped with the caller's interviewer id.
func (svc *Service) Create(ctx context.Context, nb NewBeggar, interviewerID string) (Beggar, error) {
	if err := svc.checkBeggarIDUniqueness(ctx, nb.BeggarID); err != nil {
		return Beggar{}, err
	}

	now := time.Now().UTC()
	bg := Beggar{
		BeggarID:             nb.BeggarID,
		Name:                 nb.Name,
		Age:                  nb.Age,
		Sex:                  nb.Sex,
		Nationality:          nb.Nationality,
		StateOfOrigin:        nb.StateOfOrigin,
		LGA:                  nb.LGA,
		TownVillage:          nb.TownVillage,
		PermanentHomeAddress: nb.PermanentHomeAddress,
		FathersContactNumber: nb.FathersContactNumber,
		ContactNumber:        nb.ContactNumber,
		IsBegging:            nb.IsBegging,
		ReasonForBegging:     nb.ReasonForBegging,
		NIN:                  nb.NIN,
		PictureURL:           nb.PictureURL,
		InterviewerID:        interviewerID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	return svc.repo.CreateBeggar(ctx, bg)
}

func (svc *Service) Get(ctx context.Context, id string) (Beggar, error) {
	return svc.repo.GetBeggar(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, page core.Page) ([]Beggar, int64, error) {
	filter.Clean()
	return svc.repo.FilterBeggars(ctx, filter, page)
}

// Update partially modifies a beggar. Existence is checked before ownership.
func (svc *Service) Update(ctx context.Context, id string, ub UpdateBeggar, actor OwnershipChecker) (Beggar, error) {
	bg, err := svc.repo.GetBeggar(ctx, id)
	if err != nil {
		return Beggar{}, err
	}
	if !actor.Owns(bg.InterviewerID) {
		return Beggar{}, core.NewPermissionError("you can only modify your own records")
	}

	if ub.BeggarID != "" && ub.BeggarID != bg.BeggarID {
		if err = svc.checkBeggarIDUniqueness(ctx, ub.BeggarID); err != nil {
			return Beggar{}, err
		}
		bg.BeggarID = ub.BeggarID
	}
	if ub.Name != "" {
		bg.Name = ub.Name
	}
	if ub.Age != nil {
		bg.Age = *ub.Age
	}
	if ub.Sex != "" {
		bg.Sex = ub.Sex
	}
	if ub.Nationality != "" {
		bg.Nationality = ub.Nationality
	}
	if ub.StateOfOrigin != "" {
		bg.StateOfOrigin = ub.StateOfOrigin
	}
	if ub.LGA != "" {
		bg.LGA = ub.LGA
	}
	if ub.TownVillage != "" {
		bg.TownVillage = ub.TownVillage
	}
	if ub.PermanentHomeAddress != "" {
		bg.PermanentHomeAddress = ub.PermanentHomeAddress
	}
	if ub.FathersContactNumber != "" {
		bg.FathersContactNumber = ub.FathersContactNumber
	}
	if ub.ContactNumber != "" {
		bg.ContactNumber = ub.ContactNumber
	}
	if ub.IsBegging != nil {
		bg.IsBegging = *ub.IsBegging
	}
	if ub.ReasonForBegging != "" {
		bg.ReasonForBegging = ub.ReasonForBegging
	}
	if ub.NIN != "" {
		bg.NIN = ub.NIN
	}
	if ub.PictureURL != "" {
		bg.PictureURL = ub.PictureURL
	}
	bg.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateBeggar(ctx, bg)
}

// Delete removes a beggar after the existence-then-ownership sequence.
func (svc *Service) Delete(ctx context.Context, id string, actor OwnershipChecker) error {
	bg, err := svc.repo.GetBeggar(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(bg.InterviewerID) {
		return core.NewPermissionError("you can only delete your own records")
	}
	return svc.repo.DeleteBeggar(ctx, id)
}

func (svc *Service) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return svc.repo.CountBeggars(ctx, filter)
}

// OwnershipChecker reports whether the acting user owns a record stamped with
// a given interviewer id; admins own everything.
type OwnershipChecker interface {
	Owns(interviewerID string) bool
}
