package school

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/almajirisurvey/backend/core"
)

var (
	// errors
	ErrNotFound         = errors.New("school not found")
	ErrSchoolCodeExists = errors.New("School code already exists")
)

type (
	Repository interface {
		// GetSchoolByCode is the uniqueness probe behind school code conflicts.
		GetSchoolByCode(ctx context.Context, code string) (School, error)
		CreateSchool(ctx context.Context, sch School) (School, error)
		GetSchool(ctx context.Context, id string) (School, error)
		// FilterSchools applies AND on available QueryFilter fields, sorted
		// newest-created-first, and returns the page plus the total match count.
		FilterSchools(ctx context.Context, filter QueryFilter, page core.Page) ([]School, int64, error)
		UpdateSchool(ctx context.Context, sch School) (School, error)
		DeleteSchool(ctx context.Context, id string) error
		// FilterStudents flattens students across all matching schools; school
		// filters narrow before unwinding, student filters after.
		FilterStudents(ctx context.Context, filter StudentFilter, page core.Page) ([]StudentRow, int64, error)
		CountSchools(ctx context.Context, filter QueryFilter) (int64, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkCodeUniqueness(ctx context.Context, code string) error {
	if _, err := svc.repo.GetSchoolByCode(ctx, code); err == nil {
		return core.NewValidationError(ErrSchoolCodeExists,
			core.FieldError{Field: "schoolCode", Error: ErrSchoolCodeExists.Error()})
	} else if err != ErrNotFound {
		return err
	}
	return nil
}

// assignStudentIDs gives every embedded student a stable local identifier,
// preserving ids a client echoes back on update.
func assignStudentIDs(students []Student) {
	for i := range students {
		if students[i].ID == "" {
			students[i].ID = uuid.NewString()
		}
	}
}

// Create records a new school for interviewer usr. The record is stamped with
// the caller's interviewer id regardless of any id in the payload.
func (svc *Service) Create(ctx context.Context, ns NewSchool, interviewerID string) (School, error) {
	if err := svc.checkCodeUniqueness(ctx, ns.SchoolCode); err != nil {
		return School{}, err
	}

	assignStudentIDs(ns.Students)

	now := time.Now().UTC()
	sch := School{
		SchoolCode:      ns.SchoolCode,
		Name:            ns.Name,
		Address:         ns.Address,
		Phone:           ns.Phone,
		Email:           ns.Email,
		LGA:             ns.LGA,
		District:        ns.District,
		Ward:            ns.Ward,
		Village:         ns.Village,
		Community:       ns.Community,
		YearsInSchool:   ns.YearsInSchool,
		Status:          StatusDraft,
		InterviewerID:   interviewerID,
		HeadTeacher:     ns.HeadTeacher,
		SchoolStructure: ns.SchoolStructure,
		Students:        ns.Students,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *Service) Get(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchool(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, page core.Page) ([]School, int64, error) {
	filter.Clean()
	return svc.repo.FilterSchools(ctx, filter, page)
}

// Update partially modifies a school. Existence is checked before ownership so
// a non-owner probing ids cannot distinguish missing from foreign records by
// the order of failures alone.
func (svc *Service) Update(ctx context.Context, id string, us UpdateSchool, actor OwnershipChecker) (School, error) {
	sch, err := svc.repo.GetSchool(ctx, id)
	if err != nil {
		return School{}, err
	}
	if !actor.Owns(sch.InterviewerID) {
		return School{}, core.NewPermissionError("you can only modify your own records")
	}

	if us.SchoolCode != "" && us.SchoolCode != sch.SchoolCode {
		if err = svc.checkCodeUniqueness(ctx, us.SchoolCode); err != nil {
			return School{}, err
		}
		sch.SchoolCode = us.SchoolCode
	}
	if us.Name != "" {
		sch.Name = us.Name
	}
	if us.Address != "" {
		sch.Address = us.Address
	}
	if us.Phone != "" {
		sch.Phone = us.Phone
	}
	if us.Email != "" {
		sch.Email = us.Email
	}
	if us.LGA != "" {
		sch.LGA = us.LGA
	}
	if us.District != "" {
		sch.District = us.District
	}
	if us.Ward != "" {
		sch.Ward = us.Ward
	}
	if us.Village != "" {
		sch.Village = us.Village
	}
	if us.Community != "" {
		sch.Community = us.Community
	}
	if us.YearsInSchool != nil {
		sch.YearsInSchool = us.YearsInSchool
	}
	if us.Status != "" {
		sch.Status = us.Status
	}
	if us.HeadTeacher != nil {
		sch.HeadTeacher = us.HeadTeacher
	}
	if us.SchoolStructure != nil {
		sch.SchoolStructure = us.SchoolStructure
	}
	if us.Students != nil {
		assignStudentIDs(us.Students)
		sch.Students = us.Students
	}
	sch.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateSchool(ctx, sch)
}

// Delete removes a school after the same existence-then-ownership sequence as
// Update.
func (svc *Service) Delete(ctx context.Context, id string, actor OwnershipChecker) error {
	sch, err := svc.repo.GetSchool(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(sch.InterviewerID) {
		return core.NewPermissionError("you can only delete your own records")
	}
	return svc.repo.DeleteSchool(ctx, id)
}

// FilterStudents lists students across schools as flattened rows.
func (svc *Service) FilterStudents(ctx context.Context, filter StudentFilter, page core.Page) ([]StudentRow, int64, error) {
	filter.School.Clean()
	return svc.repo.FilterStudents(ctx, filter, page)
}

func (svc *Service) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return svc.repo.CountSchools(ctx, filter)
}

// OwnershipChecker reports whether the acting user owns a record stamped with
// a given interviewer id; admins own everything.
type OwnershipChecker interface {
	Owns(interviewerID string) bool
}
