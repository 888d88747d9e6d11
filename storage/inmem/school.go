package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/school"
)

type schoolRepository struct {
	db *DB
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) query() []school.School {
	schools := make([]school.School, 0, len(repo.db.schools))
	for _, sch := range repo.db.schools {
		schools = append(schools, *sch)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].CreatedAt.After(schools[j].CreatedAt) })
	return schools
}

func matchSchool(sch school.School, filter school.QueryFilter) bool {
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(sch.Name), s) &&
			!strings.Contains(strings.ToLower(sch.Address), s) &&
			!strings.Contains(strings.ToLower(sch.SchoolCode), s) {
			return false
		}
	}
	if filter.LGA != "" && sch.LGA != filter.LGA {
		return false
	}
	if filter.Status != "" && sch.Status != filter.Status {
		return false
	}
	if filter.InterviewerID != "" && sch.InterviewerID != filter.InterviewerID {
		return false
	}
	return true
}

func (repo *schoolRepository) GetSchoolByCode(_ context.Context, code string) (school.School, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sch := range repo.db.schools {
		if sch.SchoolCode == code {
			return *sch, nil
		}
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) CreateSchool(_ context.Context, sch school.School) (school.School, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sch.ID = uuid.NewString()
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) GetSchool(_ context.Context, id string) (school.School, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sch, ok := repo.db.schools[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) FilterSchools(_ context.Context, filter school.QueryFilter, page core.Page) ([]school.School, int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var matched []school.School
	for _, sch := range repo.query() {
		if matchSchool(sch, filter) {
			matched = append(matched, sch)
		}
	}
	return core.Paginate(matched, page), int64(len(matched)), nil
}

func (repo *schoolRepository) UpdateSchool(_ context.Context, sch school.School) (school.School, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.schools[sch.ID]; !ok {
		return school.School{}, school.ErrNotFound
	}
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) DeleteSchool(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.schools[id]; !ok {
		return school.ErrNotFound
	}
	delete(repo.db.schools, id)
	return nil
}

func matchStudent(st school.Student, filter school.StudentFilter) bool {
	if filter.Gender != "" && st.Gender != filter.Gender {
		return false
	}
	if filter.IsBegging != nil && st.IsBegging != *filter.IsBegging {
		return false
	}
	if !filter.AgeRange.IsZero() && !filter.AgeRange.Contains(int(st.Age)) {
		return false
	}
	return true
}

func (repo *schoolRepository) FilterStudents(_ context.Context, filter school.StudentFilter, page core.Page) ([]school.StudentRow, int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// school-level filters narrow before flattening, student-level after
	var rows []school.StudentRow
	for _, sch := range repo.query() {
		if filter.SchoolID != "" && sch.ID != filter.SchoolID {
			continue
		}
		if !matchSchool(sch, filter.School) {
			continue
		}
		for _, st := range sch.Students {
			if !matchStudent(st, filter) {
				continue
			}
			rows = append(rows, school.StudentRow{
				SchoolID:     sch.ID,
				SchoolCode:   sch.SchoolCode,
				SchoolName:   sch.Name,
				SchoolLGA:    sch.LGA,
				SchoolStatus: sch.Status,
				Student:      st,
			})
		}
	}
	return core.Paginate(rows, page), int64(len(rows)), nil
}

func (repo *schoolRepository) CountSchools(_ context.Context, filter school.QueryFilter) (int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int64
	for _, sch := range repo.db.schools {
		if matchSchool(*sch, filter) {
			n++
		}
	}
	return n, nil
}
