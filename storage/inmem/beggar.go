package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/beggar"
)

type beggarRepository struct {
	db *DB
}

func NewBeggarRepository(db *DB) beggar.Repository {
	return &beggarRepository{db: db}
}

func (repo *beggarRepository) query() []beggar.Beggar {
	beggars := make([]beggar.Beggar, 0, len(repo.db.beggars))
	for _, bg := range repo.db.beggars {
		beggars = append(beggars, *bg)
	}
	sort.Slice(beggars, func(i, j int) bool { return beggars[i].CreatedAt.After(beggars[j].CreatedAt) })
	return beggars
}

func matchBeggar(bg beggar.Beggar, filter beggar.QueryFilter) bool {
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(bg.Name), s) &&
			!strings.Contains(strings.ToLower(bg.BeggarID), s) {
			return false
		}
	}
	if filter.LGA != "" && bg.LGA != filter.LGA {
		return false
	}
	if filter.StateOfOrigin != "" && bg.StateOfOrigin != filter.StateOfOrigin {
		return false
	}
	if filter.Sex != "" && bg.Sex != filter.Sex {
		return false
	}
	if filter.IsBegging != nil && bg.IsBegging != *filter.IsBegging {
		return false
	}
	if filter.InterviewerID != "" && bg.InterviewerID != filter.InterviewerID {
		return false
	}
	if !filter.AgeRange.IsZero() && !filter.AgeRange.Contains(int(bg.Age)) {
		return false
	}
	return true
}

func (repo *beggarRepository) GetBeggarByBeggarID(_ context.Context, beggarID string) (beggar.Beggar, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, bg := range repo.db.beggars {
		if bg.BeggarID == beggarID {
			return *bg, nil
		}
	}
	return beggar.Beggar{}, beggar.ErrNotFound
}

func (repo *beggarRepository) CreateBeggar(_ context.Context, bg beggar.Beggar) (beggar.Beggar, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	bg.ID = uuid.NewString()
	repo.db.beggars[bg.ID] = &bg
	return bg, nil
}

func (repo *beggarRepository) GetBeggar(_ context.Context, id string) (beggar.Beggar, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if bg, ok := repo.db.beggars[id]; ok {
		return *bg, nil
	}
	return beggar.Beggar{}, beggar.ErrNotFound
}

func (repo *beggarRepository) FilterBeggars(_ context.Context, filter beggar.QueryFilter, page core.Page) ([]beggar.Beggar, int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var matched []beggar.Beggar
	for _, bg := range repo.query() {
		if matchBeggar(bg, filter) {
			matched = append(matched, bg)
		}
	}
	return core.Paginate(matched, page), int64(len(matched)), nil
}

func (repo *beggarRepository) UpdateBeggar(_ context.Context, bg beggar.Beggar) (beggar.Beggar, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.beggars[bg.ID]; !ok {
		return beggar.Beggar{}, beggar.ErrNotFound
	}
	repo.db.beggars[bg.ID] = &bg
	return bg, nil
}

func (repo *beggarRepository) DeleteBeggar(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.beggars[id]; !ok {
		return beggar.ErrNotFound
	}
	delete(repo.db.beggars, id)
	return nil
}

func (repo *beggarRepository) CountBeggars(_ context.Context, filter beggar.QueryFilter) (int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int64
	for _, bg := range repo.db.beggars {
		if matchBeggar(*bg, filter) {
			n++
		}
	}
	return n, nil
}
