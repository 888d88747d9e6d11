package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/draft"
)

type draftRepository struct {
	db *DB
}

func NewDraftRepository(db *DB) draft.Repository {
	return &draftRepository{db: db}
}

func (repo *draftRepository) query(interviewerID string) []draft.Draft {
	var drafts []draft.Draft
	for _, d := range repo.db.drafts {
		if d.InterviewerID == interviewerID {
			drafts = append(drafts, *d)
		}
	}
	sort.Slice(drafts, func(i, j int) bool { return drafts[i].LastSaved.After(drafts[j].LastSaved) })
	return drafts
}

func (repo *draftRepository) GetDraftForInterviewer(_ context.Context, id, interviewerID string) (draft.Draft, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if d, ok := repo.db.drafts[id]; ok && d.InterviewerID == interviewerID {
		return *d, nil
	}
	return draft.Draft{}, draft.ErrNotFound
}

func (repo *draftRepository) GetDraftByDraftID(_ context.Context, draftID, interviewerID string) (draft.Draft, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, d := range repo.db.drafts {
		if d.DraftID == draftID && d.InterviewerID == interviewerID {
			return *d, nil
		}
	}
	return draft.Draft{}, draft.ErrNotFound
}

func (repo *draftRepository) CreateDraft(_ context.Context, d draft.Draft) (draft.Draft, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	d.ID = uuid.NewString()
	repo.db.drafts[d.ID] = &d
	return d, nil
}

func (repo *draftRepository) UpsertDraft(_ context.Context, d draft.Draft) (draft.Draft, bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.drafts {
		if existing.DraftID == d.DraftID && existing.InterviewerID == d.InterviewerID {
			existing.Type = d.Type
			existing.Data = d.Data
			existing.LastSaved = d.LastSaved
			existing.UpdatedAt = d.UpdatedAt
			return *existing, false, nil
		}
	}
	d.ID = uuid.NewString()
	d.CreatedAt = d.UpdatedAt
	repo.db.drafts[d.ID] = &d
	return d, true, nil
}

func (repo *draftRepository) FilterDrafts(_ context.Context, interviewerID string, filter draft.QueryFilter, page core.Page) ([]draft.Draft, int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var matched []draft.Draft
	for _, d := range repo.query(interviewerID) {
		if filter.Type != "" && d.Type != filter.Type {
			continue
		}
		matched = append(matched, d)
	}
	return core.Paginate(matched, page), int64(len(matched)), nil
}

func (repo *draftRepository) UpdateDraft(_ context.Context, d draft.Draft) (draft.Draft, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.drafts[d.ID]; !ok {
		return draft.Draft{}, draft.ErrNotFound
	}
	repo.db.drafts[d.ID] = &d
	return d, nil
}

func (repo *draftRepository) DeleteDraft(_ context.Context, id, interviewerID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if d, ok := repo.db.drafts[id]; ok && d.InterviewerID == interviewerID {
		delete(repo.db.drafts, id)
		return nil
	}
	return draft.ErrNotFound
}
