package draft

import (
	"context"
	"errors"
	"time"

	"github.com/almajirisurvey/backend/core"
)

var (
	// errors
	ErrNotFound      = errors.New("draft not found")
	ErrDraftIDExists = errors.New("Draft ID already exists")
)

type (
	Repository interface {
		// GetDraftForInterviewer scopes by owner; a draft belonging to someone
		// else is indistinguishable from a missing one.
		GetDraftForInterviewer(ctx context.Context, id, interviewerID string) (Draft, error)
		GetDraftByDraftID(ctx context.Context, draftID, interviewerID string) (Draft, error)
		CreateDraft(ctx context.Context, d Draft) (Draft, error)
		// UpsertDraft atomically inserts or replaces the draft keyed on
		// (draftId, interviewerId) and reports whether it was created.
		UpsertDraft(ctx context.Context, d Draft) (Draft, bool, error)
		// FilterDrafts lists the interviewer's drafts sorted by lastSaved
		// descending and returns the page plus the total match count.
		FilterDrafts(ctx context.Context, interviewerID string, filter QueryFilter, page core.Page) ([]Draft, int64, error)
		UpdateDraft(ctx context.Context, d Draft) (Draft, error)
		DeleteDraft(ctx context.Context, id, interviewerID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create records a new draft, failing on a (draftId, interviewerId) conflict.
func (svc *Service) Create(ctx context.Context, nd NewDraft, interviewerID string) (Draft, error) {
	if _, err := svc.repo.GetDraftByDraftID(ctx, nd.DraftID, interviewerID); err == nil {
		return Draft{}, core.NewValidationError(ErrDraftIDExists,
			core.FieldError{Field: "draftId", Error: ErrDraftIDExists.Error()})
	} else if err != ErrNotFound {
		return Draft{}, err
	}

	now := time.Now().UTC()
	d := Draft{
		DraftID:       nd.DraftID,
		Type:          nd.Type,
		Data:          nd.Data,
		InterviewerID: interviewerID,
		LastSaved:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateDraft(ctx, d)
}

// Save is the autosave path: repeated saves with the same draftId land on the
// same record, replacing its data and bumping lastSaved. Returns whether the
// draft was created rather than updated.
func (svc *Service) Save(ctx context.Context, sd SaveDraft, interviewerID string) (Draft, bool, error) {
	now := time.Now().UTC()
	d := Draft{
		DraftID:       sd.DraftID,
		Type:          sd.Type,
		Data:          sd.Data,
		InterviewerID: interviewerID,
		LastSaved:     now,
		UpdatedAt:     now,
	}
	return svc.repo.UpsertDraft(ctx, d)
}

func (svc *Service) Get(ctx context.Context, id, interviewerID string) (Draft, error) {
	return svc.repo.GetDraftForInterviewer(ctx, id, interviewerID)
}

func (svc *Service) Filter(ctx context.Context, interviewerID string, filter QueryFilter, page core.Page) ([]Draft, int64, error) {
	return svc.repo.FilterDrafts(ctx, interviewerID, filter, page)
}

// Update replaces the data of the caller's own draft and bumps lastSaved.
func (svc *Service) Update(ctx context.Context, id, interviewerID string, ud UpdateDraft) (Draft, error) {
	d, err := svc.repo.GetDraftForInterviewer(ctx, id, interviewerID)
	if err != nil {
		return Draft{}, err
	}
	d.Data = ud.Data
	d.LastSaved = time.Now().UTC()
	d.UpdatedAt = d.LastSaved
	return svc.repo.UpdateDraft(ctx, d)
}

func (svc *Service) Delete(ctx context.Context, id, interviewerID string) error {
	return svc.repo.DeleteDraft(ctx, id, interviewerID)
}
