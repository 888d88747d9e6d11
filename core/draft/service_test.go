package draft_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/draft"
	inmemdb "github.com/almajirisurvey/backend/storage/inmem"
)

func setup(t *testing.T) *draft.Service {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)
	return draft.NewService(inmemdb.NewDraftRepository(db))
}

func TestService_Create(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, draft.NewDraft{
		DraftID: "draft-1",
		Type:    draft.TypeSchool,
		Data:    json.RawMessage(`{"name":"half-filled"}`),
	}, "INT11111")
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "INT11111", d.InterviewerID)
	assert.False(t, d.LastSaved.IsZero())

	t.Run("conflict on same draftId for same interviewer", func(t *testing.T) {
		_, err := svc.Create(ctx, draft.NewDraft{
			DraftID: "draft-1",
			Type:    draft.TypeSchool,
			Data:    json.RawMessage(`{}`),
		}, "INT11111")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "draftId", vErr.Fields[0].Field)
	})

	t.Run("same draftId is fine for another interviewer", func(t *testing.T) {
		_, err := svc.Create(ctx, draft.NewDraft{
			DraftID: "draft-1",
			Type:    draft.TypeBeggar,
			Data:    json.RawMessage(`{}`),
		}, "INT22222")
		require.NoError(t, err)
	})
}

func TestService_Save(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	sd := draft.SaveDraft{
		DraftID: "draft-1",
		Type:    draft.TypeSchool,
		Data:    json.RawMessage(`{"step":1}`),
	}

	d1, created, err := svc.Save(ctx, sd, "INT11111")
	require.NoError(t, err)
	assert.True(t, created)

	// autosaving again lands on the same record
	sd.Data = json.RawMessage(`{"step":2}`)
	d2, created, err := svc.Save(ctx, sd, "INT11111")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, d1.ID, d2.ID)
	assert.JSONEq(t, `{"step":2}`, string(d2.Data))
	assert.False(t, d2.LastSaved.Before(d1.LastSaved))

	// one record total for this interviewer
	drafts, total, err := svc.Filter(ctx, "INT11111", draft.QueryFilter{}, core.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, drafts, 1)

	// a different interviewer saving the same draftId creates their own record
	_, created, err = svc.Save(ctx, sd, "INT22222")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestService_OwnerScoping(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, draft.NewDraft{
		DraftID: "draft-1",
		Type:    draft.TypeBeggar,
		Data:    json.RawMessage(`{}`),
	}, "INT11111")
	require.NoError(t, err)

	// a foreign draft is indistinguishable from a missing one, admins included
	_, err = svc.Get(ctx, d.ID, "ADMIN11111")
	assert.ErrorIs(t, err, draft.ErrNotFound)
	_, err = svc.Update(ctx, d.ID, "INT22222", draft.UpdateDraft{Data: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, draft.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, d.ID, "INT22222"), draft.ErrNotFound)

	got, err := svc.Get(ctx, d.ID, "INT11111")
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestService_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, draft.NewDraft{
		DraftID: "draft-1",
		Type:    draft.TypeSchool,
		Data:    json.RawMessage(`{"step":1}`),
	}, "INT11111")
	require.NoError(t, err)

	got, err := svc.Update(ctx, d.ID, "INT11111", draft.UpdateDraft{Data: json.RawMessage(`{"step":2}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"step":2}`, string(got.Data))
	assert.False(t, got.LastSaved.Before(d.LastSaved))
}

func TestService_Filter(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	page := core.Page{Number: 1, Limit: 10}

	for i, typ := range []string{draft.TypeSchool, draft.TypeBeggar, draft.TypeSchool} {
		_, err := svc.Create(ctx, draft.NewDraft{
			DraftID: string(rune('a' + i)),
			Type:    typ,
			Data:    json.RawMessage(`{}`),
		}, "INT11111")
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, draft.NewDraft{
		DraftID: "other",
		Type:    draft.TypeSchool,
		Data:    json.RawMessage(`{}`),
	}, "INT22222")
	require.NoError(t, err)

	// only the caller's drafts come back
	drafts, total, err := svc.Filter(ctx, "INT11111", draft.QueryFilter{}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, drafts, 3)

	_, total, err = svc.Filter(ctx, "INT11111", draft.QueryFilter{Type: draft.TypeBeggar}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
