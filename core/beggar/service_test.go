package beggar_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/beggar"
	"github.com/almajirisurvey/backend/core/user"
	inmemdb "github.com/almajirisurvey/backend/storage/inmem"
	testutil "github.com/almajirisurvey/backend/tests"
)

func setup(t *testing.T) *beggar.Service {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)
	return beggar.NewService(inmemdb.NewBeggarRepository(db))
}

func TestService_Create(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	bg, err := svc.Create(ctx, testutil.BeggarPayload("BEG001"), "INT11111")
	require.NoError(t, err)
	assert.NotEmpty(t, bg.ID)
	assert.Equal(t, "BEG001", bg.BeggarID)
	assert.Equal(t, "INT11111", bg.InterviewerID)
	assert.True(t, bg.IsBegging)

	t.Run("beggar id conflict", func(t *testing.T) {
		_, err := svc.Create(ctx, testutil.BeggarPayload("BEG001"), "INT22222")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "beggarId", vErr.Fields[0].Field)
	})
}

func TestService_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	owner := user.User{InterviewerID: "INT11111", Role: user.RoleInterviewer}
	other := user.User{InterviewerID: "INT22222", Role: user.RoleInterviewer}
	admin := user.User{InterviewerID: "ADMIN11111", Role: user.RoleAdmin}

	bg, err := svc.Create(ctx, testutil.BeggarPayload("BEG001"), owner.InterviewerID)
	require.NoError(t, err)

	t.Run("missing record reported before ownership", func(t *testing.T) {
		_, err := svc.Update(ctx, "ghost", beggar.UpdateBeggar{Name: "X"}, &other)
		assert.ErrorIs(t, err, beggar.ErrNotFound)
	})

	t.Run("non-owner is refused", func(t *testing.T) {
		_, err := svc.Update(ctx, bg.ID, beggar.UpdateBeggar{Name: "Hijacked"}, &other)
		assert.True(t, core.IsPermissionDenied(err))
	})

	t.Run("partial update keeps unset fields", func(t *testing.T) {
		stopped := false
		got, err := svc.Update(ctx, bg.ID, beggar.UpdateBeggar{IsBegging: &stopped}, &owner)
		require.NoError(t, err)
		assert.False(t, got.IsBegging)
		assert.Equal(t, bg.Name, got.Name)
		assert.Equal(t, bg.LGA, got.LGA)
		assert.EqualValues(t, bg.Age, got.Age)
	})

	t.Run("admin may modify foreign records", func(t *testing.T) {
		age := core.FlexInt(14)
		got, err := svc.Update(ctx, bg.ID, beggar.UpdateBeggar{Age: &age}, &admin)
		require.NoError(t, err)
		assert.EqualValues(t, 14, got.Age)
	})

	t.Run("beggar id change re-checked for uniqueness", func(t *testing.T) {
		_, err := svc.Create(ctx, testutil.BeggarPayload("BEG002"), owner.InterviewerID)
		require.NoError(t, err)

		_, err = svc.Update(ctx, bg.ID, beggar.UpdateBeggar{BeggarID: "BEG002"}, &owner)
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "beggarId", vErr.Fields[0].Field)
	})
}

func TestService_Delete(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	owner := user.User{InterviewerID: "INT11111", Role: user.RoleInterviewer}
	other := user.User{InterviewerID: "INT22222", Role: user.RoleInterviewer}

	bg, err := svc.Create(ctx, testutil.BeggarPayload("BEG001"), owner.InterviewerID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "ghost", &other), beggar.ErrNotFound)
	assert.True(t, core.IsPermissionDenied(svc.Delete(ctx, bg.ID, &other)))

	require.NoError(t, svc.Delete(ctx, bg.ID, &owner))
	_, err = svc.Get(ctx, bg.ID)
	assert.ErrorIs(t, err, beggar.ErrNotFound)
}

func TestService_Filter(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	page := core.Page{Number: 1, Limit: 10}

	nb1 := testutil.BeggarPayload("BEG001")
	nb2 := testutil.BeggarPayload("BEG002")
	nb2.Name = "Amina Sule"
	nb2.Sex = "FEMALE"
	nb2.Age = 30
	nb2.StateOfOrigin = "Jigawa"
	nb2.IsBegging = false
	_, err := svc.Create(ctx, nb1, "INT11111")
	require.NoError(t, err)
	_, err = svc.Create(ctx, nb2, "INT22222")
	require.NoError(t, err)

	_, total, err := svc.Filter(ctx, beggar.QueryFilter{}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	beggars, total, err := svc.Filter(ctx, beggar.QueryFilter{Sex: "FEMALE"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, beggars, 1)
	assert.Equal(t, "BEG002", beggars[0].BeggarID)

	_, total, err = svc.Filter(ctx, beggar.QueryFilter{StateOfOrigin: "Jigawa"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	begging := true
	_, total, err = svc.Filter(ctx, beggar.QueryFilter{IsBegging: &begging}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	beggars, total, err = svc.Filter(ctx, beggar.QueryFilter{Search: "amina"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, beggars, 1)
	assert.Equal(t, "Amina Sule", beggars[0].Name)

	_, total, err = svc.Filter(ctx, beggar.QueryFilter{AgeRange: core.ParseAgeRange("20-")}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
