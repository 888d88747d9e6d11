package user_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/user"
	inmemdb "github.com/almajirisurvey/backend/storage/inmem"
	testutil "github.com/almajirisurvey/backend/tests"
)

var interviewerIDRx = regexp.MustCompile(`^INT\d{5}$`)

func setup(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewUserRepository(db)
	return user.NewService(repo), repo
}

func TestService_Register(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.RegisterUser{
		Name:     "Aisha Bello",
		Email:    "aisha@survey.ng",
		Password: "s3cr3t!",
	})
	require.NoError(t, err)

	assert.Regexp(t, interviewerIDRx, usr.InterviewerID)
	assert.Equal(t, user.RoleInterviewer, usr.Role)
	assert.True(t, usr.IsActive)
	assert.NotEmpty(t, usr.ID)
	assert.NoError(t, usr.CheckPassword("s3cr3t!"))

	// second registration generates a distinct identifier
	usr2, err := svc.Register(ctx, user.RegisterUser{
		Name:     "Bala Musa",
		Email:    "bala@survey.ng",
		Password: "s3cr3t!",
	})
	require.NoError(t, err)
	assert.NotEqual(t, usr.InterviewerID, usr2.InterviewerID)

	t.Run("email conflict", func(t *testing.T) {
		_, err := svc.Register(ctx, user.RegisterUser{
			Name:     "Aisha Again",
			Email:    "aisha@survey.ng",
			Password: "s3cr3t!",
		})
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Len(t, vErr.Fields, 1)
		assert.Equal(t, "email", vErr.Fields[0].Field)
	})
}

func TestService_CreateAdmin(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.CreateAdmin(ctx, user.NewAdmin{
		Name:     "Admin One",
		Email:    "admin@survey.ng",
		Password: "s3cr3t!",
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, usr.Role)
	assert.Regexp(t, `^ADMIN\d{5}$`, usr.InterviewerID)
	assert.True(t, usr.IsActive)
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	active := testutil.CreateUser(t, repo, "Active", "INT11111", "active@survey.ng", "s3cr3t!", user.RoleInterviewer, true)
	testutil.CreateUser(t, repo, "Inactive", "INT22222", "inactive@survey.ng", "s3cr3t!", user.RoleInterviewer, false)

	tests := []struct {
		name    string
		id      string
		pwd     string
		wantErr error
	}{
		{name: "unknown id", id: "INT99999", pwd: "s3cr3t!", wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", id: "INT11111", pwd: "nope", wantErr: user.ErrInvalidCredentials},
		{name: "deactivated account", id: "INT22222", pwd: "s3cr3t!", wantErr: user.ErrAccountDeactivated},
		{name: "ok", id: "INT11111", pwd: "s3cr3t!"},
		{name: "ok untrimmed", id: "  INT11111 ", pwd: "s3cr3t!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Authenticate(ctx, tt.id, tt.pwd)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, active.ID, usr.ID)
			assert.False(t, usr.LastLogin.IsZero())
		})
	}
}

func TestService_AuthenticateAdmin(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateUser(t, repo, "Admin", "ADMIN11111", "admin@survey.ng", "s3cr3t!", user.RoleAdmin, true)
	testutil.CreateUser(t, repo, "Interviewer", "INT11111", "int@survey.ng", "s3cr3t!", user.RoleInterviewer, true)

	_, err := svc.AuthenticateAdmin(ctx, "admin@survey.ng", "s3cr3t!")
	require.NoError(t, err)

	// valid credentials but not an admin
	_, err = svc.AuthenticateAdmin(ctx, "int@survey.ng", "s3cr3t!")
	assert.True(t, core.IsPermissionDenied(err))

	_, err = svc.AuthenticateAdmin(ctx, "admin@survey.ng", "nope")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestService_Refresh(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Active", "INT11111", "active@survey.ng", "s3cr3t!", user.RoleInterviewer, true)
	inactive := testutil.CreateUser(t, repo, "Inactive", "INT22222", "inactive@survey.ng", "s3cr3t!", user.RoleInterviewer, false)

	got, err := svc.Refresh(ctx, &user.Claims{UserID: usr.ID})
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.Refresh(ctx, &user.Claims{UserID: "ghost"})
	assert.ErrorIs(t, err, user.ErrInvalidToken)

	_, err = svc.Refresh(ctx, &user.Claims{UserID: inactive.ID})
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestService_ChangePassword(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Active", "INT11111", "active@survey.ng", "oldpass", user.RoleInterviewer, true)

	err := svc.ChangePassword(ctx, usr, user.ChangePassword{CurrentPassword: "nope", NewPassword: "newpass1"})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "currentPassword", vErr.Fields[0].Field)

	err = svc.ChangePassword(ctx, usr, user.ChangePassword{CurrentPassword: "oldpass", NewPassword: "newpass1"})
	require.NoError(t, err)

	refreshed, err := repo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("newpass1"))
	assert.Error(t, refreshed.CheckPassword("oldpass"))
}

func TestService_ToggleActive(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Active", "INT11111", "active@survey.ng", "s3cr3t!", user.RoleInterviewer, true)

	got, err := svc.ToggleActive(ctx, usr.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	got, err = svc.ToggleActive(ctx, usr.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	_, err = svc.ToggleActive(ctx, "ghost")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestService_Update(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Before", "INT11111", "before@survey.ng", "s3cr3t!", user.RoleInterviewer, true)

	got, err := svc.Update(ctx, usr.ID, user.UpdateUser{Name: "After", Role: user.RoleSupervisor})
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.Equal(t, user.RoleSupervisor, got.Role)
	// untouched fields survive a partial update
	assert.Equal(t, "before@survey.ng", got.Email)
	assert.Equal(t, "INT11111", got.InterviewerID)
	assert.True(t, got.IsActive)
}

func TestService_Filter(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateUser(t, repo, "Aisha Bello", "INT11111", "aisha@survey.ng", "s3cr3t!", user.RoleInterviewer, true)
	testutil.CreateUser(t, repo, "Bala Musa", "INT22222", "bala@survey.ng", "s3cr3t!", user.RoleSupervisor, true)
	testutil.CreateUser(t, repo, "Chidi Okafor", "INT33333", "chidi@survey.ng", "s3cr3t!", user.RoleInterviewer, false)

	page := core.Page{Number: 1, Limit: 10}

	users, total, err := svc.Filter(ctx, user.QueryFilter{Role: user.RoleInterviewer}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	users, total, err = svc.Filter(ctx, user.QueryFilter{Search: "bello"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "INT11111", users[0].InterviewerID)

	_, total, err = svc.Filter(ctx, user.QueryFilter{}, core.Page{Number: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}
