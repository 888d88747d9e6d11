package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/user"
	inmemdb "github.com/almajirisurvey/backend/storage/inmem"
)

func setup(t *testing.T) (*commandLine, user.Repository) {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)
	usrRepo := inmemdb.NewUserRepository(db)

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	return &commandLine{
		usrRepo:  usrRepo,
		usrSvc:   user.NewService(usrRepo),
		validate: validate,
	}, usrRepo
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_createAdmin(t *testing.T) {
	cli, usrRepo := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"createadmin"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"createadmin", "-name", "Admin One"}, wantErr: errHelp},
		{name: "no password", args: []string{"createadmin", "-name", "Admin One", "-email", "admin@survey.ng"}, wantErr: errHelp},
		{name: "ok", args: []string{"createadmin", "-name", "Admin One", "-email", "admin@survey.ng"}, pwd: "s3cr3t!"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(ctx, args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			usr, err := usrRepo.GetUserByEmail(ctx, "admin@survey.ng")
			require.NoError(t, err)
			require.Equal(t, user.RoleAdmin, usr.Role)
			require.True(t, usr.IsActive)
			require.NoError(t, usr.CheckPassword(tt.pwd))
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cr3t!"), nil }
		err := cli.run(ctx, []string{"admin", "createadmin", "-name", "Admin Two", "-email", "admin@survey.ng"})
		require.Error(t, err)
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, usrRepo := setup(t)
	ctx := context.Background()

	usr, err := cli.usrSvc.Register(ctx, user.RegisterUser{
		Name:     "Awe Test",
		Email:    "awe@survey.ng",
		Password: "oldpass1",
	})
	require.NoError(t, err)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "id but no password", args: []string{"resetpassword", "-id", usr.InterviewerID}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-id", "INT00000"}, pwd: "newpass1", wantErr: user.ErrNotFound},
		{name: "ok", args: []string{"resetpassword", "-id", usr.InterviewerID}, pwd: "newpass1"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(ctx, args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			refreshed, err := usrRepo.GetUserByID(ctx, usr.ID)
			require.NoError(t, err)
			require.False(t, bytes.Equal(refreshed.PasswordHash, usr.PasswordHash))
			require.NoError(t, refreshed.CheckPassword(tt.pwd))
		})
	}
}
