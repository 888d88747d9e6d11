package main

import (
	"context"
	"fmt"

	"github.com/almajirisurvey/backend/core/user"
)

// createAdmin provisions an ADMIN account with a generated identifier.
func (cli *commandLine) createAdmin(ctx context.Context, name, email, pwd string) error {
	na := user.NewAdmin{
		Name:     name,
		Email:    email,
		Password: pwd,
	}
	if err := na.Validate(cli.validate); err != nil {
		return err
	}
	usr, err := cli.usrSvc.CreateAdmin(ctx, na)
	if err != nil {
		return err
	}
	fmt.Printf("admin created: %s (%s)\n", usr.InterviewerID, usr.Email)
	return nil
}
